package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/athletenexus-api/internal/dto"
	"github.com/noah-isme/athletenexus-api/internal/models"
	appErrors "github.com/noah-isme/athletenexus-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	UpdateStatus(ctx context.Context, id string, status models.ClassStatus) error
	UpdateFeedback(ctx context.Context, id string, feedback string) error
	ExistsTx(ctx context.Context, tx *sqlx.Tx, id string) (bool, error)
	DecrementSeatTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Class, error)
}

type cachedClassPage struct {
	Items []models.Class `json:"items"`
	Total int            `json:"total"`
}

// ClassService coordinates the class catalog.
type ClassService struct {
	repo      classRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs ClassService. cache may be nil.
func NewClassService(repo classRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns classes for a catalog view with pagination metadata. The bool reports a cache hit.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, bool, error) {
	if filter.View == models.ClassViewInstructor && strings.TrimSpace(filter.InstructorEmail) == "" {
		return nil, nil, false, appErrors.Clone(appErrors.ErrValidation, "instructor email is required")
	}

	key := classListKey(filter)
	var cached cachedClassPage
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached.Items, s.pagination(filter, cached.Total), true, nil
	}

	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, false, appErrors.Upstream(err, "failed to list classes")
	}
	if classes == nil {
		classes = []models.Class{}
	}
	_ = s.cache.Set(ctx, key, cachedClassPage{Items: classes, Total: total}, 0)
	return classes, s.pagination(filter, total), false, nil
}

func (s *ClassService) pagination(filter models.ClassFilter, total int) *models.Pagination {
	if filter.View == models.ClassViewPopular {
		return nil
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

// Get returns a single class.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	if !validID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Upstream(err, "failed to load class")
	}
	return class, nil
}

// Create submits a class for review. Status always starts as pending and enrollment at zero.
func (s *ClassService) Create(ctx context.Context, req dto.CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if strings.TrimSpace(req.InstructorEmail) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "instructor email is required")
	}
	if req.Price.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "price must not be negative")
	}

	class := &models.Class{
		Name:            strings.TrimSpace(req.Name),
		Image:           req.Image,
		InstructorName:  req.InstructorName,
		InstructorEmail: strings.ToLower(strings.TrimSpace(req.InstructorEmail)),
		Price:           req.Price.Round(2),
		AvailableSeats:  int(req.AvailableSeats),
		TotalEnrolled:   0,
		Status:          models.ClassStatusPending,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Upstream(err, "failed to create class")
	}
	s.invalidate(ctx)
	s.logger.Info("class submitted", zap.String("class_id", class.ID), zap.String("instructor", class.InstructorEmail))
	return class, nil
}

// SetStatus moves a class between pending, approved and denied.
func (s *ClassService) SetStatus(ctx context.Context, req dto.ClassStatusRequest) error {
	req.Status = models.ClassStatus(strings.ToLower(string(req.Status)))
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status request")
	}
	if !req.Status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "status must be pending, approved or denied")
	}
	if !validID(req.ID) {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	if err := s.repo.UpdateStatus(ctx, req.ID, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Upstream(err, "failed to update class status")
	}
	s.invalidate(ctx)
	s.logger.Info("class status changed", zap.String("class_id", req.ID), zap.String("status", string(req.Status)))
	return nil
}

// SetFeedback stores admin feedback on a class.
func (s *ClassService) SetFeedback(ctx context.Context, req dto.ClassFeedbackRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback request")
	}
	if !validID(req.ID) {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	if err := s.repo.UpdateFeedback(ctx, req.ID, req.Feedback); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Upstream(err, "failed to update class feedback")
	}
	s.invalidate(ctx)
	return nil
}

// ReserveSeat moves one seat from available to enrolled inside tx.
// Missing classes yield NotFound and full classes CapacityExceeded.
func (s *ClassService) ReserveSeat(ctx context.Context, tx *sqlx.Tx, id string) (*models.Class, error) {
	if !validID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	class, err := s.repo.DecrementSeatTx(ctx, tx, id)
	if err == nil {
		return class, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Upstream(err, "failed to reserve seat")
	}
	exists, err := s.repo.ExistsTx(ctx, tx, id)
	if err != nil {
		return nil, appErrors.Upstream(err, "failed to reserve seat")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "class has no available seats")
}

// InvalidateCache drops cached listings after a seat change committed elsewhere.
func (s *ClassService) InvalidateCache(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *ClassService) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, classCachePattern)
}

func validID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}
