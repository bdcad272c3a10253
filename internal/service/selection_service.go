package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/athletenexus-api/internal/dto"
	"github.com/noah-isme/athletenexus-api/internal/models"
	"github.com/noah-isme/athletenexus-api/internal/repository"
	appErrors "github.com/noah-isme/athletenexus-api/pkg/errors"
)

type selectionRepository interface {
	ListByStudent(ctx context.Context, email string) ([]models.SelectionDetail, error)
	Create(ctx context.Context, selection *models.Selection) error
	Delete(ctx context.Context, classID, email string) error
}

type classLookup interface {
	Get(ctx context.Context, id string) (*models.Class, error)
}

// SelectionService manages students' pre-payment class picks.
type SelectionService struct {
	repo      selectionRepository
	classes   classLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSelectionService constructs SelectionService.
func NewSelectionService(repo selectionRepository, classes classLookup, validate *validator.Validate, logger *zap.Logger) *SelectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionService{repo: repo, classes: classes, validator: validate, logger: logger}
}

// ListForStudent returns the selections of a student.
func (s *SelectionService) ListForStudent(ctx context.Context, email string) ([]models.SelectionDetail, error) {
	email = normaliseEmail(email)
	if email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email is required")
	}
	items, err := s.repo.ListByStudent(ctx, email)
	if err != nil {
		return nil, appErrors.Upstream(err, "failed to list selections")
	}
	if items == nil {
		items = []models.SelectionDetail{}
	}
	return items, nil
}

// Add records a selection. The class must exist and a student may select a class once.
func (s *SelectionService) Add(ctx context.Context, req dto.AddSelectionRequest) (*models.Selection, error) {
	req.StudentEmail = normaliseEmail(req.StudentEmail)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload")
	}
	if req.StudentEmail == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email is required")
	}
	if _, err := s.classes.Get(ctx, req.ClassID); err != nil {
		return nil, err
	}

	selection := &models.Selection{StudentEmail: req.StudentEmail, ClassID: req.ClassID}
	if err := s.repo.Create(ctx, selection); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "class already selected")
		}
		return nil, appErrors.Upstream(err, "failed to save selection")
	}
	return selection, nil
}

// Remove deletes the selection identified by (classID, email).
func (s *SelectionService) Remove(ctx context.Context, classID, email string) error {
	email = normaliseEmail(email)
	if strings.TrimSpace(classID) == "" || email == "" {
		return appErrors.Clone(appErrors.ErrValidation, "class id and email are required")
	}
	if !validID(classID) {
		return appErrors.Clone(appErrors.ErrNotFound, "selection not found")
	}
	if err := s.repo.Delete(ctx, classID, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "selection not found")
		}
		return appErrors.Upstream(err, "failed to remove selection")
	}
	return nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
