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
	appErrors "github.com/noah-isme/athletenexus-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CreateIfAbsent(ctx context.Context, user *models.User) (bool, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
	Delete(ctx context.Context, id string) error
}

// UserService handles user management workflows.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Upstream(err, "failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Create registers a user. An email that already exists is a no-op reported as created=false.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	req.Email = normaliseEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	role := models.UserRole(strings.ToLower(string(req.Role)))
	if role == "" {
		role = models.RoleStudent
	}
	if role == models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role must be granted by an admin")
	}
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be student or instructor")
	}

	user := &models.User{Email: req.Email, Name: strings.TrimSpace(req.Name), PhotoURL: req.PhotoURL, Role: role}
	created, err := s.repo.CreateIfAbsent(ctx, user)
	if err != nil {
		return nil, appErrors.Upstream(err, "failed to create user")
	}
	if !created {
		return &dto.CreateUserResponse{Created: false, Message: "user already exists"}, nil
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &dto.CreateUserResponse{Created: true, User: user}, nil
}

// GetByEmail returns the user registered with email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normaliseEmail(email)
	if email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email is required")
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Upstream(err, "failed to load user")
	}
	return user, nil
}

// UpdateRole changes the role of an existing user.
func (s *UserService) UpdateRole(ctx context.Context, req dto.UpdateRoleRequest) error {
	req.Role = models.UserRole(strings.ToLower(string(req.Role)))
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role request")
	}
	if !req.Role.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "role must be student, instructor or admin")
	}
	if !validID(req.ID) {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	if err := s.repo.UpdateRole(ctx, req.ID, req.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Upstream(err, "failed to update role")
	}
	s.logger.Info("user role changed", zap.String("user_id", req.ID), zap.String("role", string(req.Role)))
	return nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Upstream(err, "failed to delete user")
	}
	return nil
}
