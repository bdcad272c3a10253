package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/athletenexus-api/internal/dto"
	"github.com/noah-isme/athletenexus-api/internal/models"
	appErrors "github.com/noah-isme/athletenexus-api/pkg/errors"
)

type userServiceMock struct {
	exists  bool
	roleReq dto.UpdateRoleRequest
	err     error
}

func (m *userServiceMock) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	return []models.User{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (m *userServiceMock) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	if m.exists {
		return &dto.CreateUserResponse{Created: false, Message: "user already exists"}, nil
	}
	return &dto.CreateUserResponse{Created: true, User: &models.User{ID: "u-1", Email: req.Email}}, nil
}

func (m *userServiceMock) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return &models.User{ID: "u-1", Email: email, Role: models.RoleInstructor}, nil
}

func (m *userServiceMock) UpdateRole(ctx context.Context, req dto.UpdateRoleRequest) error {
	m.roleReq = req
	return m.err
}

func (m *userServiceMock) Delete(ctx context.Context, id string) error {
	return m.err
}

func TestUserHandlerCreate(t *testing.T) {
	svc := &userServiceMock{}
	h := NewUserHandler(svc)

	c, w := newGinContext(http.MethodPost, "/users", []byte(`{"email":"sam@student.test","name":"Sam"}`))
	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	svc.exists = true
	c, w = newGinContext(http.MethodPost, "/users", []byte(`{"email":"sam@student.test"}`))
	h.Create(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"user already exists"`)
}

func TestUserHandlerRole(t *testing.T) {
	h := NewUserHandler(&userServiceMock{})
	c, w := newGinContext(http.MethodGet, "/users/role?email=ana@gym.test", nil)
	h.Role(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"instructor"`)
}

func TestUserHandlerUpdateRoleAndDelete(t *testing.T) {
	svc := &userServiceMock{}
	h := NewUserHandler(svc)

	c, w := newGinContext(http.MethodPatch, "/users/role?id=u-1&role=admin", nil)
	h.UpdateRole(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleAdmin, svc.roleReq.Role)

	svc.err = appErrors.Clone(appErrors.ErrNotFound, "user not found")
	c, w = newGinContext(http.MethodDelete, "/users?id=u-9", nil)
	h.Delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
