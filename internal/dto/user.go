package dto

import "github.com/noah-isme/athletenexus-api/internal/models"

// CreateUserRequest registers a user. Role defaults to student.
type CreateUserRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Name     string          `json:"name" validate:"max=120"`
	PhotoURL string          `json:"photoUrl" validate:"omitempty,url"`
	Role     models.UserRole `json:"role"`
}

// CreateUserResponse reports whether a new user was written.
type CreateUserResponse struct {
	Created bool         `json:"created"`
	Message string       `json:"message,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// UpdateRoleRequest carries the query parameters of PATCH /users/role.
type UpdateRoleRequest struct {
	ID   string          `form:"id" validate:"required"`
	Role models.UserRole `form:"role" validate:"required"`
}
