package dto

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/athletenexus-api/internal/models"
)

// CreateClassRequest is submitted by an instructor. Status is always pending on creation.
type CreateClassRequest struct {
	Name            string           `json:"name" validate:"required,max=200"`
	Image           string           `json:"image" validate:"omitempty,url"`
	InstructorName  string           `json:"instructorName" validate:"max=120"`
	InstructorEmail string           `json:"instructorEmail" validate:"omitempty,email"`
	Price           decimal.Decimal  `json:"price"`
	AvailableSeats  models.SeatCount `json:"availableSeats" validate:"min=0"`
}

// ClassStatusRequest carries the query parameters of PATCH /classes/status.
type ClassStatusRequest struct {
	ID     string             `form:"id" validate:"required"`
	Status models.ClassStatus `form:"status" validate:"required"`
}

// ClassFeedbackRequest carries the query parameters of PATCH /classes/feedback.
type ClassFeedbackRequest struct {
	ID       string `form:"id" validate:"required"`
	Feedback string `form:"feedback" validate:"max=2000"`
}
