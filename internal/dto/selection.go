package dto

// AddSelectionRequest adds a class to a student's selection list.
type AddSelectionRequest struct {
	ClassID      string `json:"classId" validate:"required"`
	StudentEmail string `json:"email" validate:"omitempty,email"`
}
