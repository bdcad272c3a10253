package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Selection is a student's pre-payment pick of a class.
type Selection struct {
	ID           string    `db:"id" json:"id"`
	StudentEmail string    `db:"student_email" json:"studentEmail"`
	ClassID      string    `db:"class_id" json:"classId"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// SelectionDetail joins a selection with the class it references.
type SelectionDetail struct {
	Selection
	ClassName       string          `db:"class_name" json:"className"`
	Image           string          `db:"image" json:"image"`
	InstructorName  string          `db:"instructor_name" json:"instructorName"`
	InstructorEmail string          `db:"instructor_email" json:"instructorEmail"`
	Price           decimal.Decimal `db:"price" json:"price"`
	AvailableSeats  int             `db:"available_seats" json:"availableSeats"`
}
