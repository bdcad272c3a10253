package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ClassStatus tracks the review state of a class.
type ClassStatus string

// Possible class statuses.
const (
	ClassStatusPending  ClassStatus = "pending"
	ClassStatusApproved ClassStatus = "approved"
	ClassStatusDenied   ClassStatus = "denied"
)

// Valid reports whether s is a known status.
func (s ClassStatus) Valid() bool {
	switch s {
	case ClassStatusPending, ClassStatusApproved, ClassStatusDenied:
		return true
	}
	return false
}

// ClassView names the read projections offered by the catalog.
type ClassView string

// Catalog views.
const (
	ClassViewAll        ClassView = ""
	ClassViewApproved   ClassView = "approved"
	ClassViewDenied     ClassView = "denied"
	ClassViewPending    ClassView = "pending"
	ClassViewPopular    ClassView = "popular"
	ClassViewInstructor ClassView = "instructor"
)

// PopularLimit caps the popular view.
const PopularLimit = 6

// Class is a course offering with finite seats.
type Class struct {
	ID              string          `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	Image           string          `db:"image" json:"image"`
	InstructorName  string          `db:"instructor_name" json:"instructorName"`
	InstructorEmail string          `db:"instructor_email" json:"instructorEmail"`
	Price           decimal.Decimal `db:"price" json:"price"`
	AvailableSeats  int             `db:"available_seats" json:"availableSeats"`
	TotalEnrolled   int             `db:"total_enrolled" json:"totalEnrolled"`
	Status          ClassStatus     `db:"status" json:"status"`
	Feedback        *string         `db:"feedback" json:"feedback,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// Capacity is availableSeats + totalEnrolled, conserved by enrollment.
func (c Class) Capacity() int {
	return c.AvailableSeats + c.TotalEnrolled
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	View            ClassView
	InstructorEmail string
	Search          string
	Page            int
	PageSize        int
	SortBy          string
	SortOrder       string
	Limit           int
}

// SeatCount accepts either a JSON number or a numeric string, e.g. 5 or "5".
type SeatCount int

// UnmarshalJSON implements json.Unmarshaler.
func (s *SeatCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		raw = strings.TrimSpace(str)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("seat count %q is not an integer", raw)
	}
	*s = SeatCount(n)
	return nil
}
