package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/athletenexus-api/internal/models"
)

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// SelectionRepository manages the selected_classes table.
type SelectionRepository struct {
	db *sqlx.DB
}

// NewSelectionRepository constructs a selection repository.
func NewSelectionRepository(db *sqlx.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

// ListByStudent returns a student's selections joined with class details, newest first.
func (r *SelectionRepository) ListByStudent(ctx context.Context, email string) ([]models.SelectionDetail, error) {
	const query = `SELECT s.id, s.student_email, s.class_id, s.created_at, c.name AS class_name, c.image, c.instructor_name, c.instructor_email, c.price, c.available_seats
FROM selected_classes s JOIN classes c ON c.id = s.class_id
WHERE LOWER(s.student_email) = LOWER($1)
ORDER BY s.created_at DESC`
	var items []models.SelectionDetail
	if err := r.db.SelectContext(ctx, &items, query, email); err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	return items, nil
}

// Create inserts a selection. A repeated (student, class) pair yields ErrDuplicate.
func (r *SelectionRepository) Create(ctx context.Context, selection *models.Selection) error {
	if selection.ID == "" {
		selection.ID = uuid.NewString()
	}
	if selection.CreatedAt.IsZero() {
		selection.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO selected_classes (id, student_email, class_id, created_at) VALUES (:id, :student_email, :class_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, selection); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create selection: %w", err)
	}
	return nil
}

// Delete removes the selection for (classID, email). Returns sql.ErrNoRows when nothing matched.
func (r *SelectionRepository) Delete(ctx context.Context, classID, email string) error {
	const query = `DELETE FROM selected_classes WHERE class_id = $1 AND LOWER(student_email) = LOWER($2)`
	res, err := r.db.ExecContext(ctx, query, classID, email)
	if err != nil {
		return fmt.Errorf("delete selection: %w", err)
	}
	return expectAffected(res, "delete selection")
}

// DeleteTx removes the selection inside a payment transaction. A missing selection is not an error.
func (r *SelectionRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, classID, email string) (bool, error) {
	const query = `DELETE FROM selected_classes WHERE class_id = $1 AND LOWER(student_email) = LOWER($2)`
	res, err := tx.ExecContext(ctx, query, classID, email)
	if err != nil {
		return false, fmt.Errorf("delete selection: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete selection rows affected: %w", err)
	}
	return affected > 0, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

