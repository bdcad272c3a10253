package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/athletenexus-api/internal/models"
)

const classColumns = "id, name, image, instructor_name, instructor_email, price, available_seats, total_enrolled, status, feedback, created_at, updated_at"

// ClassRepository manages persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes for the requested catalog view.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	base := "FROM classes WHERE 1=1"
	var conditions []string
	var args []interface{}

	switch filter.View {
	case models.ClassViewApproved, models.ClassViewPopular:
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(models.ClassStatusApproved))
	case models.ClassViewDenied:
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(models.ClassStatusDenied))
	case models.ClassViewPending:
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(models.ClassStatusPending))
	}
	if filter.InstructorEmail != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(instructor_email) = LOWER($%d)", len(args)+1))
		args = append(args, filter.InstructorEmail)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d)", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	if filter.View == models.ClassViewPopular {
		limit := filter.Limit
		if limit <= 0 {
			limit = models.PopularLimit
		}
		query := fmt.Sprintf("SELECT %s %s ORDER BY total_enrolled DESC, created_at ASC LIMIT %d", classColumns, base, limit)
		var classes []models.Class
		if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
			return nil, 0, fmt.Errorf("list popular classes: %w", err)
		}
		return classes, len(classes), nil
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":            true,
		"price":           true,
		"available_seats": true,
		"total_enrolled":  true,
		"created_at":      true,
		"updated_at":      true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", classColumns, base, sortBy, order, size, offset)
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// FindByID returns a class record by ID.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	query := "SELECT " + classColumns + " FROM classes WHERE id = $1"
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find class: %w", err)
	}
	return &class, nil
}

// Create persists a class record.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	if class.Status == "" {
		class.Status = models.ClassStatusPending
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	const query = `INSERT INTO classes (id, name, image, instructor_name, instructor_email, price, available_seats, total_enrolled, status, feedback, created_at, updated_at) VALUES (:id, :name, :image, :instructor_name, :instructor_email, :price, :available_seats, :total_enrolled, :status, :feedback, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// UpdateStatus sets the review status. Returns sql.ErrNoRows when the class does not exist.
func (r *ClassRepository) UpdateStatus(ctx context.Context, id string, status models.ClassStatus) error {
	const query = `UPDATE classes SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update class status: %w", err)
	}
	return expectAffected(res, "update class status")
}

// UpdateFeedback sets admin feedback. Returns sql.ErrNoRows when the class does not exist.
func (r *ClassRepository) UpdateFeedback(ctx context.Context, id string, feedback string) error {
	const query = `UPDATE classes SET feedback = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, feedback, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update class feedback: %w", err)
	}
	return expectAffected(res, "update class feedback")
}

// ExistsTx reports whether the class exists, as seen by tx.
func (r *ClassRepository) ExistsTx(ctx context.Context, tx *sqlx.Tx, id string) (bool, error) {
	var exists int
	if err := tx.GetContext(ctx, &exists, `SELECT 1 FROM classes WHERE id = $1 LIMIT 1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check class exists: %w", err)
	}
	return true, nil
}

// DecrementSeatTx moves one seat from available to enrolled in a single conditional statement.
// It returns sql.ErrNoRows when the class is missing or has no seats left; ExistsTx tells the two apart.
func (r *ClassRepository) DecrementSeatTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Class, error) {
	query := `UPDATE classes SET available_seats = available_seats - 1, total_enrolled = total_enrolled + 1, updated_at = $2 WHERE id = $1 AND available_seats > 0 RETURNING ` + classColumns
	var class models.Class
	if err := tx.GetContext(ctx, &class, query, id, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("decrement class seat: %w", err)
	}
	return &class, nil
}

func expectAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
