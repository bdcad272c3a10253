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

const paymentColumns = "id, class_id, class_name, payer_email, instructor_email, amount, transaction_id, created_at"

// maxExportRows bounds CSV exports.
const maxExportRows = 10000

// PaymentRepository manages the append-only payments ledger.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a payment repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns payments newest first, optionally scoped to a payer or an instructor.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	base, args := paymentWhere(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", paymentColumns, base, size, offset)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// ListForExport returns up to maxExportRows payments matching filter, newest first.
func (r *PaymentRepository) ListForExport(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	base, args := paymentWhere(filter)
	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d", paymentColumns, base, maxExportRows)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, fmt.Errorf("export payments: %w", err)
	}
	return payments, nil
}

// FindByID returns a single payment.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, "SELECT "+paymentColumns+" FROM payments WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return &payment, nil
}

// FindByTransactionIDTx looks up a payment by processor transaction reference inside tx.
func (r *PaymentRepository) FindByTransactionIDTx(ctx context.Context, tx *sqlx.Tx, transactionID string) (*models.Payment, error) {
	var payment models.Payment
	if err := tx.GetContext(ctx, &payment, "SELECT "+paymentColumns+" FROM payments WHERE transaction_id = $1", transactionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find payment by transaction: %w", err)
	}
	return &payment, nil
}

// CreateTx appends a payment inside tx. A repeated transaction id yields ErrDuplicate.
func (r *PaymentRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO payments (id, class_id, class_name, payer_email, instructor_email, amount, transaction_id, created_at) VALUES (:id, :class_id, :class_name, :payer_email, :instructor_email, :amount, :transaction_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, payment); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func paymentWhere(filter models.PaymentFilter) (string, []interface{}) {
	base := "FROM payments WHERE 1=1"
	var conditions []string
	var args []interface{}
	if filter.PayerEmail != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(payer_email) = LOWER($%d)", len(args)+1))
		args = append(args, filter.PayerEmail)
	}
	if filter.InstructorEmail != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(instructor_email) = LOWER($%d)", len(args)+1))
		args = append(args, filter.InstructorEmail)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	return base, args
}
