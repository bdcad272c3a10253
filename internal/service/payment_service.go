package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/athletenexus-api/internal/dto"
	"github.com/noah-isme/athletenexus-api/internal/models"
	"github.com/noah-isme/athletenexus-api/internal/repository"
	appErrors "github.com/noah-isme/athletenexus-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
	ListForExport(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	FindByTransactionIDTx(ctx context.Context, tx *sqlx.Tx, transactionID string) (*models.Payment, error)
	CreateTx(ctx context.Context, tx *sqlx.Tx, payment *models.Payment) error
}

type seatReserver interface {
	ReserveSeat(ctx context.Context, tx *sqlx.Tx, id string) (*models.Class, error)
	InvalidateCache(ctx context.Context)
}

type selectionTxRepository interface {
	DeleteTx(ctx context.Context, tx *sqlx.Tx, classID, email string) (bool, error)
}

type intentSettler interface {
	MarkSucceededTx(ctx context.Context, tx *sqlx.Tx, providerRef string) (bool, error)
}

type enrollmentNotifier interface {
	EnrollmentRecorded(payment *models.Payment, class *models.Class)
}

// PaymentService records completed payments and keeps class capacity consistent with the ledger.
type PaymentService struct {
	tx         txProvider
	payments   paymentRepository
	seats      seatReserver
	selections selectionTxRepository
	intents    intentSettler
	notifier   enrollmentNotifier
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// PaymentServiceDeps groups PaymentService collaborators. Notifier and Metrics are optional.
type PaymentServiceDeps struct {
	Tx         txProvider
	Payments   paymentRepository
	Seats      seatReserver
	Selections selectionTxRepository
	Intents    intentSettler
	Notifier   enrollmentNotifier
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// NewPaymentService constructs PaymentService.
func NewPaymentService(deps PaymentServiceDeps) *PaymentService {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &PaymentService{
		tx:         deps.Tx,
		payments:   deps.Payments,
		seats:      deps.Seats,
		selections: deps.Selections,
		intents:    deps.Intents,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		validator:  deps.Validator,
		logger:     deps.Logger,
	}
}

// Record commits a payment. Seat decrement, enrollment increment, ledger insert, selection removal
// and intent settlement happen in one transaction; any failure leaves nothing persisted.
// A transaction id that was already recorded returns the original payment with Replayed set.
func (s *PaymentService) Record(ctx context.Context, req dto.RecordPaymentRequest) (*models.PaymentResult, error) {
	req.PayerEmail = normaliseEmail(req.PayerEmail)
	req.TransactionID = strings.TrimSpace(req.TransactionID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "amount must be at least 0.01")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	start := time.Now()
	outcome := OutcomeFailed
	defer func() {
		s.metrics.RecordPayment(outcome, time.Since(start))
	}()

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Upstream(err, "failed to begin payment transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	existing, err := s.payments.FindByTransactionIDTx(ctx, tx, req.TransactionID)
	switch {
	case err == nil:
		if !strings.EqualFold(existing.ClassID, req.ClassID) || !strings.EqualFold(existing.PayerEmail, req.PayerEmail) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "transaction id already recorded for another enrollment")
		}
		outcome = OutcomeReplayed
		s.logger.Info("payment replayed", zap.String("transaction_id", req.TransactionID), zap.String("payment_id", existing.ID))
		return &models.PaymentResult{Payment: existing, Replayed: true}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Upstream(err, "failed to check transaction id")
	}

	class, err := s.seats.ReserveSeat(ctx, tx, req.ClassID)
	if err != nil {
		switch {
		case errors.Is(err, appErrors.ErrCapacityExceeded):
			outcome = OutcomeNoSeats
		case errors.Is(err, appErrors.ErrNotFound):
			outcome = OutcomeNotFound
		}
		return nil, err
	}

	record := &models.Payment{
		ClassID:         class.ID,
		ClassName:       class.Name,
		PayerEmail:      req.PayerEmail,
		InstructorEmail: class.InstructorEmail,
		Amount:          amount,
		TransactionID:   req.TransactionID,
	}
	if err := s.payments.CreateTx(ctx, tx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "transaction already recorded")
		}
		return nil, appErrors.Upstream(err, "failed to store payment")
	}

	if _, err := s.selections.DeleteTx(ctx, tx, class.ID, req.PayerEmail); err != nil {
		return nil, appErrors.Upstream(err, "failed to clear selection")
	}
	if s.intents != nil {
		if _, err := s.intents.MarkSucceededTx(ctx, tx, req.TransactionID); err != nil {
			return nil, appErrors.Upstream(err, "failed to settle payment intent")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Upstream(err, "failed to commit payment")
	}
	committed = true
	outcome = OutcomeRecorded

	s.seats.InvalidateCache(ctx)
	if s.notifier != nil {
		s.notifier.EnrollmentRecorded(record, class)
	}
	s.logger.Info("payment recorded",
		zap.String("payment_id", record.ID),
		zap.String("class_id", class.ID),
		zap.String("payer_email", record.PayerEmail),
		zap.Int("available_seats", class.AvailableSeats),
		zap.Int("total_enrolled", class.TotalEnrolled),
	)
	return &models.PaymentResult{Payment: record, Class: class}, nil
}

// List returns payments for the given filter with pagination.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	payments, total, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Upstream(err, "failed to list payments")
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ListByPayer returns payments made by email.
func (s *PaymentService) ListByPayer(ctx context.Context, email string, page, size int) ([]models.Payment, *models.Pagination, error) {
	email = normaliseEmail(email)
	if email == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "email is required")
	}
	return s.List(ctx, models.PaymentFilter{PayerEmail: email, Page: page, PageSize: size})
}

// ListByInstructor returns payments for classes taught by email.
func (s *PaymentService) ListByInstructor(ctx context.Context, email string, page, size int) ([]models.Payment, *models.Pagination, error) {
	email = normaliseEmail(email)
	if email == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "email is required")
	}
	return s.List(ctx, models.PaymentFilter{InstructorEmail: email, Page: page, PageSize: size})
}

// Get returns a payment by id.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	if !validID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}
	p, err := s.payments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Upstream(err, "failed to load payment")
	}
	return p, nil
}

// Export returns payments for CSV export.
func (s *PaymentService) Export(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	payments, err := s.payments.ListForExport(ctx, filter)
	if err != nil {
		return nil, appErrors.Upstream(err, "failed to export payments")
	}
	return payments, nil
}
