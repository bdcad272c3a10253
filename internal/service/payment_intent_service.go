package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/athletenexus-api/internal/dto"
	"github.com/noah-isme/athletenexus-api/internal/models"
	appErrors "github.com/noah-isme/athletenexus-api/pkg/errors"
	"github.com/noah-isme/athletenexus-api/pkg/payment"
)

type intentRepository interface {
	Upsert(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentIntent, error)
}

// PaymentIntentService obtains charge authorizations from the configured processor.
type PaymentIntentService struct {
	processor payment.Processor
	intents   intentRepository
	currency  string
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentIntentService constructs PaymentIntentService. intents may be nil to skip bookkeeping.
func NewPaymentIntentService(processor payment.Processor, intents intentRepository, currency string, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *PaymentIntentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if currency == "" {
		currency = "usd"
	}
	return &PaymentIntentService{
		processor: processor,
		intents:   intents,
		currency:  strings.ToLower(currency),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// CreateIntent converts the price to minor units (x100, truncated) and asks the processor for an intent.
func (s *PaymentIntentService) CreateIntent(ctx context.Context, req dto.CreateIntentRequest) (*dto.CreateIntentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment intent payload")
	}
	amountMinor, err := payment.MinorUnits(req.Price)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "price must be greater than zero")
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.currency
	}
	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}

	metadata := map[string]string{}
	if req.ClassID != "" {
		metadata["class_id"] = req.ClassID
	}
	if req.Email != "" {
		metadata["payer_email"] = normaliseEmail(req.Email)
	}

	intent, err := s.processor.CreateIntent(ctx, payment.IntentRequest{
		AmountMinor:    amountMinor,
		Currency:       currency,
		IdempotencyKey: key,
		ReceiptEmail:   normaliseEmail(req.Email),
		Metadata:       metadata,
	})
	if err != nil {
		s.metrics.RecordIntent(s.processor.Name(), OutcomeFailed)
		s.logger.Warn("payment intent rejected", zap.String("provider", s.processor.Name()), zap.Int64("amount_minor", amountMinor), zap.Error(err))
		if errors.Is(err, payment.ErrFractionalAmount) || errors.Is(err, payment.ErrInvalidAmount) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		message := err.Error()
		var procErr *payment.ProcessorError
		if errors.As(err, &procErr) {
			message = procErr.Message
		}
		return nil, appErrors.Upstream(err, message)
	}
	s.metrics.RecordIntent(intent.Provider, OutcomeIssued)

	if s.intents != nil {
		if _, err := s.intents.Upsert(ctx, &models.PaymentIntent{
			Provider:       intent.Provider,
			ProviderRef:    intent.Reference,
			IdempotencyKey: key,
			AmountMinor:    intent.AmountMinor,
			Currency:       intent.Currency,
			PayerEmail:     normaliseEmail(req.Email),
			ClassID:        req.ClassID,
			Status:         models.IntentStatusPending,
		}); err != nil {
			s.logger.Warn("failed to record payment intent", zap.String("provider_ref", intent.Reference), zap.Error(err))
		}
	}

	return &dto.CreateIntentResponse{
		ClientSecret: intent.ClientSecret,
		IntentID:     intent.Reference,
		AmountMinor:  intent.AmountMinor,
		Currency:     intent.Currency,
		Provider:     intent.Provider,
	}, nil
}
