package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/athletenexus-api/internal/models"
)

type staleIntentRepository interface {
	MarkStale(ctx context.Context, cutoff time.Time) ([]models.PaymentIntent, error)
}

// ReconciliationService flags payment intents that were issued but never turned into a payment record.
type ReconciliationService struct {
	repo       staleIntentRepository
	notifier   *NotificationService
	metrics    *MetricsService
	staleAfter time.Duration
	interval   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewReconciliationService constructs the reconciler.
func NewReconciliationService(repo staleIntentRepository, notifier *NotificationService, metrics *MetricsService, staleAfter, interval time.Duration, logger *zap.Logger) *ReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ReconciliationService{
		repo:       repo,
		notifier:   notifier,
		metrics:    metrics,
		staleAfter: staleAfter,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
	}
}

// RunOnce marks pending intents older than the stale window and reports how many were flagged.
func (s *ReconciliationService) RunOnce(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.staleAfter)
	intents, err := s.repo.MarkStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(intents) == 0 {
		return 0, nil
	}
	for _, intent := range intents {
		s.logger.Warn("payment intent without enrollment",
			zap.String("provider", intent.Provider),
			zap.String("provider_ref", intent.ProviderRef),
			zap.Int64("amount_minor", intent.AmountMinor),
			zap.String("payer_email", intent.PayerEmail),
			zap.String("class_id", intent.ClassID),
			zap.Time("created_at", intent.CreatedAt),
		)
	}
	s.metrics.AddStaleIntents(len(intents))
	s.notifier.StaleIntents(intents)
	return len(intents), nil
}

// Run reconciles on every interval until ctx is cancelled.
func (s *ReconciliationService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.logger.Info("reconciliation started", zap.Duration("interval", s.interval), zap.Duration("stale_after", s.staleAfter))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reconciliation stopped")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("reconciliation failed", zap.Error(err))
			}
		}
	}
}
