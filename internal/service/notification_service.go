package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/athletenexus-api/internal/models"
	"github.com/noah-isme/athletenexus-api/pkg/jobs"
	"github.com/noah-isme/athletenexus-api/pkg/notify"
)

// Notification job types.
const (
	JobEnrollment   = "enrollment"
	JobStaleIntents = "stale_intents"
)

// NotificationService delivers operational notices through a background worker pool.
type NotificationService struct {
	queue    *jobs.Queue
	notifier notify.Notifier
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewNotificationService builds the queue. Call Start before enqueueing.
func NewNotificationService(notifier notify.Notifier, metrics *MetricsService, cfg jobs.QueueConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.NewLog(logger)
	}
	cfg.Logger = logger
	s := &NotificationService{notifier: notifier, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.handle, cfg)
	return s
}

// Start launches the workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for in-flight deliveries.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// EnrollmentRecorded queues a notice for a committed payment. Failures are logged, never returned.
func (s *NotificationService) EnrollmentRecorded(payment *models.Payment, class *models.Class) {
	if s == nil || payment == nil {
		return
	}
	s.enqueue(JobEnrollment, enrollmentText(payment, class))
}

// StaleIntents queues a summary of intents that never produced a payment record.
func (s *NotificationService) StaleIntents(intents []models.PaymentIntent) {
	if s == nil || len(intents) == 0 {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d payment intent(s) need manual reconciliation:", len(intents))
	for _, intent := range intents {
		fmt.Fprintf(&b, "\n- %s %s %d %s payer=%s class=%s", intent.Provider, intent.ProviderRef, intent.AmountMinor, intent.Currency, intent.PayerEmail, intent.ClassID)
	}
	s.enqueue(JobStaleIntents, b.String())
}

func (s *NotificationService) enqueue(kind, text string) {
	job := jobs.Job{ID: uuid.NewString(), Type: kind, Payload: text}
	if err := s.queue.Enqueue(job); err != nil {
		s.metrics.RecordNotification(OutcomeFailed)
		s.logger.Warn("notification dropped", zap.String("type", kind), zap.Error(err))
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	text, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.notifier.Notify(sendCtx, text); err != nil {
		s.metrics.RecordNotification(OutcomeFailed)
		return err
	}
	s.metrics.RecordNotification(OutcomeDelivered)
	return nil
}

func enrollmentText(payment *models.Payment, class *models.Class) string {
	name := payment.ClassName
	seats := ""
	if class != nil {
		if name == "" {
			name = class.Name
		}
		seats = fmt.Sprintf(" (%d seats left, %d enrolled)", class.AvailableSeats, class.TotalEnrolled)
	}
	return fmt.Sprintf("New enrollment: %s paid %s for %s%s", payment.PayerEmail, payment.Amount.StringFixed(2), name, seats)
}
