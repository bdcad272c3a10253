package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/athletenexus-api/internal/models"
)

const intentColumns = "id, provider, provider_ref, idempotency_key, amount_minor, currency, payer_email, class_id, status, created_at, updated_at"

// PaymentIntentRepository records issued processor intents for reconciliation.
type PaymentIntentRepository struct {
	db *sqlx.DB
}

// NewPaymentIntentRepository constructs a payment intent repository.
func NewPaymentIntentRepository(db *sqlx.DB) *PaymentIntentRepository {
	return &PaymentIntentRepository{db: db}
}

// Upsert stores the intent keyed by idempotency key and returns the stored row.
// A repeated key keeps the original row and status.
func (r *PaymentIntentRepository) Upsert(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentIntent, error) {
	if intent.ID == "" {
		intent.ID = uuid.NewString()
	}
	if intent.Status == "" {
		intent.Status = models.IntentStatusPending
	}
	now := time.Now().UTC()
	query := `INSERT INTO payment_intents (` + intentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
ON CONFLICT (idempotency_key) DO UPDATE SET updated_at = EXCLUDED.updated_at
RETURNING ` + intentColumns
	var stored models.PaymentIntent
	if err := r.db.GetContext(ctx, &stored, query,
		intent.ID, intent.Provider, intent.ProviderRef, intent.IdempotencyKey, intent.AmountMinor,
		intent.Currency, intent.PayerEmail, intent.ClassID, string(intent.Status), now,
	); err != nil {
		return nil, fmt.Errorf("upsert payment intent: %w", err)
	}
	return &stored, nil
}

// MarkSucceededTx flags the intent matching the processor reference as settled. It reports whether a row changed.
func (r *PaymentIntentRepository) MarkSucceededTx(ctx context.Context, tx *sqlx.Tx, providerRef string) (bool, error) {
	const query = `UPDATE payment_intents SET status = $2, updated_at = $3 WHERE provider_ref = $1 AND status <> $2`
	res, err := tx.ExecContext(ctx, query, providerRef, string(models.IntentStatusSucceeded), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("mark intent succeeded: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark intent succeeded rows affected: %w", err)
	}
	return affected > 0, nil
}

// MarkStale moves pending intents created before cutoff to stale and returns them.
func (r *PaymentIntentRepository) MarkStale(ctx context.Context, cutoff time.Time) ([]models.PaymentIntent, error) {
	query := `UPDATE payment_intents SET status = $1, updated_at = $2 WHERE status = $3 AND created_at < $4 RETURNING ` + intentColumns
	var intents []models.PaymentIntent
	if err := r.db.SelectContext(ctx, &intents, query,
		string(models.IntentStatusStale), time.Now().UTC(), string(models.IntentStatusPending), cutoff,
	); err != nil {
		return nil, fmt.Errorf("mark stale intents: %w", err)
	}
	return intents, nil
}
