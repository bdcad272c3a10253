package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/athletenexus-api/internal/models"
)

var intentRowColumns = []string{"id", "provider", "provider_ref", "idempotency_key", "amount_minor", "currency", "payer_email", "class_id", "status", "created_at", "updated_at"}

func TestPaymentIntentRepositoryUpsertReturnsStoredRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentIntentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (idempotency_key) DO UPDATE SET updated_at = EXCLUDED.updated_at")).
		WithArgs(sqlmock.AnyArg(), "stripe", "pi_1", "key-1", int64(2000), "usd", "a@x.com", "c1", "pending", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(intentRowColumns).
			AddRow("orig", "stripe", "pi_1", "key-1", 2000, "usd", "a@x.com", "c1", "succeeded", now, now))

	stored, err := repo.Upsert(context.Background(), &models.PaymentIntent{
		Provider: "stripe", ProviderRef: "pi_1", IdempotencyKey: "key-1", AmountMinor: 2000,
		Currency: "usd", PayerEmail: "a@x.com", ClassID: "c1",
	})
	require.NoError(t, err)
	assert.Equal(t, "orig", stored.ID)
	assert.Equal(t, models.IntentStatusSucceeded, stored.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentIntentRepositoryMarkSucceededTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentIntentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE payment_intents SET status = $2, updated_at = $3 WHERE provider_ref = $1 AND status <> $2")).
		WithArgs("pi_1", "succeeded", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	changed, err := repo.MarkSucceededTx(context.Background(), tx, "pi_1")
	require.NoError(t, err)
	assert.True(t, changed)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentIntentRepositoryMarkStale(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentIntentRepository(db)

	cutoff := time.Now().Add(-24 * time.Hour)
	old := cutoff.Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE payment_intents SET status = $1, updated_at = $2 WHERE status = $3 AND created_at < $4 RETURNING")).
		WithArgs("stale", sqlmock.AnyArg(), "pending", cutoff).
		WillReturnRows(sqlmock.NewRows(intentRowColumns).
			AddRow("i1", "stripe", "pi_9", "key-9", 1500, "usd", "b@x.com", "c2", "stale", old, time.Now()))

	intents, err := repo.MarkStale(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, "pi_9", intents[0].ProviderRef)
	assert.NoError(t, mock.ExpectationsWereMet())
}
