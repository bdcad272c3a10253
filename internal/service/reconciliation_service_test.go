package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/athletenexus-api/internal/models"
)

type mockStaleRepo struct {
	cutoffs []time.Time
	intents []models.PaymentIntent
	err     error
}

func (m *mockStaleRepo) MarkStale(ctx context.Context, cutoff time.Time) ([]models.PaymentIntent, error) {
	m.cutoffs = append(m.cutoffs, cutoff)
	return m.intents, m.err
}

func TestReconciliationRunOnceUsesStaleWindow(t *testing.T) {
	repo := &mockStaleRepo{intents: []models.PaymentIntent{{ProviderRef: "pi_1"}, {ProviderRef: "pi_2"}}}
	svc := NewReconciliationService(repo, nil, nil, 2*time.Hour, time.Minute, nil)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	n, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, repo.cutoffs, 1)
	assert.Equal(t, now.Add(-2*time.Hour), repo.cutoffs[0])
}

func TestReconciliationRunOnceError(t *testing.T) {
	svc := NewReconciliationService(&mockStaleRepo{err: errors.New("db down")}, nil, nil, 0, 0, nil)
	n, err := svc.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestReconciliationRunStopsOnCancel(t *testing.T) {
	repo := &mockStaleRepo{}
	svc := NewReconciliationService(repo, nil, nil, time.Hour, time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciliation did not stop")
	}
}
