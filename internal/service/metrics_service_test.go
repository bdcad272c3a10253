package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServicePaymentCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordPayment(OutcomeRecorded, 10*time.Millisecond)
	m.RecordPayment(OutcomeNoSeats, time.Millisecond)
	m.RecordPayment(OutcomeNoSeats, time.Millisecond)
	m.RecordIntent("stripe", OutcomeIssued)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `payments_total{outcome="capacity_exceeded"} 2`)

	snap := m.Snapshot()
	assert.EqualValues(t, 1, snap.PaymentsRecorded)
	assert.EqualValues(t, 2, snap.CapacityRejections)
	assert.EqualValues(t, 1, snap.IntentsIssued)
}

func TestMetricsServiceCacheRatioAndHandler(t *testing.T) {
	m := NewMetricsService()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	assert.InDelta(t, 0.5, m.Snapshot().CacheHitRatio, 0.0001)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cache_hits_total 1")
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.RecordPayment(OutcomeRecorded, 0)
	m.RecordIntent("stripe", OutcomeFailed)
	m.AddStaleIntents(3)
	assert.Zero(t, m.Snapshot().PaymentsRecorded)
}
