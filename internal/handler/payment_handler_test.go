package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/athletenexus-api/internal/dto"
	"github.com/noah-isme/athletenexus-api/internal/models"
	"github.com/noah-isme/athletenexus-api/internal/service"
	appErrors "github.com/noah-isme/athletenexus-api/pkg/errors"
)

type intentServiceMock struct {
	req dto.CreateIntentRequest
	err error
}

func (m *intentServiceMock) CreateIntent(ctx context.Context, req dto.CreateIntentRequest) (*dto.CreateIntentResponse, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.CreateIntentResponse{ClientSecret: "pi_1_secret", AmountMinor: 2000, Currency: "usd"}, nil
}

type paymentServiceMock struct {
	recordReq dto.RecordPaymentRequest
	result    *models.PaymentResult
	err       error
	payment   *models.Payment
	email     string
}

func (m *paymentServiceMock) Record(ctx context.Context, req dto.RecordPaymentRequest) (*models.PaymentResult, error) {
	m.recordReq = req
	return m.result, m.err
}

func (m *paymentServiceMock) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	return []models.Payment{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (m *paymentServiceMock) ListByPayer(ctx context.Context, email string, page, size int) ([]models.Payment, *models.Pagination, error) {
	m.email = email
	return []models.Payment{}, &models.Pagination{Page: page, PageSize: size}, nil
}

func (m *paymentServiceMock) ListByInstructor(ctx context.Context, email string, page, size int) ([]models.Payment, *models.Pagination, error) {
	m.email = email
	return []models.Payment{}, &models.Pagination{Page: page, PageSize: size}, nil
}

func (m *paymentServiceMock) Get(ctx context.Context, id string) (*models.Payment, error) {
	if m.payment == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}
	return m.payment, nil
}

type exporterMock struct{}

func (exporterMock) PaymentsCSV(ctx context.Context, filter models.PaymentFilter) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "payments.csv", ContentType: "text/csv", Body: []byte("payment_id\n")}, nil
}

func (exporterMock) Receipt(payment *models.Payment) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "receipt.pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.3")}, nil
}

func TestPaymentHandlerCreateIntent(t *testing.T) {
	intents := &intentServiceMock{}
	h := NewPaymentHandler(intents, &paymentServiceMock{}, exporterMock{})

	c, w := newGinContext(http.MethodPost, "/create-payment-intent", []byte(`{"price":20}`))
	c.Request.Header.Set("Idempotency-Key", "key-1")
	withClaims(c, "sam@student.test", models.RoleStudent)
	h.CreateIntent(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, intents.req.Price.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "key-1", intents.req.IdempotencyKey)
	assert.Equal(t, "sam@student.test", intents.req.Email)
	assert.Contains(t, w.Body.String(), `"clientSecret":"pi_1_secret"`)
}

func TestPaymentHandlerCreateIntentUpstreamFailure(t *testing.T) {
	h := NewPaymentHandler(&intentServiceMock{err: appErrors.Upstream(nil, "Your card was declined.")}, &paymentServiceMock{}, exporterMock{})

	c, w := newGinContext(http.MethodPost, "/create-payment-intent", []byte(`{"price":20}`))
	h.CreateIntent(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Your card was declined.")
}

func TestPaymentHandlerRecord(t *testing.T) {
	payments := &paymentServiceMock{result: &models.PaymentResult{Payment: &models.Payment{ID: "p-1"}}}
	h := NewPaymentHandler(&intentServiceMock{}, payments, exporterMock{})

	c, w := newGinContext(http.MethodPost, "/payments", []byte(`{"classId":"c-1","amount":"20.00","transactionId":"pi_1"}`))
	withClaims(c, "sam@student.test", models.RoleStudent)
	h.Record(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "sam@student.test", payments.recordReq.PayerEmail)

	payments.result.Replayed = true
	c, w = newGinContext(http.MethodPost, "/payments", []byte(`{"classId":"c-1","amount":"20.00","transactionId":"pi_1"}`))
	withClaims(c, "sam@student.test", models.RoleStudent)
	h.Record(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPaymentHandlerRecordRejectsOtherPayer(t *testing.T) {
	payments := &paymentServiceMock{}
	h := NewPaymentHandler(&intentServiceMock{}, payments, exporterMock{})

	c, w := newGinContext(http.MethodPost, "/payments", []byte(`{"classId":"c-1","payerEmail":"kim@student.test","amount":20,"transactionId":"pi_1"}`))
	withClaims(c, "sam@student.test", models.RoleStudent)
	h.Record(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, payments.recordReq.TransactionID)
}

func TestPaymentHandlerRecordCapacityExceeded(t *testing.T) {
	payments := &paymentServiceMock{err: appErrors.Clone(appErrors.ErrCapacityExceeded, "class has no available seats")}
	h := NewPaymentHandler(&intentServiceMock{}, payments, exporterMock{})

	c, w := newGinContext(http.MethodPost, "/payments", []byte(`{"classId":"c-1","amount":20,"transactionId":"pi_1"}`))
	withClaims(c, "sam@student.test", models.RoleStudent)
	h.Record(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CAPACITY_EXCEEDED", decodeEnvelope(t, w).Error.Code)
}

func TestPaymentHandlerReceiptOwnership(t *testing.T) {
	payments := &paymentServiceMock{payment: &models.Payment{ID: "p-1", PayerEmail: "sam@student.test"}}
	h := NewPaymentHandler(&intentServiceMock{}, payments, exporterMock{})

	c, w := newGinContext(http.MethodGet, "/payments/p-1/receipt", nil)
	withClaims(c, "kim@student.test", models.RoleStudent)
	h.Receipt(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = newGinContext(http.MethodGet, "/payments/p-1/receipt", nil)
	withClaims(c, "sam@student.test", models.RoleStudent)
	h.Receipt(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "receipt.pdf")
}

func TestPaymentHandlerExportAndEnrolled(t *testing.T) {
	payments := &paymentServiceMock{}
	h := NewPaymentHandler(&intentServiceMock{}, payments, exporterMock{})

	c, w := newGinContext(http.MethodGet, "/payments/history/export", nil)
	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "payment_id\n", w.Body.String())

	c, w = newGinContext(http.MethodGet, "/payments/enrolled/instructor?email=ana@gym.test", nil)
	h.EnrolledByInstructor(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana@gym.test", payments.email)
}
