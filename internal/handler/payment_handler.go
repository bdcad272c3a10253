package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/athletenexus-api/internal/dto"
	"github.com/noah-isme/athletenexus-api/internal/middleware"
	"github.com/noah-isme/athletenexus-api/internal/models"
	"github.com/noah-isme/athletenexus-api/internal/service"
	appErrors "github.com/noah-isme/athletenexus-api/pkg/errors"
	"github.com/noah-isme/athletenexus-api/pkg/response"
)

type intentService interface {
	CreateIntent(ctx context.Context, req dto.CreateIntentRequest) (*dto.CreateIntentResponse, error)
}

type paymentService interface {
	Record(ctx context.Context, req dto.RecordPaymentRequest) (*models.PaymentResult, error)
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error)
	ListByPayer(ctx context.Context, email string, page, size int) ([]models.Payment, *models.Pagination, error)
	ListByInstructor(ctx context.Context, email string, page, size int) ([]models.Payment, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Payment, error)
}

type paymentExporter interface {
	PaymentsCSV(ctx context.Context, filter models.PaymentFilter) (*service.ExportFile, error)
	Receipt(payment *models.Payment) (*service.ExportFile, error)
}

// PaymentHandler exposes intent issuance, payment recording and the payment ledger.
type PaymentHandler struct {
	intents  intentService
	payments paymentService
	exports  paymentExporter
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(intents intentService, payments paymentService, exports paymentExporter) *PaymentHandler {
	return &PaymentHandler{intents: intents, payments: payments, exports: exports}
}

// CreateIntent godoc
// @Summary Create payment intent
// @Description Converts the price to minor units and returns the processor client secret
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.CreateIntentRequest true "Intent payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /create-payment-intent [post]
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req dto.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment intent payload"))
		return
	}
	if req.Email == "" {
		if claims := claimsFromContext(c); claims != nil {
			req.Email = claims.Email
		}
	}
	if key := c.GetHeader("Idempotency-Key"); key != "" && req.IdempotencyKey == "" {
		req.IdempotencyKey = key
	}

	res, err := h.intents.CreateIntent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Record godoc
// @Summary Record payment
// @Description Commits a completed payment and enrolls the payer in one transaction
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.RecordPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope "transaction already recorded"
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}
	if strings.TrimSpace(req.PayerEmail) == "" {
		req.PayerEmail = claims.Email
	}
	if !isAdmin(claims) && !middleware.IsSelf(claims, req.PayerEmail) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "payer email does not match token"))
		return
	}

	result, err := h.payments.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	response.JSON(c, status, result, nil)
}

// History godoc
// @Summary List all payments
// @Tags Payments
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /payments/history [get]
func (h *PaymentHandler) History(c *gin.Context) {
	page, size := pageParams(c)
	payments, pagination, err := h.payments.List(c.Request.Context(), models.PaymentFilter{Page: page, PageSize: size})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// Export godoc
// @Summary Export payments as CSV
// @Tags Payments
// @Produce text/csv
// @Param payerEmail query string false "Payer filter"
// @Param instructorEmail query string false "Instructor filter"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /payments/history/export [get]
func (h *PaymentHandler) Export(c *gin.Context) {
	filter := models.PaymentFilter{
		PayerEmail:      strings.ToLower(strings.TrimSpace(c.Query("payerEmail"))),
		InstructorEmail: strings.ToLower(strings.TrimSpace(c.Query("instructorEmail"))),
	}
	file, err := h.exports.PaymentsCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Receipt godoc
// @Summary Download payment receipt
// @Tags Payments
// @Produce application/pdf
// @Param id path string true "Payment ID"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /payments/{id}/receipt [get]
func (h *PaymentHandler) Receipt(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payment, err := h.payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !isAdmin(claims) && !middleware.IsSelf(claims, payment.PayerEmail) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "receipt belongs to another payer"))
		return
	}
	file, err := h.exports.Receipt(payment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// EnrolledByStudent godoc
// @Summary List a student's payments
// @Tags Payments
// @Produce json
// @Param email query string true "Payer email"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /payments/enrolled/student [get]
func (h *PaymentHandler) EnrolledByStudent(c *gin.Context) {
	page, size := pageParams(c)
	payments, pagination, err := h.payments.ListByPayer(c.Request.Context(), c.Query("email"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// EnrolledByInstructor godoc
// @Summary List payments for an instructor's classes
// @Tags Payments
// @Produce json
// @Param email query string true "Instructor email"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /payments/enrolled/instructor [get]
func (h *PaymentHandler) EnrolledByInstructor(c *gin.Context) {
	page, size := pageParams(c)
	payments, pagination, err := h.payments.ListByInstructor(c.Request.Context(), c.Query("email"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}
