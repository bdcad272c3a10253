package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/athletenexus-api/internal/models"
	"github.com/noah-isme/athletenexus-api/pkg/export"
)

type paymentExportSource interface {
	Export(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type receiptRenderer interface {
	Render(receipt export.Receipt) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders payment ledgers and receipts.
type ExportService struct {
	payments paymentExportSource
	csv      csvRenderer
	receipts receiptRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(payments paymentExportSource, csv csvRenderer, receipts receiptRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if receipts == nil {
		receipts = export.NewReceiptRenderer()
	}
	return &ExportService{payments: payments, csv: csv, receipts: receipts, logger: logger, now: time.Now}
}

var paymentHeaders = []string{"payment_id", "created_at", "class_id", "class_name", "payer_email", "instructor_email", "amount", "transaction_id"}

// PaymentsCSV renders the payment ledger matching filter.
func (s *ExportService) PaymentsCSV(ctx context.Context, filter models.PaymentFilter) (*ExportFile, error) {
	payments, err := s.payments.Export(ctx, filter)
	if err != nil {
		return nil, err
	}
	dataset := export.Dataset{Headers: paymentHeaders}
	for _, p := range payments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"payment_id":       p.ID,
			"created_at":       p.CreatedAt.UTC().Format(time.RFC3339),
			"class_id":         p.ClassID,
			"class_name":       p.ClassName,
			"payer_email":      p.PayerEmail,
			"instructor_email": p.InstructorEmail,
			"amount":           p.Amount.StringFixed(2),
			"transaction_id":   p.TransactionID,
		})
	}
	body, err := s.csv.Render(dataset)
	if err != nil {
		return nil, fmt.Errorf("render payments csv: %w", err)
	}
	s.logger.Info("payments exported", zap.Int("rows", len(payments)))
	return &ExportFile{
		Filename:    fmt.Sprintf("payments_%s.csv", s.now().UTC().Format("20060102_150405")),
		ContentType: "text/csv",
		Body:        body,
	}, nil
}

// Receipt renders a PDF receipt for one payment.
func (s *ExportService) Receipt(payment *models.Payment) (*ExportFile, error) {
	if payment == nil {
		return nil, fmt.Errorf("payment nil")
	}
	body, err := s.receipts.Render(export.Receipt{
		Title:  "AthleteNexus Payment Receipt",
		Number: payment.ID,
		Lines: []export.ReceiptLine{
			{Label: "Date", Value: payment.CreatedAt.UTC().Format("02 Jan 2006 15:04 MST")},
			{Label: "Class", Value: payment.ClassName},
			{Label: "Student", Value: payment.PayerEmail},
			{Label: "Instructor", Value: payment.InstructorEmail},
			{Label: "Transaction", Value: payment.TransactionID},
		},
		Total:  payment.Amount.StringFixed(2),
		Footer: "Thank you for training with us.",
	})
	if err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return &ExportFile{
		Filename:    "receipt_" + sanitizeFilename(payment.ID) + ".pdf",
		ContentType: "application/pdf",
		Body:        body,
	}, nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
