package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// ReceiptLine is a label/value pair printed on a receipt.
type ReceiptLine struct {
	Label string
	Value string
}

// Receipt is the printable summary of a single enrollment payment.
type Receipt struct {
	Title  string
	Number string
	Lines  []ReceiptLine
	Total  string
	Footer string
}

// ReceiptRenderer renders payment receipts as PDF documents.
type ReceiptRenderer struct{}

// NewReceiptRenderer constructs a ReceiptRenderer.
func NewReceiptRenderer() *ReceiptRenderer {
	return &ReceiptRenderer{}
}

// Render lays out the receipt on a single A5 page.
func (r *ReceiptRenderer) Render(receipt Receipt) ([]byte, error) {
	if receipt.Number == "" {
		return nil, fmt.Errorf("receipt number is required")
	}
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 15, 12)
	pdf.AddPage()

	title := receipt.Title
	if title == "" {
		title = "Payment Receipt"
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, "Receipt #"+receipt.Number, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	for _, line := range receipt.Lines {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(45, 7, line.Label, "B", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 7, line.Value, "B", 1, "", false, 0, "")
	}

	if receipt.Total != "" {
		pdf.Ln(3)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(45, 9, "Total", "", 0, "", false, 0, "")
		pdf.CellFormat(0, 9, receipt.Total, "", 1, "R", false, 0, "")
	}
	if receipt.Footer != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 8)
		pdf.MultiCell(0, 4, receipt.Footer, "", "C", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
