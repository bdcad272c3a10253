package dto

import "github.com/shopspring/decimal"

// CreateIntentRequest asks the processor for a charge authorization.
type CreateIntentRequest struct {
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency" validate:"omitempty,len=3"`
	ClassID        string          `json:"classId"`
	Email          string          `json:"email" validate:"omitempty,email"`
	IdempotencyKey string          `json:"idempotencyKey" validate:"max=255"`
}

// CreateIntentResponse carries the client secret used to confirm the charge client-side.
type CreateIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
	IntentID     string `json:"intentId"`
	AmountMinor  int64  `json:"amountMinor"`
	Currency     string `json:"currency"`
	Provider     string `json:"provider"`
}

// RecordPaymentRequest commits a completed payment. Class name and instructor are read from the class record.
type RecordPaymentRequest struct {
	ClassID       string          `json:"classId" validate:"required"`
	PayerEmail    string          `json:"payerEmail" validate:"required,email"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transactionId" validate:"required,max=255"`
}
