package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is an append-only ledger entry recording one enrollment.
type Payment struct {
	ID              string          `db:"id" json:"id"`
	ClassID         string          `db:"class_id" json:"classId"`
	ClassName       string          `db:"class_name" json:"className"`
	PayerEmail      string          `db:"payer_email" json:"payerEmail"`
	InstructorEmail string          `db:"instructor_email" json:"instructorEmail"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	TransactionID   string          `db:"transaction_id" json:"transactionId"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
}

// PaymentResult is returned by the recorder. Replayed is set when the transaction id was already recorded.
type PaymentResult struct {
	Payment  *Payment `json:"payment"`
	Class    *Class   `json:"class,omitempty"`
	Replayed bool     `json:"replayed"`
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	PayerEmail      string
	InstructorEmail string
	Page            int
	PageSize        int
}

// IntentStatus tracks whether an issued intent ended in a recorded payment.
type IntentStatus string

// Intent statuses.
const (
	IntentStatusPending   IntentStatus = "pending"
	IntentStatusSucceeded IntentStatus = "succeeded"
	IntentStatusStale     IntentStatus = "stale"
)

// PaymentIntent logs a processor intent so charges without enrollment can be reconciled.
type PaymentIntent struct {
	ID             string       `db:"id" json:"id"`
	Provider       string       `db:"provider" json:"provider"`
	ProviderRef    string       `db:"provider_ref" json:"providerRef"`
	IdempotencyKey string       `db:"idempotency_key" json:"idempotencyKey"`
	AmountMinor    int64        `db:"amount_minor" json:"amountMinor"`
	Currency       string       `db:"currency" json:"currency"`
	PayerEmail     string       `db:"payer_email" json:"payerEmail"`
	ClassID        string       `db:"class_id" json:"classId"`
	Status         IntentStatus `db:"status" json:"status"`
	CreatedAt      time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updatedAt"`
}
