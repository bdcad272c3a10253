// Package payment adapts external payment processors to a single intent-issuing capability.
package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a price does not convert to a positive minor-unit amount.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// ErrFractionalAmount is returned by processors that only charge whole currency units.
var ErrFractionalAmount = errors.New("amount must be a whole currency unit")

var hundred = decimal.NewFromInt(100)

// IntentRequest describes a charge authorization to obtain from the processor.
type IntentRequest struct {
	AmountMinor    int64
	Currency       string
	IdempotencyKey string
	ReceiptEmail   string
	Description    string
	Metadata       map[string]string
}

// Intent is the processor-issued authorization handle handed back to the client.
type Intent struct {
	Provider     string
	Reference    string
	ClientSecret string
	AmountMinor  int64
	Currency     string
}

// Processor obtains charge authorizations from an external payment provider.
type Processor interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

// ProcessorError carries the provider's own message so callers can surface it unchanged.
type ProcessorError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProcessorError) Error() string {
	return e.Provider + ": " + e.Message
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}

// MinorUnits converts a decimal price into processor minor units (x100, truncated).
func MinorUnits(amount decimal.Decimal) (int64, error) {
	minor := amount.Mul(hundred).Truncate(0).IntPart()
	if minor <= 0 {
		return 0, ErrInvalidAmount
	}
	return minor, nil
}

// FromMinorUnits renders a minor-unit amount back into a decimal price.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

func normaliseCurrency(currency string) string {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return "usd"
	}
	return currency
}
