package payment

import (
	"context"
	"errors"
	"fmt"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransProcessor issues Midtrans Snap transactions; the Snap token plays the client secret role.
type MidtransProcessor struct {
	client snap.Client
}

// NewMidtransProcessor builds a Snap client for sandbox or production.
func NewMidtransProcessor(serverKey string, production bool) *MidtransProcessor {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var c snap.Client
	c.New(serverKey, env)
	return &MidtransProcessor{client: c}
}

// Name identifies the provider in logs and intent records.
func (p *MidtransProcessor) Name() string { return "midtrans" }

// CreateIntent opens a Snap transaction. Midtrans de-duplicates by order id, so the idempotency key is used as OrderID.
// Gross amounts are whole currency units, so amounts with a fractional part are rejected.
func (p *MidtransProcessor) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if req.IdempotencyKey == "" {
		return nil, errors.New("midtrans requires an order id")
	}
	if req.AmountMinor%100 != 0 {
		return nil, ErrFractionalAmount
	}
	gross := req.AmountMinor / 100
	if gross <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.IdempotencyKey,
			GrossAmt: gross,
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
	}
	if req.ReceiptEmail != "" {
		snapReq.CustomerDetail = &midtrans.CustomerDetails{Email: req.ReceiptEmail}
	}
	if req.Description != "" {
		snapReq.Items = &[]midtrans.ItemDetails{{
			ID:    req.IdempotencyKey,
			Name:  truncate(req.Description, 50),
			Price: gross,
			Qty:   1,
		}}
	}

	resp, mErr := p.client.CreateTransaction(snapReq)
	if mErr != nil {
		if mErr.Message != "" {
			return nil, &ProcessorError{Provider: p.Name(), Code: fmt.Sprint(mErr.StatusCode), Message: mErr.Message, Err: mErr}
		}
		return nil, fmt.Errorf("midtrans create transaction: %w", mErr)
	}
	return &Intent{
		Provider:     p.Name(),
		Reference:    req.IdempotencyKey,
		ClientSecret: resp.Token,
		AmountMinor:  gross * 100,
		Currency:     normaliseCurrency(req.Currency),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
