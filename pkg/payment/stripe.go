package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProcessor issues Stripe PaymentIntents.
type StripeProcessor struct {
	api *client.API
}

// NewStripeProcessor builds a processor bound to the given secret key. Nil backends use Stripe's defaults.
func NewStripeProcessor(secretKey string, backends *stripe.Backends) *StripeProcessor {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeProcessor{api: api}
}

// Name identifies the provider in logs and intent records.
func (p *StripeProcessor) Name() string { return "stripe" }

// CreateIntent creates a card PaymentIntent. The idempotency key lets Stripe return the original intent on retries.
func (p *StripeProcessor) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if req.AmountMinor <= 0 {
		return nil, ErrInvalidAmount
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountMinor),
		Currency:           stripe.String(normaliseCurrency(req.Currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
			return nil, &ProcessorError{Provider: p.Name(), Code: string(stripeErr.Code), Message: stripeErr.Msg, Err: err}
		}
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return &Intent{
		Provider:     p.Name(),
		Reference:    pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}
