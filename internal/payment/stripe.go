package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeProvider talks to Stripe through its own client instance.
type StripeProvider struct {
	cfg Config
	sc  *client.API
}

func NewStripeProvider(cfg Config, backends *stripe.Backends) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyUSD)
	}
	sc := &client.API{}
	sc.Init(cfg.SecretKey, backends)
	return &StripeProvider{cfg: cfg, sc: sc}, nil
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error) {
	if currency == "" {
		currency = p.cfg.Currency
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// ParseWebhook verifies the Stripe-Signature header against the webhook
// secret before decoding anything.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if p.cfg.WebhookSecret == "" {
		return nil, ErrNotConfigured
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signature, p.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return decodeEvent(ev)
}

func decodeEvent(ev stripe.Event) (*Event, error) {
	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if out.Type != EventSucceeded && out.Type != EventFailed {
		return out, nil
	}
	if ev.Data == nil {
		return nil, fmt.Errorf("stripe: event %s has no data", ev.ID)
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("stripe: decode payment intent: %w", err)
	}
	orderID, err := strconv.ParseInt(pi.Metadata["order_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("stripe: payment intent %s has no order_id", pi.ID)
	}

	out.PaymentID = pi.ID
	out.OrderID = orderID
	out.Handled = true
	out.Succeeded = out.Type == EventSucceeded
	if pi.LastPaymentError != nil {
		out.FailureMessage = pi.LastPaymentError.Msg
	}
	return out, nil
}
