// Package payment bridges the order flow to the card payment provider.
package payment

import (
	"context"
	"errors"
)

// Event types the order flow reacts to.
const (
	EventSucceeded = "payment_intent.succeeded"
	EventFailed    = "payment_intent.payment_failed"
)

var (
	ErrNotConfigured    = errors.New("payment: provider is not configured")
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
)

// Config is injected at construction; nothing here is read from globals.
type Config struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

// Intent is the client-usable handle for one payment attempt.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Event is a verified webhook delivery. Handled is false for event types
// the order flow does not care about.
type Event struct {
	ID             string
	Type           string
	PaymentID      string
	OrderID        int64
	Succeeded      bool
	FailureMessage string
	Handled        bool
}

// Provider creates intents and verifies webhook deliveries.
type Provider interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
