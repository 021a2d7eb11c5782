// Package email dispatches customer notifications.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/01moynul/storefront-golang/internal/models"
)

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender is the placeholder transport: it writes each message to the
// logger instead of talking to a mail provider.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("email: empty recipient")
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "email sent (placeholder)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}

// SendOrderConfirmation renders and sends the confirmation for a new order.
func SendOrderConfirmation(ctx context.Context, s Sender, to string, o *models.Order) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order #%d.\n\n", o.ID)
	for _, it := range o.Items {
		name := fmt.Sprintf("Product %d", it.ProductID)
		if it.Product != nil {
			name = it.Product.Name
		}
		fmt.Fprintf(&b, "%d x %s @ %s = %s\n", it.Quantity, name, it.Price.StringFixed(2), it.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\nShipping: %s\nTax: %s\nTotal: %s\n",
		o.Subtotal.StringFixed(2), o.ShippingCost.StringFixed(2), o.Tax.StringFixed(2), o.Total.StringFixed(2))

	return s.Send(ctx, to, fmt.Sprintf("Order Confirmation #%d", o.ID), b.String())
}
