package email

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	to, subject, body string
}

func (r *recorder) Send(_ context.Context, to, subject, body string) error {
	r.to, r.subject, r.body = to, subject, body
	return nil
}

func TestSendOrderConfirmation(t *testing.T) {
	rec := &recorder{}
	order := &models.Order{
		ID:           7,
		Subtotal:     decimal.RequireFromString("40"),
		ShippingCost: decimal.RequireFromString("10"),
		Tax:          decimal.RequireFromString("4"),
		Total:        decimal.RequireFromString("54"),
		Items: []models.OrderItem{
			{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("20"), Product: &models.ProductSummary{Name: "Shirt"}},
		},
	}

	require.NoError(t, SendOrderConfirmation(context.Background(), rec, "buyer@example.com", order))
	assert.Equal(t, "buyer@example.com", rec.to)
	assert.Equal(t, "Order Confirmation #7", rec.subject)
	assert.Contains(t, rec.body, "2 x Shirt @ 20.00 = 40.00")
	assert.Contains(t, rec.body, "Total: 54.00")
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := LogSender{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	require.NoError(t, s.Send(context.Background(), "a@example.com", "Hi", "Body"))
	assert.Contains(t, buf.String(), `"to":"a@example.com"`)

	assert.Error(t, s.Send(context.Background(), " ", "Hi", "Body"))
}
