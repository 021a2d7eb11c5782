package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/payment"
	"github.com/01moynul/storefront-golang/internal/pricing"
	"github.com/01moynul/storefront-golang/internal/store"
	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type PaymentIntentInput struct {
	OrderID int64 `json:"order_id" binding:"required,gt=0"`
}

// CreatePaymentIntent handles POST /api/payment/create-intent
// The amount is always the stored order total, never a client value.
func (h *Handlers) CreatePaymentIntent(c *gin.Context) {
	var input PaymentIntentInput
	if !h.bindJSON(c, &input) {
		return
	}
	if h.Payments == nil {
		h.respondError(c, apperr.Wrap(apperr.External, payment.ErrNotConfigured, "Payment provider is not configured"))
		return
	}

	ctx := c.Request.Context()
	order, err := h.Store.PayableOrder(ctx, currentUser(c), input.OrderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	intent, err := h.Payments.CreateIntent(ctx, pricing.MinorUnits(order.Total), h.Currency,
		map[string]string{"order_id": strconv.FormatInt(order.ID, 10)})
	if err != nil {
		h.respondError(c, apperr.Wrap(apperr.External, err, "Payment provider request failed"))
		return
	}
	if err := h.Store.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client_secret":     intent.ClientSecret,
		"payment_intent_id": intent.ID,
		"amount":            intent.Amount,
		"currency":          intent.Currency,
	})
}

// PaymentWebhook handles POST /api/payment/webhook
// Valid deliveries always get a 2xx so the provider stops retrying; only a
// bad signature is rejected.
func (h *Handlers) PaymentWebhook(c *gin.Context) {
	if h.Payments == nil {
		h.respondError(c, apperr.Wrap(apperr.External, payment.ErrNotConfigured, "Payment provider is not configured"))
		return
	}

	// 1. --- Verify ---
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.respondError(c, apperr.New(apperr.Validation, "Unreadable webhook body"))
		return
	}
	ev, err := h.Payments.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, payment.ErrNotConfigured) {
		h.respondError(c, apperr.Wrap(apperr.External, err, "Payment webhooks are not configured"))
		return
	}
	if errors.Is(err, payment.ErrInvalidSignature) {
		h.respondError(c, apperr.New(apperr.Validation, "Invalid signature"))
		return
	}
	if err != nil {
		h.respondError(c, apperr.Wrap(apperr.Validation, err, "Invalid webhook payload"))
		return
	}
	ctx := c.Request.Context()
	log := h.Logger.With(slog.String("event_id", ev.ID), slog.String("event_type", ev.Type))

	if !ev.Handled {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	// 2. --- Apply Once ---
	applied, err := h.Store.ApplyPaymentEvent(ctx, store.PaymentOutcome{
		PaymentID:      ev.PaymentID,
		EventType:      ev.Type,
		OrderID:        ev.OrderID,
		Succeeded:      ev.Succeeded,
		FailureMessage: ev.FailureMessage,
	})
	if apperr.Is(err, apperr.NotFound) {
		log.WarnContext(ctx, "payment event for unknown order", slog.Int64("order_id", ev.OrderID))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := "processed"
	if !applied {
		status = "already_processed"
	}
	log.InfoContext(ctx, "payment event", slog.Int64("order_id", ev.OrderID), slog.String("status", status))
	c.JSON(http.StatusOK, gin.H{"status": status})
}
