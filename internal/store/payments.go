package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
)

// PaymentOutcome is a verified provider event reduced to what the order needs.
type PaymentOutcome struct {
	PaymentID      string
	EventType      string
	OrderID        int64
	Succeeded      bool
	FailureMessage string
}

// ApplyPaymentEvent records a provider event once per (payment id, event
// type). A success marks a pending or processing order paid; orders further
// along keep their status. A failure only annotates payment_details. applied
// is false when the event was already recorded.
func (s *Store) ApplyPaymentEvent(ctx context.Context, ev PaymentOutcome) (applied bool, err error) {
	if ev.PaymentID == "" || ev.EventType == "" {
		return false, apperr.New(apperr.Validation, "Payment event is missing its id or type")
	}

	err = s.withTx(ctx, serializable, func(tx *sql.Tx) error {
		seen, err := exists(ctx, tx,
			"SELECT 1 FROM payment_events WHERE payment_id = ? AND event_type = ?", ev.PaymentID, ev.EventType)
		if err != nil {
			return fmt.Errorf("check payment event: %w", err)
		}
		if seen {
			return nil
		}

		_, status, details, err := orderForPayment(ctx, tx, ev.OrderID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO payment_events (payment_id, event_type, order_id, created_at) VALUES (?, ?, ?, ?)",
			ev.PaymentID, ev.EventType, ev.OrderID, s.now()); err != nil {
			return fmt.Errorf("record payment event: %w", err)
		}

		patch := models.JSONMap{"payment_intent_id": ev.PaymentID}
		if ev.Succeeded {
			patch["payment_status"] = "succeeded"
			if status == models.OrderPending || status == models.OrderProcessing {
				status = models.OrderPaid
			}
			_, err = tx.ExecContext(ctx,
				"UPDATE orders SET status = ?, payment_details = ?, updated_at = ? WHERE id = ?",
				status, details.Merge(patch), s.now(), ev.OrderID)
		} else {
			patch["payment_status"] = "failed"
			patch["payment_error"] = ev.FailureMessage
			_, err = tx.ExecContext(ctx,
				"UPDATE orders SET payment_details = ?, updated_at = ? WHERE id = ?",
				details.Merge(patch), s.now(), ev.OrderID)
		}
		if err != nil {
			return fmt.Errorf("apply payment event: %w", err)
		}
		applied = true
		return nil
	})
	return applied, err
}

// PayableOrder returns an unpaid order owned by userID, for creating a
// payment intent against its stored total.
func (s *Store) PayableOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	o, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderPending {
		return nil, apperr.New(apperr.Conflict, "Order %d is already %s", orderID, o.Status)
	}
	return o, nil
}
