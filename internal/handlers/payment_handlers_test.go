package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) webhook(signature string, ev payment.Event) *httptest.ResponseRecorder {
	ts.t.Helper()
	raw, err := json.Marshal(ev)
	require.NoError(ts.t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(string(raw)))
	req.Header.Set("Stripe-Signature", signature)
	return ts.send(req, "")
}

func TestCreatePaymentIntentChargesStoredTotal(t *testing.T) {
	ts := newTestServer(t)
	tee, hat := orderFixture(t, ts)
	_, token := ts.user("ada@shop.test", false)
	order := placeOrder(t, ts, token,
		map[string]any{"product_id": tee.ID, "quantity": 2},
		map[string]any{"product_id": hat.ID, "quantity": 1},
	)

	w := ts.do(http.MethodPost, "/api/payment/create-intent", token, map[string]any{"order_id": order.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Equal(t, "pi_test_1_secret", body["client_secret"])
	assert.EqualValues(t, 5948, body["amount"])

	require.Len(t, ts.pay.amounts, 1)
	assert.Equal(t, int64(5948), ts.pay.amounts[0])
	assert.Equal(t, itoa(order.ID), ts.pay.metadata[0]["order_id"])

	w = ts.do(http.MethodGet, "/api/orders/"+itoa(order.ID), token, nil)
	got := decode[models.Order](t, w)
	assert.Equal(t, "pi_test_1", got.PaymentDetails["payment_intent_id"])
}

func TestCreatePaymentIntentErrors(t *testing.T) {
	ts := newTestServer(t)
	tee, _ := orderFixture(t, ts)
	_, ada := ts.user("ada@shop.test", false)
	_, bob := ts.user("bob@shop.test", false)
	order := placeOrder(t, ts, ada, map[string]any{"product_id": tee.ID, "quantity": 1})

	w := ts.do(http.MethodPost, "/api/payment/create-intent", bob, map[string]any{"order_id": order.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	ts.pay.createErr = errors.New("stripe down")
	w = ts.do(http.MethodPost, "/api/payment/create-intent", ada, map[string]any{"order_id": order.ID})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "external_service_error", decode[errorResponse](t, w).Code)
}

func TestWebhookMarksOrderPaidOnce(t *testing.T) {
	ts := newTestServer(t)
	tee, _ := orderFixture(t, ts)
	_, token := ts.user("ada@shop.test", false)
	order := placeOrder(t, ts, token, map[string]any{"product_id": tee.ID, "quantity": 1})

	ev := payment.Event{
		ID: "evt_1", Type: payment.EventSucceeded, PaymentID: "pi_1",
		OrderID: order.ID, Succeeded: true, Handled: true,
	}
	w := ts.webhook("good", ev)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "processed", decode[map[string]string](t, w)["status"])

	w = ts.webhook("good", ev)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "already_processed", decode[map[string]string](t, w)["status"])

	w = ts.do(http.MethodGet, "/api/orders/"+itoa(order.ID), token, nil)
	got := decode[models.Order](t, w)
	assert.Equal(t, models.OrderPaid, got.Status)
	assert.Equal(t, "succeeded", got.PaymentDetails["payment_status"])

	w = ts.do(http.MethodPost, "/api/payment/create-intent", token, map[string]any{"order_id": order.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWebhookRejectsAndIgnores(t *testing.T) {
	ts := newTestServer(t)

	w := ts.webhook("forged", payment.Event{ID: "evt_x", Type: payment.EventSucceeded})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.webhook("good", payment.Event{ID: "evt_y", Type: "charge.refunded"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ignored", decode[map[string]string](t, w)["status"])

	w = ts.webhook("good", payment.Event{
		ID: "evt_z", Type: payment.EventFailed, PaymentID: "pi_9", OrderID: 4242, Handled: true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ignored", decode[map[string]string](t, w)["status"])
}

func TestWebhookWithoutSecretIsExternalError(t *testing.T) {
	ts := newTestServer(t)
	ts.pay.webhookErr = payment.ErrNotConfigured

	w := ts.webhook("good", payment.Event{ID: "evt_x", Type: payment.EventSucceeded})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "external_service_error", decode[errorResponse](t, w).Code)
}
