package lib

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"ticketeira/src/types"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewStripeGateway(NewStripeClientWithConfig("sk_test_123", stripe.String(server.URL), 5*time.Second))
}

func TestStripeGateway_CreateCheckoutSession(t *testing.T) {
	var form map[string]string
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	})

	session, err := gateway.CreateCheckoutSession(context.Background(), &types.CheckoutSessionRequest{
		Currency:          "brl",
		CustomerEmail:     "buyer@example.com",
		ClientReferenceID: "user-1",
		SuccessURL:        "https://app.example.com/ok",
		CancelURL:         "https://app.example.com/cancel",
		LineItems: []types.LineItem{
			{Name: "Show", Description: "Lote 1", UnitAmount: 5000, Quantity: 2},
			{Name: "Taxa de serviço", UnitAmount: 1000, Quantity: 1},
		},
		Metadata: map[string]string{"event_id": "ev-1", "platform_fee": "10.00"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)

	assert.Equal(t, "payment", form["mode"])
	assert.Equal(t, "buyer@example.com", form["customer_email"])
	assert.Equal(t, "5000", form["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, "2", form["line_items[0][quantity]"])
	assert.Equal(t, "brl", form["line_items[1][price_data][currency]"])
	assert.Equal(t, "ev-1", form["metadata[event_id]"])
	assert.Equal(t, "10.00", form["metadata[platform_fee]"])
}

func TestStripeGateway_RetrieveCheckoutSession(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cs_test_1",
			"object": "checkout.session",
			"payment_status": "paid",
			"customer": "cus_1",
			"customer_details": {"email": "buyer@example.com"},
			"payment_intent": "pi_1",
			"amount_total": 11300,
			"currency": "brl",
			"metadata": {"user_id": "u-1"}
		}`))
	})

	session, err := gateway.RetrieveCheckoutSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, "paid", session.PaymentStatus)
	assert.Equal(t, "cus_1", session.CustomerID)
	assert.Equal(t, "pi_1", session.PaymentIntentID)
	assert.Equal(t, "buyer@example.com", session.CustomerEmail)
	assert.Equal(t, int64(11300), session.AmountTotal)
	assert.Equal(t, "u-1", session.Metadata["user_id"])
}

func TestStripeGateway_ClassifiesErrors(t *testing.T) {
	status := http.StatusNotFound
	calls := 0
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such checkout.session"}}`))
	})

	_, err := gateway.RetrieveCheckoutSession(context.Background(), "cs_missing")
	assert.Equal(t, types.NotFound, types.KindOf(err))

	status = http.StatusInternalServerError
	_, err = gateway.RetrieveCheckoutSession(context.Background(), "cs_boom")
	assert.Equal(t, types.UpstreamFailure, types.KindOf(err))
	assert.Equal(t, 2, calls, "no retries")
}
