package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/spa-backend/pkg/metrics"
)

func intentEvent(t *testing.T, typ stripe.EventType, intent stripe.PaymentIntent) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(intent)
	require.NoError(t, err)
	return &stripe.Event{ID: "evt_1", Type: typ, Data: &stripe.EventData{Raw: raw}}
}

func TestHandleEventCountsSettledIntents(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc, err := NewService(metrics.New(reg), nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.HandleEvent(ctx, intentEvent(t, stripe.EventTypePaymentIntentSucceeded, stripe.PaymentIntent{
		ID:       "pi_1",
		Amount:   10300,
		Currency: stripe.CurrencyUSD,
		Status:   stripe.PaymentIntentStatusSucceeded,
	})))
	require.NoError(t, svc.HandleEvent(ctx, intentEvent(t, stripe.EventTypePaymentIntentPaymentFailed, stripe.PaymentIntent{
		ID:               "pi_2",
		LastPaymentError: &stripe.Error{Msg: "Your card was declined."},
	})))
	require.NoError(t, svc.HandleEvent(ctx, intentEvent(t, stripe.EventTypeCustomerCreated, stripe.PaymentIntent{})))

	count, err := testutil.GatherAndCount(reg, "spa_payment_intents_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestHandleEventRejectsMalformedPayload(t *testing.T) {
	svc, err := NewService(nil, nil)
	require.NoError(t, err)

	event := &stripe.Event{ID: "evt_bad", Type: stripe.EventTypePaymentIntentSucceeded, Data: &stripe.EventData{Raw: []byte("{")}}
	assert.Error(t, svc.HandleEvent(context.Background(), event))
	assert.Error(t, svc.HandleEvent(context.Background(), &stripe.Event{}))
}
