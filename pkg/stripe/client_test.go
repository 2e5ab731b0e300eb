package stripe

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/spa-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/logger"
)

type stubIntents struct {
	created  *stripe.PaymentIntentCreateParams
	canceled string
	err      error
	intent   *stripe.PaymentIntent
}

func (s *stubIntents) Create(_ context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error) {
	s.created = params
	return s.intent, s.err
}

func (s *stubIntents) Retrieve(_ context.Context, id string, _ *stripe.PaymentIntentRetrieveParams) (*stripe.PaymentIntent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &stripe.PaymentIntent{ID: id, Status: stripe.PaymentIntentStatusProcessing}, nil
}

func (s *stubIntents) Cancel(_ context.Context, id string, _ *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error) {
	s.canceled = id
	if s.err != nil {
		return nil, s.err
	}
	return &stripe.PaymentIntent{ID: id, Status: stripe.PaymentIntentStatusCanceled}, nil
}

func TestNewClientValidatesKeys(t *testing.T) {
	ctx := context.Background()
	logg := logger.Nop()

	_, err := NewClient(ctx, config.StripeConfig{}, logg)
	require.ErrorIs(t, err, errAPIKeyRequired)

	_, err = NewClient(ctx, config.StripeConfig{APIKey: "sk_live_123", Env: "test"}, logg)
	require.Error(t, err)

	_, err = NewClient(ctx, config.StripeConfig{APIKey: "sk_test_123", Env: "sandbox"}, logg)
	require.ErrorIs(t, err, errInvalidStripeEnv)

	c, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_test_123", Env: "test", Currency: "USD"}, logg)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment())
	assert.Equal(t, "usd", c.Currency())
}

func TestCreatePaymentIntentCardPresent(t *testing.T) {
	stub := &stubIntents{intent: &stripe.PaymentIntent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret",
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
		Amount:       9270,
		Currency:     stripe.CurrencyUSD,
	}}
	c := &Client{intents: stub, currency: "usd", logger: logger.Nop()}

	pi, err := c.CreatePaymentIntent(context.Background(), IntentCreateParams{AmountCents: 9270})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", pi.ID)
	assert.Equal(t, "pi_123_secret", pi.ClientSecret)
	assert.Equal(t, int64(9270), pi.AmountCents)

	require.NotNil(t, stub.created)
	assert.Equal(t, int64(9270), *stub.created.Amount)
	assert.Equal(t, "usd", *stub.created.Currency)
	require.Len(t, stub.created.PaymentMethodTypes, 1)
	assert.Equal(t, "card_present", *stub.created.PaymentMethodTypes[0])
}

func TestCreatePaymentIntentRejectsZeroAmount(t *testing.T) {
	stub := &stubIntents{}
	c := &Client{intents: stub, currency: "usd"}

	_, err := c.CreatePaymentIntent(context.Background(), IntentCreateParams{AmountCents: 0})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Nil(t, stub.created)
}

func TestCancelPaymentIntent(t *testing.T) {
	stub := &stubIntents{}
	c := &Client{intents: stub, currency: "usd"}

	pi, err := c.CancelPaymentIntent(context.Background(), "pi_9")
	require.NoError(t, err)
	assert.Equal(t, "pi_9", stub.canceled)
	assert.Equal(t, "canceled", pi.Status)
}

func TestMapStripeError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode pkgerrors.Code
		wantMsg  string
	}{
		{"card declined surfaces stripe message", &stripe.Error{HTTPStatusCode: http.StatusPaymentRequired, Msg: "Your card was declined."}, pkgerrors.CodeCollaborator, "Your card was declined."},
		{"missing intent", &stripe.Error{HTTPStatusCode: http.StatusNotFound, Code: stripe.ErrorCodeResourceMissing}, pkgerrors.CodeNotFound, ""},
		{"bad key", &stripe.Error{HTTPStatusCode: http.StatusUnauthorized}, pkgerrors.CodeDependency, ""},
		{"stripe outage", &stripe.Error{HTTPStatusCode: http.StatusInternalServerError}, pkgerrors.CodeDependency, ""},
		{"network", errors.New("connection reset"), pkgerrors.CodeDependency, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			typed := pkgerrors.As(mapStripeError(tc.err, "create payment intent"))
			require.NotNil(t, typed)
			assert.Equal(t, tc.wantCode, typed.Code())
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, typed.Message())
			}
		})
	}
}
