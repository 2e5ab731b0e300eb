package terminal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spa-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/stripe"
)

type stubIntents struct {
	created  []stripe.IntentCreateParams
	canceled []string
	err      error
}

func (s *stubIntents) CreatePaymentIntent(_ context.Context, params stripe.IntentCreateParams) (*stripe.PaymentIntent, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, params)
	return &stripe.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret", Status: "requires_payment_method", AmountCents: params.AmountCents, Currency: "usd"}, nil
}

func (s *stubIntents) GetPaymentIntent(_ context.Context, id string) (*stripe.PaymentIntent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &stripe.PaymentIntent{ID: id, Status: "succeeded", AmountCents: 9270, Currency: "usd"}, nil
}

func (s *stubIntents) CancelPaymentIntent(_ context.Context, id string) (*stripe.PaymentIntent, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.canceled = append(s.canceled, id)
	return &stripe.PaymentIntent{ID: id, Status: "canceled", Currency: "usd"}, nil
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func newTestService(t *testing.T, intents *stubIntents) Service {
	t.Helper()
	svc, err := NewService(intents, config.BusinessConfig{FeePercent: "3", DiscountPresets: []int{20, 5, 10, 15, 10}}, nil, nil)
	require.NoError(t, err)
	return svc
}

func TestPresetsAreSortedAndUnique(t *testing.T) {
	t.Parallel()
	p := newTestService(t, &stubIntents{}).Presets()
	assert.Equal(t, []int{5, 10, 15, 20}, p.Discounts)
	assert.Equal(t, "3", p.FeePercent)
}

func TestQuote(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, &stubIntents{})

	q, err := svc.Quote(QuoteInput{Base: "100", PresetPercent: intPtr(10), IncludeFee: true})
	require.NoError(t, err)
	assert.Equal(t, "10.00", q.Discount)
	assert.Equal(t, "90.00", q.AfterDiscount)
	assert.Equal(t, "2.70", q.Fee)
	assert.Equal(t, int64(9270), q.ChargeCents)
	assert.Equal(t, "preset", q.DiscountKind.String())

	q, err = svc.Quote(QuoteInput{Base: "-20", CustomPercent: strPtr("12%")})
	require.NoError(t, err)
	assert.False(t, q.BaseValid)
	assert.Equal(t, "0.00", q.Base)
	assert.Equal(t, "custom", q.DiscountKind.String())
	assert.Equal(t, "12", q.DiscountPercent)
}

func TestQuoteRejectsBadDiscounts(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, &stubIntents{})

	inputs := []QuoteInput{
		{Base: "100", PresetPercent: intPtr(10), CustomPercent: strPtr("5")},
		{Base: "100", PresetPercent: intPtr(12)},
		{Base: "100", CustomPercent: strPtr("150")},
		{Base: "100", CustomPercent: strPtr("ten")},
	}
	for _, input := range inputs {
		_, err := svc.Quote(input)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "%+v", input)
	}

	q, err := svc.Quote(QuoteInput{Base: "100", CustomPercent: strPtr("  ")})
	require.NoError(t, err)
	assert.Equal(t, "none", q.DiscountKind.String())
}

func TestCreateIntent(t *testing.T) {
	t.Parallel()
	intents := &stubIntents{}
	svc := newTestService(t, intents)

	intent, err := svc.CreateIntent(context.Background(), QuoteInput{Base: "100", PresetPercent: intPtr(10), IncludeFee: true})
	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.PaymentIntentID)
	assert.Equal(t, "pi_1_secret", intent.ClientSecret)
	assert.Equal(t, int64(9270), intent.AmountCents)
	require.NotNil(t, intent.Quote)
	require.Len(t, intents.created, 1)
	assert.Equal(t, "10", intents.created[0].Metadata["discount_percent"])
}

func TestCreateIntentBlocksInvalidBase(t *testing.T) {
	t.Parallel()
	intents := &stubIntents{}
	svc := newTestService(t, intents)

	for _, base := range []string{"-1", "abc", "0"} {
		_, err := svc.CreateIntent(context.Background(), QuoteInput{Base: base})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), base)
	}
	assert.Empty(t, intents.created)
}

func TestIntentErrorsAreTyped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestService(t, &stubIntents{err: errors.New("connection reset")})
	_, err := svc.CreateIntent(ctx, QuoteInput{Base: "50"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	svc = newTestService(t, &stubIntents{err: pkgerrors.Collaborator("stripe", "Your card was declined.", nil)})
	_, err = svc.Status(ctx, "pi_1")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeCollaborator, typed.Code())
	assert.Equal(t, "Your card was declined.", typed.Message())
}

func TestStatusAndCancel(t *testing.T) {
	t.Parallel()
	intents := &stubIntents{}
	svc := newTestService(t, intents)
	ctx := context.Background()

	intent, err := svc.Status(ctx, "pi_9")
	require.NoError(t, err)
	assert.Equal(t, "succeeded", intent.Status)

	intent, err = svc.Cancel(ctx, " pi_9 ")
	require.NoError(t, err)
	assert.Equal(t, "canceled", intent.Status)
	assert.Equal(t, []string{"pi_9"}, intents.canceled)

	_, err = svc.Cancel(ctx, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
