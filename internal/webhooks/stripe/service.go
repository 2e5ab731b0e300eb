package stripewebhook

import (
	"context"
	"encoding/json"

	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/logger"
	"github.com/angelmondragon/spa-backend/pkg/metrics"
	"github.com/stripe/stripe-go/v84"
)

type Service struct {
	metrics *metrics.Metrics
	logg    *logger.Logger
}

func NewService(m *metrics.Metrics, logg *logger.Logger) (*Service, error) {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{metrics: m, logg: logg}, nil
}

// HandleEvent records the final outcome of terminal payment intents.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	var op string
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		op = "webhook_succeeded"
	case stripe.EventTypePaymentIntentPaymentFailed:
		op = "webhook_failed"
	case stripe.EventTypePaymentIntentCanceled:
		op = "webhook_canceled"
	default:
		s.logg.Debug(s.logg.WithField(ctx, "stripe_event_type", string(event.Type)), "stripe.event.ignored")
		return nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment intent")
	}

	fields := map[string]any{
		"stripe_event_id":   event.ID,
		"stripe_event_type": string(event.Type),
		"payment_intent_id": intent.ID,
		"amount_cents":      intent.Amount,
		"currency":          string(intent.Currency),
		"status":            string(intent.Status),
	}
	if intent.LastPaymentError != nil {
		fields["decline_code"] = string(intent.LastPaymentError.DeclineCode)
		fields["failure_message"] = intent.LastPaymentError.Msg
	}
	ctx = s.logg.WithFields(ctx, fields)

	s.metrics.IncPaymentIntent(op, nil)
	s.logg.Info(ctx, "terminal.payment_intent.settled")
	return nil
}
