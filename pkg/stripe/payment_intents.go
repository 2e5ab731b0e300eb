package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
)

const serviceName = "stripe"

// cardPresent is the only payment method a counter terminal collects.
const cardPresent = "card_present"

type intentAPI interface {
	Create(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
	Retrieve(ctx context.Context, id string, params *stripe.PaymentIntentRetrieveParams) (*stripe.PaymentIntent, error)
	Cancel(ctx context.Context, id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
}

// PaymentIntent is the terminal-facing view of a Stripe PaymentIntent.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountCents  int64
	Currency     string
}

// IntentCreateParams carries one card-present charge.
type IntentCreateParams struct {
	AmountCents int64
	Description string
	Metadata    map[string]string
}

func (p IntentCreateParams) toStripeParams(currency string) *stripe.PaymentIntentCreateParams {
	params := &stripe.PaymentIntentCreateParams{
		Amount:             stripe.Int64(p.AmountCents),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{cardPresent}),
		CaptureMethod:      stripe.String(string(stripe.PaymentIntentCaptureMethodAutomatic)),
	}
	if trimmed := strings.TrimSpace(p.Description); trimmed != "" {
		params.Description = stripe.String(trimmed)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

// CreatePaymentIntent opens a card-present PaymentIntent for the terminal reader.
func (c *Client) CreatePaymentIntent(ctx context.Context, params IntentCreateParams) (*PaymentIntent, error) {
	if params.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	c.log(ctx, "request", "create_payment_intent", map[string]any{"amount": params.AmountCents})

	pi, err := c.intents.Create(ctx, params.toStripeParams(c.currency))
	if err != nil {
		c.log(ctx, "error", "create_payment_intent", map[string]any{"error": err.Error()})
		return nil, mapStripeError(err, "create payment intent")
	}

	out := fromStripe(pi)
	c.log(ctx, "response", "create_payment_intent", map[string]any{
		"payment_intent_id": out.ID,
		"status":            out.Status,
	})
	return out, nil
}

// GetPaymentIntent fetches the current status of an intent.
func (c *Client) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	c.log(ctx, "request", "get_payment_intent", map[string]any{"payment_intent_id": id})

	pi, err := c.intents.Retrieve(ctx, id, &stripe.PaymentIntentRetrieveParams{})
	if err != nil {
		c.log(ctx, "error", "get_payment_intent", map[string]any{"error": err.Error()})
		return nil, mapStripeError(err, "get payment intent")
	}

	out := fromStripe(pi)
	c.log(ctx, "response", "get_payment_intent", map[string]any{
		"payment_intent_id": out.ID,
		"status":            out.Status,
	})
	return out, nil
}

// CancelPaymentIntent aborts an in-flight collection.
func (c *Client) CancelPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	c.log(ctx, "request", "cancel_payment_intent", map[string]any{"payment_intent_id": id})

	pi, err := c.intents.Cancel(ctx, id, &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonRequestedByCustomer)),
	})
	if err != nil {
		c.log(ctx, "error", "cancel_payment_intent", map[string]any{"error": err.Error()})
		return nil, mapStripeError(err, "cancel payment intent")
	}

	out := fromStripe(pi)
	c.log(ctx, "response", "cancel_payment_intent", map[string]any{
		"payment_intent_id": out.ID,
		"status":            out.Status,
	})
	return out, nil
}

func fromStripe(pi *stripe.PaymentIntent) *PaymentIntent {
	if pi == nil {
		return &PaymentIntent{}
	}
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
	}
}

func mapStripeError(err error, op string) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("stripe %s failed", op))
	}
	switch {
	case stripeErr.Code == stripe.ErrorCodeResourceMissing:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "payment intent not found")
	case stripeErr.HTTPStatusCode == http.StatusUnauthorized || stripeErr.HTTPStatusCode == http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("stripe %s failed: credentials rejected", op))
	case stripeErr.HTTPStatusCode >= http.StatusInternalServerError:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("stripe %s failed", op))
	}
	msg := strings.TrimSpace(stripeErr.Msg)
	if msg == "" {
		msg = fmt.Sprintf("stripe returned status %d", stripeErr.HTTPStatusCode)
	}
	return pkgerrors.Collaborator(serviceName, msg, err)
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
		"provider":  serviceName,
	}
	for k, v := range fields {
		if strings.Contains(k, "secret") {
			v = "[REDACTED]"
		}
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	if phase == "error" {
		c.logger.Error(ctx, fmt.Sprintf("stripe %s", op), errors.New(fmt.Sprint(fields["error"])))
		return
	}
	c.logger.Info(ctx, fmt.Sprintf("stripe %s", phase))
}
