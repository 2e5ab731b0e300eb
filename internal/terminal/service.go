package terminal

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/spa-backend/pkg/config"
	"github.com/angelmondragon/spa-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/logger"
	"github.com/angelmondragon/spa-backend/pkg/metrics"
	"github.com/angelmondragon/spa-backend/pkg/stripe"
)

type paymentIntents interface {
	CreatePaymentIntent(ctx context.Context, params stripe.IntentCreateParams) (*stripe.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	CancelPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
}

// QuoteInput is what the front desk enters. At most one of PresetPercent and
// CustomPercent may be set.
type QuoteInput struct {
	Base          string
	PresetPercent *int
	CustomPercent *string
	IncludeFee    bool
}

// Quote is the rendered breakdown. Amounts are fixed to two decimals.
type Quote struct {
	Base            string             `json:"base"`
	BaseValid       bool               `json:"base_valid"`
	DiscountKind    enums.DiscountKind `json:"discount_kind"`
	DiscountPercent string             `json:"discount_percent"`
	Discount        string             `json:"discount"`
	AfterDiscount   string             `json:"after_discount"`
	FeePercent      string             `json:"fee_percent"`
	Fee             string             `json:"fee"`
	IncludeFee      bool               `json:"include_fee"`
	Charge          string             `json:"charge"`
	ChargeCents     int64              `json:"charge_cents"`
}

// Presets lists the discount buttons and the fee rate.
type Presets struct {
	Discounts  []int  `json:"discounts"`
	FeePercent string `json:"fee_percent"`
}

// Intent is a card-present payment opened for the reader.
type Intent struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret,omitempty"`
	Status          string `json:"status"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
	Quote           *Quote `json:"quote,omitempty"`
}

// Service runs the front-desk payment flow.
type Service interface {
	Presets() Presets
	Quote(input QuoteInput) (*Quote, error)
	CreateIntent(ctx context.Context, input QuoteInput) (*Intent, error)
	Status(ctx context.Context, id string) (*Intent, error)
	Cancel(ctx context.Context, id string) (*Intent, error)
}

type service struct {
	intents    paymentIntents
	presets    []int
	feePercent decimal.Decimal
	metrics    *metrics.Metrics
	logg       *logger.Logger
}

// NewService builds the terminal service from the business settings.
func NewService(intents paymentIntents, cfg config.BusinessConfig, m *metrics.Metrics, logg *logger.Logger) (Service, error) {
	if intents == nil {
		return nil, fmt.Errorf("payment intent client required")
	}
	fee := DefaultFeePercent
	if raw := strings.TrimSpace(cfg.FeePercent); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() {
			return nil, fmt.Errorf("invalid fee percent %q", cfg.FeePercent)
		}
		fee = parsed
	}
	presets := make([]int, 0, len(cfg.DiscountPresets))
	for _, p := range cfg.DiscountPresets {
		if p > 0 && p <= 100 && !slices.Contains(presets, p) {
			presets = append(presets, p)
		}
	}
	slices.Sort(presets)
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{intents: intents, presets: presets, feePercent: fee, metrics: m, logg: logg}, nil
}

func (s *service) Presets() Presets {
	out := make([]int, len(s.presets))
	copy(out, s.presets)
	return Presets{Discounts: out, FeePercent: s.feePercent.String()}
}

// Quote always renders; an invalid base shows as zero with BaseValid false.
func (s *service) Quote(input QuoteInput) (*Quote, error) {
	selection, err := s.selection(input)
	if err != nil {
		return nil, err
	}
	base, valid := SanitizeBase(input.Base)
	b := Calculate(base, selection.Percent(), input.IncludeFee, s.feePercent)
	return &Quote{
		Base:            b.Base.StringFixed(2),
		BaseValid:       valid,
		DiscountKind:    selection.Kind(),
		DiscountPercent: selection.Percent().String(),
		Discount:        b.Discount.StringFixed(2),
		AfterDiscount:   b.AfterDiscount.StringFixed(2),
		FeePercent:      s.feePercent.String(),
		Fee:             b.Fee.StringFixed(2),
		IncludeFee:      input.IncludeFee,
		Charge:          b.Charge.StringFixed(2),
		ChargeCents:     b.ChargeCents,
	}, nil
}

// CreateIntent refuses invalid or empty bases before contacting Stripe.
func (s *service) CreateIntent(ctx context.Context, input QuoteInput) (*Intent, error) {
	quote, err := s.Quote(input)
	if err != nil {
		return nil, err
	}
	if !quote.BaseValid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "enter a valid amount before charging")
	}
	if quote.ChargeCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be greater than zero")
	}

	pi, err := s.intents.CreatePaymentIntent(ctx, stripe.IntentCreateParams{
		AmountCents: quote.ChargeCents,
		Description: "Front desk payment",
		Metadata: map[string]string{
			"base":             quote.Base,
			"discount_kind":    quote.DiscountKind.String(),
			"discount_percent": quote.DiscountPercent,
			"include_fee":      fmt.Sprintf("%t", quote.IncludeFee),
		},
	})
	s.metrics.IncPaymentIntent("create", err)
	if err != nil {
		s.logg.Error(ctx, "terminal.create_intent_failed", err)
		return nil, intentError(err)
	}
	intent := intentFrom(pi)
	intent.Quote = quote
	return intent, nil
}

func (s *service) Status(ctx context.Context, id string) (*Intent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}
	pi, err := s.intents.GetPaymentIntent(ctx, id)
	s.metrics.IncPaymentIntent("status", err)
	if err != nil {
		return nil, intentError(err)
	}
	return intentFrom(pi), nil
}

// Cancel aborts an in-flight collection on the reader.
func (s *service) Cancel(ctx context.Context, id string) (*Intent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}
	pi, err := s.intents.CancelPaymentIntent(ctx, id)
	s.metrics.IncPaymentIntent("cancel", err)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "payment_intent_id", id), "terminal.cancel_intent_failed", err)
		return nil, intentError(err)
	}
	return intentFrom(pi), nil
}

func (s *service) selection(input QuoteInput) (DiscountSelection, error) {
	var sel DiscountSelection
	custom := ""
	if input.CustomPercent != nil {
		custom = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(*input.CustomPercent), "%"))
	}
	if input.PresetPercent != nil && custom != "" {
		return sel, pkgerrors.New(pkgerrors.CodeValidation, "choose either a preset or a custom discount, not both")
	}
	switch {
	case input.PresetPercent != nil:
		if !slices.Contains(s.presets, *input.PresetPercent) {
			return sel, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%d%% is not an available preset", *input.PresetPercent))
		}
		sel.SelectPreset(*input.PresetPercent)
	case custom != "":
		pct, err := decimal.NewFromString(custom)
		if err != nil || pct.IsNegative() || pct.GreaterThan(hundred) {
			return sel, pkgerrors.New(pkgerrors.CodeValidation, "custom discount must be a percentage between 0 and 100")
		}
		sel.SetCustom(pct)
	}
	return sel, nil
}

func intentFrom(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
		Status:          pi.Status,
		AmountCents:     pi.AmountCents,
		Currency:        pi.Currency,
	}
}

func intentError(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment service unavailable")
}
