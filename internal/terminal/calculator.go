package terminal

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/spa-backend/pkg/enums"
)

// DefaultFeePercent is the card processing fee added when the customer covers it.
var DefaultFeePercent = decimal.NewFromInt(3)

var hundred = decimal.NewFromInt(100)

// DiscountSelection holds at most one active discount: a preset or a custom
// percentage. Choosing one clears the other.
type DiscountSelection struct {
	preset int
	custom decimal.Decimal
	kind   enums.DiscountKind
}

// SelectPreset activates a preset percentage and clears any custom value.
func (d *DiscountSelection) SelectPreset(percent int) {
	d.preset = percent
	d.custom = decimal.Zero
	d.kind = enums.DiscountKindPreset
}

// SetCustom activates a custom percentage and clears any preset.
func (d *DiscountSelection) SetCustom(percent decimal.Decimal) {
	d.custom = percent
	d.preset = 0
	d.kind = enums.DiscountKindCustom
}

// Reset returns to no discount.
func (d *DiscountSelection) Reset() {
	*d = DiscountSelection{}
}

// Kind reports which input is active.
func (d DiscountSelection) Kind() enums.DiscountKind {
	if d.kind == "" {
		return enums.DiscountKindNone
	}
	return d.kind
}

// Percent is the active discount percentage, zero when none is chosen.
func (d DiscountSelection) Percent() decimal.Decimal {
	switch d.Kind() {
	case enums.DiscountKindPreset:
		return decimal.NewFromInt(int64(d.preset))
	case enums.DiscountKindCustom:
		return d.custom
	default:
		return decimal.Zero
	}
}

// Breakdown is every amount shown on the terminal screen, in major units.
type Breakdown struct {
	Base          decimal.Decimal
	Discount      decimal.Decimal
	AfterDiscount decimal.Decimal
	Fee           decimal.Decimal
	Charge        decimal.Decimal
	ChargeCents   int64
}

// Calculate applies the discount, then the processing fee on the discounted
// amount. Only the charge is rounded, to whole cents.
func Calculate(base, discountPercent decimal.Decimal, includeFee bool, feePercent decimal.Decimal) Breakdown {
	discount := base.Mul(discountPercent).Div(hundred)
	after := base.Sub(discount)
	fee := after.Mul(feePercent).Div(hundred)

	charge := after
	if includeFee {
		charge = after.Add(fee)
	}
	cents := charge.Mul(hundred).Round(0)
	return Breakdown{
		Base:          base,
		Discount:      discount,
		AfterDiscount: after,
		Fee:           fee,
		Charge:        cents.Div(hundred),
		ChargeCents:   cents.IntPart(),
	}
}

// SanitizeBase parses a base amount typed on the terminal. Negative or
// non-numeric input reads as zero and is reported invalid.
func SanitizeBase(raw string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil || value.IsNegative() {
		return decimal.Zero, false
	}
	return value, true
}
