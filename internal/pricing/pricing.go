package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const msPerMinute = 60_000

// Line is anything priced per unit with a quantity, such as a cart line item.
type Line interface {
	UnitPriceCents() int64
	UnitDurationMs() int64
	Qty() int
}

// Summary is the running total shown next to a cart.
type Summary struct {
	ItemCount            int    `json:"item_count"`
	SubtotalCents        int64  `json:"subtotal_cents"`
	FormattedTotal       string `json:"formatted_total"`
	TotalDurationMs      int64  `json:"total_duration_ms"`
	TotalDurationMinutes int    `json:"total_duration_minutes"`
	FormattedDuration    string `json:"formatted_duration"`
}

// Subtotal sums price × quantity in minor units.
func Subtotal[T Line](items []T) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitPriceCents() * int64(item.Qty())
	}
	return total
}

// TotalDurationMs sums duration × quantity.
func TotalDurationMs[T Line](items []T) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitDurationMs() * int64(item.Qty())
	}
	return total
}

// FormatCents renders minor units as dollars, e.g. 9900 -> "$99.00".
func FormatCents(cents int64) string {
	return "$" + decimal.New(cents, -2).StringFixed(2)
}

// FormatDuration renders minutes as "1h 30min", "1h" or "45min".
// Zero and negative inputs render as "0min".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	hours, mins := minutes/60, minutes%60
	switch {
	case hours > 0 && mins > 0:
		return fmt.Sprintf("%dh %dmin", hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dmin", mins)
	}
}

// MsToMinutes converts a millisecond duration to whole minutes, rounding half up.
func MsToMinutes(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + msPerMinute/2) / msPerMinute)
}

// Summarize derives every aggregate for the items.
func Summarize[T Line](items []T) Summary {
	count := 0
	for _, item := range items {
		count += item.Qty()
	}
	subtotal := Subtotal(items)
	durationMs := TotalDurationMs(items)
	minutes := MsToMinutes(durationMs)
	return Summary{
		ItemCount:            count,
		SubtotalCents:        subtotal,
		FormattedTotal:       FormatCents(subtotal),
		TotalDurationMs:      durationMs,
		TotalDurationMinutes: minutes,
		FormattedDuration:    FormatDuration(minutes),
	}
}
