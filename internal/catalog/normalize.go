package catalog

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/angelmondragon/spa-backend/internal/pricing"
)

const msPerMinute = 60_000

// Normalize converts a raw record into a Service with at least one variation.
// Malformed price or duration values degrade to 0.
func Normalize(raw RawService) Service {
	svc := Service{
		ID:          strings.TrimSpace(raw.ID),
		Name:        strings.TrimSpace(raw.Name),
		Category:    strings.TrimSpace(raw.Category),
		Description: strings.TrimSpace(raw.Description),
	}

	switch raw.Kind() {
	case KindWithVariations:
		svc.Variations = make([]Variation, 0, len(raw.Variations))
		for _, v := range raw.Variations {
			if strings.TrimSpace(v.Currency) == "" {
				v.Currency = DefaultCurrency
			}
			svc.Variations = append(svc.Variations, v)
		}
	default:
		svc.Variations = []Variation{synthesize(svc.ID, raw.Price, raw.Duration)}
	}

	first := svc.Variations[0]
	svc.DurationMinutes = pricing.MsToMinutes(first.DurationMs)
	svc.DisplayPrice = strings.TrimSpace(raw.Price.Text)
	if svc.DisplayPrice == "" {
		svc.DisplayPrice = pricing.FormatCents(first.PriceCents)
	}
	return svc
}

// NormalizeAll normalizes every record, keeping order.
func NormalizeAll(raws []RawService) []Service {
	out := make([]Service, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out
}

func synthesize(id string, price, duration Scalar) Variation {
	return Variation{
		ID:         id,
		Name:       StandardVariationName,
		PriceCents: ParsePriceCents(price),
		Currency:   DefaultCurrency,
		DurationMs: int64(ParseDurationMinutes(duration)) * msPerMinute,
		Version:    1,
	}
}

// ParsePriceCents reads a major-unit price. Strings keep only digits and '.'
// before parsing, so "$99.00" gives 9900. Unparsable input gives 0.
func ParsePriceCents(v Scalar) int64 {
	var amount float64
	if v.Number != nil {
		amount = *v.Number
	} else {
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) || r == '.' {
				return r
			}
			return -1
		}, v.Text)
		// "9.99.1" reads as 9.99
		if first := strings.IndexByte(cleaned, '.'); first >= 0 {
			if second := strings.IndexByte(cleaned[first+1:], '.'); second >= 0 {
				cleaned = cleaned[:first+1+second]
			}
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		amount = parsed
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0
	}
	return int64(math.Round(amount * 100))
}

// ParseDurationMinutes reads whole minutes from a number or from the leading
// integer of a string ("60", "60 min"). Unparsable input gives 0.
func ParseDurationMinutes(v Scalar) int {
	if v.Number != nil {
		n := *v.Number
		if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
			return 0
		}
		return int(n)
	}
	text := strings.TrimSpace(v.Text)
	end := 0
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(text[:end])
	if err != nil {
		return 0
	}
	return n
}
