package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DefaultCurrency applies when a record carries none.
const DefaultCurrency = "USD"

// StandardVariationName names the variation synthesized for flat services.
const StandardVariationName = "Standard"

// Variation is one bookable, priced option of a service.
type Variation struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price"`
	Currency   string `json:"currency"`
	DurationMs int64  `json:"duration"`
	Version    int64  `json:"version"`
}

// Service is the normalized catalog entry. It always has at least one variation.
type Service struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Category        string      `json:"category,omitempty"`
	Description     string      `json:"description,omitempty"`
	DisplayPrice    string      `json:"display_price"`
	DurationMinutes int         `json:"duration_minutes"`
	Variations      []Variation `json:"variations"`
}

// Kind tags which shape a raw record arrived in.
type Kind int

const (
	KindFlat Kind = iota
	KindWithVariations
)

func (k Kind) String() string {
	if k == KindWithVariations {
		return "with_variations"
	}
	return "flat"
}

// RawService is a catalog record as the source delivers it: either carrying
// explicit variations or flat price/duration fields.
type RawService struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category,omitempty"`
	Description string      `json:"description,omitempty"`
	Price       Scalar      `json:"price"`
	Duration    Scalar      `json:"duration"`
	Variations  []Variation `json:"variations,omitempty"`
}

// Kind reports the record's shape.
func (r RawService) Kind() Kind {
	if len(r.Variations) > 0 {
		return KindWithVariations
	}
	return KindFlat
}

// Scalar is a field that may arrive as a string or a number.
type Scalar struct {
	Text   string
	Number *float64
}

// Text builds a string-valued Scalar.
func Text(s string) Scalar {
	return Scalar{Text: s}
}

// Number builds a numeric Scalar.
func Number(f float64) Scalar {
	return Scalar{Number: &f}
}

// IsZero reports whether neither form is set.
func (s Scalar) IsZero() bool {
	return s.Number == nil && strings.TrimSpace(s.Text) == ""
}

func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*s = Scalar{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &s.Text)
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		// shape errors degrade to an empty value
		return nil
	}
	s.Number = &f
	return nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.Number != nil {
		return json.Marshal(*s.Number)
	}
	if s.Text == "" {
		return []byte("null"), nil
	}
	return json.Marshal(s.Text)
}
