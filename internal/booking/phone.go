package booking

import (
	"errors"
	"strings"
)

var errPhoneInvalid = errors.New("phone must contain at least 10 digits")

// NormalizePhone converts free-form input to E.164. Ten digits are treated as
// a North American number and get "+1"; eleven or more get a bare "+".
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	switch n := digits.Len(); {
	case n == 10:
		return "+1" + digits.String(), nil
	case n >= 11:
		return "+" + digits.String(), nil
	default:
		return "", errPhoneInvalid
	}
}
