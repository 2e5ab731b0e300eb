package booking

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
)

var contactValidator = validator.New()

type fieldError struct {
	field   string
	message string
}

func (e fieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.message)
}

// normalizeContact trims every field, checks the required ones and rewrites
// the phone to E.164. All field failures are reported together.
func normalizeContact(in Contact) (Contact, error) {
	out := Contact{
		GivenName:  strings.TrimSpace(in.GivenName),
		FamilyName: strings.TrimSpace(in.FamilyName),
		Email:      strings.TrimSpace(in.Email),
		Note:       strings.TrimSpace(in.Note),
	}

	var errs error
	if out.GivenName == "" {
		errs = multierr.Append(errs, fieldError{"given_name", "is required"})
	}
	if out.FamilyName == "" {
		errs = multierr.Append(errs, fieldError{"family_name", "is required"})
	}
	switch {
	case out.Email == "":
		errs = multierr.Append(errs, fieldError{"email", "is required"})
	case contactValidator.Var(out.Email, "email") != nil:
		errs = multierr.Append(errs, fieldError{"email", "must be a valid email address"})
	}
	if strings.TrimSpace(in.Phone) == "" {
		errs = multierr.Append(errs, fieldError{"phone", "is required"})
	} else if phone, err := NormalizePhone(in.Phone); err != nil {
		errs = multierr.Append(errs, fieldError{"phone", err.Error()})
	} else {
		out.Phone = phone
	}

	if errs != nil {
		return Contact{}, validationError(errs)
	}
	return out, nil
}

func validationError(errs error) error {
	details := map[string]string{}
	for _, err := range multierr.Errors(errs) {
		if fe, ok := err.(fieldError); ok {
			details[fe.field] = fe.message
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid contact details").WithDetails(details)
}
