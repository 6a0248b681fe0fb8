// Package validation wraps go-playground/validator for form structs whose
// fields are checked in declaration order and reported one message at a time.
//
// Struct fields carry a `label` tag used in messages ("Full name is required.").
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/placementcell/recruit-portal/internal/core/domain"
)

var (
	phonePattern = regexp.MustCompile(`^\d{10}$`)
	emailPattern = regexp.MustCompile(`^[\w\.-]+@[\w\.-]+\.\w+$`)
)

// Validator is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the phone10, emailaddr and strongpw tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		if name := strings.SplitN(f.Tag.Get("query"), ",", 2)[0]; name != "" {
			return name
		}
		return strings.ToLower(f.Name)
	})
	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strongpw", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return &Validator{v: v}
}

// First validates s and returns a domain validation error carrying the
// message of the first failing field, or nil.
func (v *Validator) First(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return domain.Validation(fieldError(ve[0]))
	}
	return err
}

// Validate satisfies the echo.Validator interface.
func (v *Validator) Validate(i any) error {
	if err := v.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return domain.Validation(strings.Join(msgs, " "))
		}
		return err
	}
	return nil
}

// StrongPassword reports whether pw has at least 8 characters including an
// upper-case letter, a lower-case letter and a digit.
func StrongPassword(pw string) bool {
	if len([]rune(pw)) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required."
	case "phone10":
		return "Please enter a valid 10-digit phone number."
	case "emailaddr":
		return "Please enter a valid email address."
	case "eqfield":
		return "Passwords do not match."
	case "strongpw":
		return "Password must be at least 8 characters long, contain an uppercase letter, a lowercase letter, and a digit."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s.", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s.", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s).", field, fe.Tag())
	}
}
