// Package validator wraps go-playground/validator with the tags this API
// needs and turns field errors into domain.ErrValidation messages.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/storefinder/backend/internal/domain"
)

var (
	// cepPattern accepts "01310100" and "01310-100".
	cepPattern = regexp.MustCompile(`^\d{5}-?\d{3}$`)
	// ufPattern is a two-letter Brazilian state code.
	ufPattern = regexp.MustCompile(`^[A-Z]{2}$`)
)

// Validator validates structs and single values. Safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the "cep" and "uf" tags registered. Field
// names in messages come from json tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("cep", func(fl validator.FieldLevel) bool {
		return cepPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("uf", func(fl validator.FieldLevel) bool {
		return ufPattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct validates s by its `validate` tags.
// Failures are returned wrapping domain.ErrValidation.
func (val *Validator) Struct(s any) error {
	return translate(val.v.Struct(s), "")
}

// Var validates a single value against tag. name labels the value in the
// error message.
func (val *Validator) Var(name string, field any, tag string) error {
	return translate(val.v.Var(field, tag), name)
}

// PostalCode validates a CEP in either accepted format.
func (val *Validator) PostalCode(code string) error {
	if !cepPattern.MatchString(code) {
		return fmt.Errorf("%w: invalid postal code format: %q", domain.ErrValidation, code)
	}
	return nil
}

func translate(err error, name string) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		if field == "" {
			field = name
		}
		msgs = append(msgs, describe(field, fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "cep":
		return field + " must be a postal code like 01310-100"
	case "uf":
		return field + " must be a two-letter state code"
	case "email":
		return field + " must be a valid email address"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
