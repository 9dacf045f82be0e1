// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	return &Validator{
		v: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// IsEmail reports whether s is a syntactically valid email address.
func (val *Validator) IsEmail(s string) bool {
	return val.v.Var(s, "required,email") == nil
}

// FirstFailure returns the struct field and tag of the first failed rule in
// err, or empty strings when err is not a validation error.
func FirstFailure(err error) (field, tag string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", ""
	}
	return verrs[0].Field(), verrs[0].Tag()
}
