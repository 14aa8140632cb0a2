// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// ISODateLayout is the calendar date format exchanged with the commute backend.
const ISODateLayout = "2006-01-02"

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validator wraps the go-playground validator for structured validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with the shared rules registered.
func New() *Validator {
	v := validator.New()
	_ = RegisterOn(v)
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// Engine exposes the underlying validate instance, e.g. for gin's binding.
func (val *Validator) Engine() *validator.Validate {
	return val.v
}

// RegisterOn installs the shared rules on another validate instance.
// The router uses it for gin's binding engine so `binding:"isodate"` works.
func RegisterOn(v *validator.Validate) error {
	return v.RegisterValidation("isodate", validateISODate)
}

// IsISODate reports whether value is a YYYY-MM-DD calendar date.
func IsISODate(value string) bool {
	if !isoDatePattern.MatchString(value) {
		return false
	}
	_, err := time.Parse(ISODateLayout, value)
	return err == nil
}

func validateISODate(fl validator.FieldLevel) bool {
	return IsISODate(fl.Field().String())
}
