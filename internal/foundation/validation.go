package foundation

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/kiln/internal/foundation/errors"
)

// Validator checks one aspect of a value.
type Validator[T any] func(T) ValidationResult

// ValidationResult collects every failure found while validating a value.
type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

// FieldError is a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (fe FieldError) Error() string {
	if fe.Field != "" {
		return fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return fe.Message
}

// Valid creates a successful validation result.
func Valid() ValidationResult {
	return ValidationResult{Valid: true}
}

// Invalid creates a failed validation result.
func Invalid(errs ...FieldError) ValidationResult {
	return ValidationResult{Valid: false, Errors: errs}
}

// NewFieldError creates a field error.
func NewFieldError(field, code, message string) FieldError {
	return FieldError{Field: field, Code: code, Message: message}
}

// Combine merges two results.
func (vr ValidationResult) Combine(other ValidationResult) ValidationResult {
	if vr.Valid && other.Valid {
		return Valid()
	}
	all := make([]FieldError, 0, len(vr.Errors)+len(other.Errors))
	all = append(all, vr.Errors...)
	all = append(all, other.Errors...)
	return Invalid(all...)
}

// ToError converts an invalid result into a validation ClassifiedError whose
// message lists every failure.
func (vr ValidationResult) ToError(subject string) error {
	if vr.Valid {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	for _, err := range vr.Errors {
		messages = append(messages, err.Error())
	}
	msg := strings.Join(messages, "; ")
	if subject != "" {
		msg = subject + ": " + msg
	}
	return errors.ValidationError(msg).
		WithContext("failures", len(vr.Errors)).
		Build()
}

// ValidatorChain runs validators in order and accumulates their failures.
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a chain.
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add appends a validator.
func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

// Validate runs every validator.
func (vc *ValidatorChain[T]) Validate(value T) ValidationResult {
	result := Valid()
	for _, validator := range vc.validators {
		result = result.Combine(validator(value))
	}
	return result
}

// Check returns a failure for field when ok is false.
func Check(ok bool, field, code, message string) ValidationResult {
	if ok {
		return Valid()
	}
	return Invalid(NewFieldError(field, code, message))
}

// NotBlank fails when value is empty after trimming.
func NotBlank(field, value string) ValidationResult {
	return Check(strings.TrimSpace(value) != "", field, "required", "can not be null or empty")
}

// InRange fails when value lies outside [lo, hi].
func InRange(field string, value, lo, hi float64) ValidationResult {
	return Check(value >= lo && value <= hi, field, "range",
		fmt.Sprintf("must be between %g and %g (inclusive), got %g", lo, hi, value))
}

// OneOf fails when value is not in allowed.
func OneOf[T comparable](field string, value T, allowed ...T) ValidationResult {
	for _, a := range allowed {
		if a == value {
			return Valid()
		}
	}
	return Invalid(NewFieldError(field, "one_of", fmt.Sprintf("must be one of %v, got %v", allowed, value)))
}
