package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "is required",
		}
	}
	return nil
}

// ValidatePositive checks that a duration is greater than zero
func ValidatePositive(field string, value time.Duration) error {
	if value <= 0 {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "must be a positive duration",
		}
	}
	return nil
}

// Validate reports every invalid setting.
func (s Settings) Validate() error {
	var errs ValidationErrors

	if err := ValidateRequired("tool", s.Tool); err != nil {
		errs = append(errs, err.(ValidationError))
	}
	if tool := strings.TrimSpace(s.Tool); tool != "" && strings.ContainsAny(tool, " \t") && !strings.ContainsAny(tool, `/\`) {
		errs.Add("tool", "must be a single executable name or path", s.Tool)
	}

	durations := []struct {
		field string
		value time.Duration
	}{
		{"fetchTimeout", s.FetchTimeout},
		{"generationTimeout", s.GenerationTimeout},
		{"promptTimeout", s.PromptTimeout},
	}
	for _, d := range durations {
		if err := ValidatePositive(d.field, d.value); err != nil {
			errs = append(errs, err.(ValidationError))
		}
	}
	if s.SuppressionWindow < 0 {
		errs.Add("suppressionWindow", "must not be negative", s.SuppressionWindow)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
