package core

import (
	"errors"
	"fmt"
)

// ErrAggregateNotFound is returned when a command requires an existing
// aggregate but its stream holds no events.
var ErrAggregateNotFound = errors.New("aggregate not found")

// ValidationError reports malformed command input. It is surfaced to the
// caller immediately and never persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %q: %s", e.Field, e.Reason)
}

// BuildValidationError creates a ValidationError for the given field.
func BuildValidationError(field string, reason string) ValidationError {
	return ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

// BusinessRuleViolation reports that the aggregate's current state forbids the
// requested transition. No events are appended for a violated rule.
type BusinessRuleViolation struct {
	Rule string
}

func (e BusinessRuleViolation) Error() string {
	return "business rule violated: " + e.Rule
}

// BuildBusinessRuleViolation creates a BusinessRuleViolation for the given rule.
func BuildBusinessRuleViolation(rule string) BusinessRuleViolation {
	return BusinessRuleViolation{Rule: rule}
}

// IsBusinessRuleViolation reports whether err is a BusinessRuleViolation.
func IsBusinessRuleViolation(err error) bool {
	var target BusinessRuleViolation
	return errors.As(err, &target)
}
