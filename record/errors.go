package record

import (
	"fmt"
	"strings"
)

// ValidationError is a single recoverable validation failure attached to
// an attribute. Records accumulate these during a validation pass; the
// caller inspects them and decides whether to fix input and retry.
type ValidationError struct {
	Attribute string
	Message   string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Attribute, e.Message)
}

// Errors is an ordered collection of validation errors.
type Errors []ValidationError

// Add appends a validation error for the given attribute.
func (e *Errors) Add(attribute, message string) {
	*e = append(*e, ValidationError{Attribute: attribute, Message: message})
}

// On returns the messages recorded against the given attribute, in the
// order they were added.
func (e Errors) On(attribute string) []string {
	var msgs []string
	for _, ve := range e {
		if ve.Attribute == attribute {
			msgs = append(msgs, ve.Message)
		}
	}
	return msgs
}

// Any reports whether the collection contains at least one error.
func (e Errors) Any() bool {
	return len(e) > 0
}

// Error implements the error interface, joining all entries.
func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation passed"
	}
	parts := make([]string, 0, len(e))
	for _, ve := range e {
		parts = append(parts, ve.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
