package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidIdentifier reports whether s is usable as a model, schema, or database
// name: ASCII letters, digits, and underscores, not starting with a digit.
func ValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ValidateModel checks a Model for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the model is valid.
func ValidateModel(m *Model) error {
	var ve ValidationError

	// Name: required and identifier-safe (it becomes a relation name).
	if strings.TrimSpace(m.Name) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	} else if !ValidIdentifier(m.Name) {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "name",
			Message: fmt.Sprintf("invalid identifier %q", m.Name),
		})
	}

	// Materialized: must be a valid enum value (closed set).
	if !m.Config.Materialized.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "materialized",
			Message: fmt.Sprintf("invalid value %q", m.Config.Materialized),
		})
	}

	// Schema: optional, but identifier-safe when set.
	if m.Config.Schema != "" && !ValidIdentifier(m.Config.Schema) {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "schema",
			Message: fmt.Sprintf("invalid identifier %q", m.Config.Schema),
		})
	}

	// Database names: identifier-safe when set.
	for _, db := range []string{m.Config.Database.Fixed, m.Config.Database.IfMatch, m.Config.Database.Else} {
		if db != "" && !ValidIdentifier(db) {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   "database",
				Message: fmt.Sprintf("invalid identifier %q", db),
			})
		}
	}

	// Refs: no self-reference, identifier-safe.
	for _, ref := range m.Refs {
		if ref == m.Name {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   "refs",
				Message: fmt.Sprintf("model %q references itself", m.Name),
			})
		}
		if !ValidIdentifier(ref) {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   "refs",
				Message: fmt.Sprintf("invalid reference %q", ref),
			})
		}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
