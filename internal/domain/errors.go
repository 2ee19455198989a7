package domain

import (
	"fmt"
	"strings"
)

// MissingColumnError reports required columns absent from an input table.
// The age rule's documented allowance for a fully-absent age column is the
// only place this is tolerated.
type MissingColumnError struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
}

// Error implements the error interface
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("table '%s' missing required columns: %s", e.Table, strings.Join(e.Columns, ", "))
}

// NewMissingColumnError creates a new MissingColumnError
func NewMissingColumnError(table string, columns ...string) *MissingColumnError {
	return &MissingColumnError{Table: table, Columns: columns}
}

// SchemaViolationError reports a column present but of the wrong semantic
// type (non-boolean flag, non-numeric score).
type SchemaViolationError struct {
	Table    string `json:"table"`
	Column   string `json:"column"`
	Expected string `json:"expected"`
	Got      string `json:"got"`
}

// Error implements the error interface
func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("table '%s' column '%s': expected %s, got %s", e.Table, e.Column, e.Expected, e.Got)
}

// NewSchemaViolationError creates a new SchemaViolationError
func NewSchemaViolationError(table, column, expected, got string) *SchemaViolationError {
	return &SchemaViolationError{Table: table, Column: column, Expected: expected, Got: got}
}

// ValidationError reports value-range violations: nulls where forbidden,
// non-finite scores, duplicate admission keys.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// UnsupportedCodeSystemError reports an unrecognized code-system string
// reaching the classifier.
type UnsupportedCodeSystemError struct {
	System string `json:"system"`
}

// Error implements the error interface
func (e *UnsupportedCodeSystemError) Error() string {
	return fmt.Sprintf("unsupported code system: %s", e.System)
}

// NewUnsupportedCodeSystemError creates a new UnsupportedCodeSystemError
func NewUnsupportedCodeSystemError(system string) *UnsupportedCodeSystemError {
	return &UnsupportedCodeSystemError{System: system}
}
