// Package errors provides the categorized error type used by the covidlens pipeline.
// Every error carries a category and code so the dashboard can tell a missing
// input file apart from a missing column or an unknown view.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by pipeline stage.
type ErrorCategory string

const (
	ErrCategoryLoad   ErrorCategory = "LOAD"
	ErrCategoryParse  ErrorCategory = "PARSE"
	ErrCategoryLookup ErrorCategory = "LOOKUP"
	ErrCategorySchema ErrorCategory = "SCHEMA"
	ErrCategoryView   ErrorCategory = "VIEW"
)

// Error codes for each category.
const (
	// Load codes
	CodeFileNotFound = "FILE_NOT_FOUND"
	CodeParseError   = "PARSE_ERROR"

	// Parse codes
	CodeNoValidDates = "NO_VALID_DATES"

	// Lookup codes
	CodeMissingPopulation = "MISSING_POPULATION"

	// Schema codes
	CodeMissingColumn  = "MISSING_COLUMN"
	CodeColumnConflict = "COLUMN_CONFLICT"
	CodeUnknownRegion  = "UNKNOWN_REGION"

	// View codes
	CodeUnknownView    = "UNKNOWN_VIEW"
	CodeEmptySelection = "EMPTY_SELECTION"
)

// PipelineError is the structured error type returned by the pipeline stages.
type PipelineError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error returns a formatted error string.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *PipelineError) Is(target error) bool {
	var t *PipelineError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new PipelineError.
func New(category ErrorCategory, code, message string) *PipelineError {
	return &PipelineError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new PipelineError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *PipelineError {
	return &PipelineError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *PipelineError) WithDetails(details map[string]interface{}) *PipelineError {
	cp := *e
	cp.Details = details
	return &cp
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a PipelineError.
func GetCategory(err error) ErrorCategory {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a PipelineError.
func GetCode(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// Convenience constructors for common errors.

func NewFileNotFound(path string, cause error) *PipelineError {
	return Wrap(ErrCategoryLoad, CodeFileNotFound, fmt.Sprintf("required file %s not found", path), cause).
		WithDetails(map[string]interface{}{"path": path})
}

func NewParseError(path string, cause error) *PipelineError {
	return Wrap(ErrCategoryLoad, CodeParseError, fmt.Sprintf("cannot parse %s", path), cause).
		WithDetails(map[string]interface{}{"path": path})
}

func NewMissingColumn(table string, column string, available []string) *PipelineError {
	return New(ErrCategorySchema, CodeMissingColumn, fmt.Sprintf("table %s has no column %q", table, column)).
		WithDetails(map[string]interface{}{"table": table, "column": column, "available": available})
}

func NewMissingPopulation(region string) *PipelineError {
	return New(ErrCategoryLookup, CodeMissingPopulation, fmt.Sprintf("no population entry for region %q", region)).
		WithDetails(map[string]interface{}{"region": region})
}

func NewViewError(code, message string) *PipelineError {
	return New(ErrCategoryView, code, message)
}
