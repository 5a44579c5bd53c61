// Package errors provides a lightweight structured error type (DuoError)
// for category-based classification across the build pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a duo error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig ErrorCategory = "config"
	CategoryType   ErrorCategory = "type"
	CategoryPlugin ErrorCategory = "plugin"
	CategoryAuth   ErrorCategory = "auth"

	// Build and processing errors
	CategoryBuild  ErrorCategory = "build"
	CategorySyntax ErrorCategory = "syntax"
	CategoryCache  ErrorCategory = "cache"

	// Runtime and infrastructure errors
	CategoryWatch    ErrorCategory = "watch"
	CategoryNotify   ErrorCategory = "notify"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// DuoError is a structured error with category, severity, and context
type DuoError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for DuoError
type ContextFields map[string]any

// Error implements the error interface
func (e *DuoError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *DuoError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *DuoError) WithContext(key string, value any) *DuoError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new DuoError
func New(category ErrorCategory, severity ErrorSeverity, message string) *DuoError {
	return &DuoError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new DuoError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *DuoError {
	return &DuoError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if de, ok := err.(*DuoError); ok {
		return de.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a DuoError
func GetCategory(err error) ErrorCategory {
	if de, ok := err.(*DuoError); ok {
		return de.Category
	}
	return CategoryInternal
}

// Convenience constructors for common patterns live in constructors.go.
