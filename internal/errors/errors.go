// Package errors provides a lightweight structured error type (RaceboardError)
// for category-based classification and retry semantics in the CLI and daemon.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a raceboard error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External system integration errors
	CategoryNetwork ErrorCategory = "network"
	CategoryGrafana ErrorCategory = "grafana"

	// Build and processing errors
	CategoryPackaging  ErrorCategory = "packaging"
	CategoryAnalysis   ErrorCategory = "analysis"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryDaemon   ErrorCategory = "daemon"
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

// RaceboardError is a structured error with category, retryability, and context
type RaceboardError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for RaceboardError
type ContextFields map[string]any

// Error implements the error interface
func (e *RaceboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *RaceboardError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *RaceboardError) WithContext(key string, value any) *RaceboardError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new RaceboardError
func New(category ErrorCategory, severity ErrorSeverity, message string) *RaceboardError {
	return &RaceboardError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new RaceboardError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *RaceboardError {
	return &RaceboardError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// Retryable creates a new retryable RaceboardError
func Retryable(category ErrorCategory, severity ErrorSeverity, message string) *RaceboardError {
	return &RaceboardError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: true,
	}
}

// WrapRetryable creates a new retryable RaceboardError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *RaceboardError {
	return &RaceboardError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// IsRetryable reports whether err (or any wrapped cause) is a retryable RaceboardError.
func IsRetryable(err error) bool {
	for err != nil {
		if re, ok := err.(*RaceboardError); ok {
			return re.Retryable
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
