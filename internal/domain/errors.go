// Package domain defines core types, interfaces, and errors for the
// job-postings analytics core.
package domain

import "fmt"

// ConfigurationError indicates the data contract is broken: a required
// logical field could not be resolved against the live schema. Nothing can
// be computed without a valid plan, so callers treat this as fatal for the
// session.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// ExecutionError indicates a query failed against the database. It carries
// the attempted SQL and bound parameters for diagnosis.
type ExecutionError struct {
	Message string
	SQL     string
	Params  []any
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ValidationError indicates invalid caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ErrConfiguration creates a ConfigurationError with a formatted message.
func ErrConfiguration(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// ErrExecution wraps a query failure with the attempted SQL and parameters.
func ErrExecution(err error, sqlText string, params []any) *ExecutionError {
	return &ExecutionError{Message: "query execution failed", SQL: sqlText, Params: params, Err: err}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}
