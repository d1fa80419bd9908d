package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Engine error codes
const (
	ErrConfig ErrorCode = iota + 1000
	ErrAdapter
	ErrProtocol
	ErrContractViolation
	ErrNotFound
)

// AppError represents an engine error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`

	// Adapter failures carry transport detail for logs and retry decisions.
	StatusCode    int    `json:"status_code,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Retryable     bool   `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors
func Config(message string, err error) *AppError {
	return &AppError{
		Code:    ErrConfig,
		Message: message,
		Err:     err,
	}
}

func Adapter(message string, err error) *AppError {
	return &AppError{
		Code:      ErrAdapter,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

// AdapterHTTP records a non-2xx adapter response together with the
// correlation id the upstream surfaced.
func AdapterHTTP(message string, statusCode int, correlationID string) *AppError {
	return &AppError{
		Code:          ErrAdapter,
		Message:       fmt.Sprintf("%s (status %d, correlation %s)", message, statusCode, correlationID),
		StatusCode:    statusCode,
		CorrelationID: correlationID,
		Retryable:     statusCode >= 500 || statusCode == 429,
	}
}

func Protocol(protocolKey string, err error) *AppError {
	return &AppError{
		Code:    ErrProtocol,
		Message: fmt.Sprintf("protocol %s failed", protocolKey),
		Err:     err,
	}
}

func ContractViolation(message string) *AppError {
	return &AppError{
		Code:    ErrContractViolation,
		Message: message,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

// CodeOf extracts the engine error code from an error chain; ok is false
// when no AppError is present.
func CodeOf(err error) (ErrorCode, bool) {
	var app *AppError
	if errors.As(err, &app) {
		return app.Code, true
	}
	return 0, false
}

// IsRetryable reports whether the error is an adapter error worth retrying.
func IsRetryable(err error) bool {
	var app *AppError
	return errors.As(err, &app) && app.Retryable
}
