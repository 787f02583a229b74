package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Protocol and transport errors
	ErrCodeTransport         ErrorCode = "TRANSPORT"
	ErrCodeConnectionRefused ErrorCode = "CONNECTION_REFUSED"
	ErrCodeInputShape        ErrorCode = "INPUT_SHAPE"

	// Snapshot errors
	ErrCodePersistence   ErrorCode = "PERSISTENCE"
	ErrCodeStateNotFound ErrorCode = "STATE_NOT_FOUND"
	ErrCodeStateInvalid  ErrorCode = "STATE_INVALID"

	// Process lifecycle errors
	ErrCodeAlreadyRunning ErrorCode = "ALREADY_RUNNING"
	ErrCodeNotRunning     ErrorCode = "NOT_RUNNING"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// FetcherError represents a structured error with context
type FetcherError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *FetcherError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *FetcherError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *FetcherError) WithDetail(key string, value interface{}) *FetcherError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *FetcherError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new FetcherError
func New(code ErrorCode, message string) *FetcherError {
	return &FetcherError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a FetcherError
func Wrap(err error, code ErrorCode, message string) *FetcherError {
	return &FetcherError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific FetcherError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	fetchErr, ok := err.(*FetcherError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return fetchErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	fetchErr, ok := err.(*FetcherError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return fetchErr.Code
}
