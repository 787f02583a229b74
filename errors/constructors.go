package errors

import (
	"fmt"
	"strings"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *FetcherError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *FetcherError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// ConfigValidation creates a configuration validation error for a field
func ConfigValidation(field, reason string) *FetcherError {
	return New(ErrCodeConfigValidation,
		fmt.Sprintf("configuration validation failed: %s: %s", field, reason)).
		WithDetail("field", field)
}

// Transport creates a transport error for a socket operation
func Transport(op string, err error) *FetcherError {
	return Wrap(err, ErrCodeTransport, fmt.Sprintf("transport failure during %s", op)).
		WithDetail("operation", op)
}

// ConnectionRefused creates an error from the server's refusal reasons
func ConnectionRefused(reasons []string) *FetcherError {
	msg := "connection refused by server"
	if len(reasons) > 0 {
		msg = fmt.Sprintf("connection refused by server: %s", strings.Join(reasons, "; "))
	}
	return New(ErrCodeConnectionRefused, msg).WithDetail("reasons", reasons)
}

// InputShape creates an error for a malformed event payload field
func InputShape(cmd, field string) *FetcherError {
	return New(ErrCodeInputShape,
		fmt.Sprintf("unexpected shape for field '%s' in %s payload", field, cmd)).
		WithDetail("cmd", cmd).
		WithDetail("field", field)
}

// Persistence creates an error for a failed snapshot flush
func Persistence(path string, err error) *FetcherError {
	return Wrap(err, ErrCodePersistence, fmt.Sprintf("failed to persist state to %s", path)).
		WithDetail("path", path)
}

// StateNotFound creates an error for a missing state document
func StateNotFound(path string) *FetcherError {
	return New(ErrCodeStateNotFound, fmt.Sprintf("state file not found: %s", path)).
		WithDetail("path", path)
}

// StateInvalid creates an error for an unparsable state document
func StateInvalid(path string, err error) *FetcherError {
	return Wrap(err, ErrCodeStateInvalid, fmt.Sprintf("state file is not valid JSON: %s", path)).
		WithDetail("path", path)
}

// AlreadyRunning creates an error for a second fetcher instance
func AlreadyRunning(pid int) *FetcherError {
	return New(ErrCodeAlreadyRunning,
		fmt.Sprintf("fetcher is already running (pid %d)", pid)).
		WithDetail("pid", pid)
}

// NotRunning creates an error for lifecycle commands with no live fetcher
func NotRunning() *FetcherError {
	return New(ErrCodeNotRunning, "fetcher is not running")
}

// Internal creates an error for an unclassified runtime failure
func Internal(context string, err error) *FetcherError {
	return Wrap(err, ErrCodeInternal, fmt.Sprintf("internal error in %s", context)).
		WithDetail("context", context)
}
