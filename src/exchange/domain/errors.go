package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes that carry no provider payload.
var (
	// ErrProviderUnavailable marks network/timeout failures talking to the
	// provider. Safe to retry from the caller side.
	ErrProviderUnavailable = errors.New("exchange provider unavailable")
	// ErrProviderContractViolation marks a success-status provider response
	// that is missing required fields. Never papered over.
	ErrProviderContractViolation = errors.New("exchange provider contract violation")
	// ErrNotFound marks an unknown local id or provider transaction id.
	ErrNotFound = errors.New("exchange not found")
)

// ValidationError is a caller-supplied request problem, surfaced before any
// external call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// ProviderError is a structured error reported by the provider itself. The
// message is passed through for operator diagnosis; keys never appear here.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider error [%s]: %s", e.Code, e.Message)
	}
	return "provider error: " + e.Message
}

// PersistenceError is a local DB failure. For exchange creation it is logged
// and swallowed (the external side effect already happened); for pure-read or
// catalog operations it propagates.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
