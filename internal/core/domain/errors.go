package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	// Validation failures are surfaced synchronously and no session is created.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition indicates a session status change that would move
	// backwards or out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnsupportedType indicates an unknown connector or provider type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Pipeline Errors.

	// ErrConnector indicates a connector invocation failed.
	// Connector failures are isolated and never fail a session.
	ErrConnector = errors.New("connector failed")

	// ErrFilterTimeout indicates the relevance filter call timed out or errored.
	// It is fatal to the session.
	ErrFilterTimeout = errors.New("relevance filter timed out")

	// ErrFilterFailed indicates the relevance filter call returned an error.
	// It is fatal to the session.
	ErrFilterFailed = errors.New("relevance filter failed")

	// ErrFilterParse indicates the relevance filter response could not be decoded.
	// It degrades to an empty result.
	ErrFilterParse = errors.New("relevance filter response malformed")

	// ErrPersistence indicates a store write or read failed.
	ErrPersistence = errors.New("persistence failure")

	// ErrEventLogIncomplete indicates a connector ended without a terminal event.
	ErrEventLogIncomplete = errors.New("event log incomplete")

	// Scheduler Errors.

	// ErrSchedulerStopped indicates the admission queue no longer accepts work.
	ErrSchedulerStopped = errors.New("scheduler stopped")

	// Access Errors.

	// ErrUnauthenticated indicates the caller presented no valid identity.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates the caller does not own the requested session.
	ErrForbidden = errors.New("forbidden")
)

// ConnectorError wraps a failure from a single source connector.
type ConnectorError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *ConnectorError) Error() string {
	return fmt.Sprintf("connector %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConnectorError) Unwrap() error {
	return e.Err
}

// Is reports ErrConnector as a match so callers can test the category.
func (e *ConnectorError) Is(target error) bool {
	return target == ErrConnector
}
