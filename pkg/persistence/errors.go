package persistence

import "errors"

// Standard persistence error types that all implementations should use.
var (
	// ErrExecutionNotFound indicates no state exists for the given execution
	// identifier.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrWebhookNotRegistered indicates no callback URL has been stored for
	// the given execution and slot.
	ErrWebhookNotRegistered = errors.New("webhook not registered")
)

// IsExecutionNotFound checks if an error indicates a missing execution state.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// IsWebhookNotRegistered checks if an error indicates a missing callback URL.
func IsWebhookNotRegistered(err error) bool {
	return errors.Is(err, ErrWebhookNotRegistered)
}
