// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/persistence"
)

var (
	// ErrPrimaryTopicRequired indicates a workflow start without a topic
	// (400 Bad Request).
	ErrPrimaryTopicRequired = errors.New("primary_topic is required")

	// ErrExecutionNotFound mirrors the persistence sentinel for callers that
	// only import the service layer (404 Not Found).
	ErrExecutionNotFound = persistence.ErrExecutionNotFound

	// ErrNoCallbackRegistered indicates a decision was relayed before the
	// engine supplied a callback URL for that phase (500, with a hint that
	// the workflow may not be waiting for input).
	ErrNoCallbackRegistered = errors.New("no webhook URL registered for this execution")
)

// NoCallbackError carries the execution and phase a failed relay targeted.
type NoCallbackError struct {
	ExecutionID string
	Phase       string
}

func (e *NoCallbackError) Error() string {
	return fmt.Sprintf("no webhook URL registered for execution %s phase %s; the workflow may not be waiting for input", e.ExecutionID, e.Phase)
}

func (e *NoCallbackError) Is(target error) bool {
	return target == ErrNoCallbackRegistered
}

// IsValidationError checks if an error is a validation error that should
// return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrPrimaryTopicRequired)
}

// IsNotFoundError checks if an error indicates a missing execution.
func IsNotFoundError(err error) bool {
	return persistence.IsExecutionNotFound(err)
}

// IsNoCallbackError checks if an error indicates relaying before any webhook
// registration.
func IsNoCallbackError(err error) bool {
	return errors.Is(err, ErrNoCallbackRegistered)
}
