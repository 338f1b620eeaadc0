// Package persistence provides the storage abstraction for workflow execution
// state and per-execution webhook callback registrations.
package persistence

import (
	"context"

	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/models"
)

// Persistence aggregates the repositories backing the relay. Implementations
// own the full lifetime of their stores; entries are never evicted.
type Persistence interface {
	ExecutionStateRepository() ExecutionStateRepository
	WebhookRepository() WebhookRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// ExecutionStateRepository stores the latest known snapshot per execution.
type ExecutionStateRepository interface {
	// Upsert shallow-merges fields into the state for executionID, creating
	// the record if absent. Field values always replace prior values for the
	// same key; keys absent from fields are preserved. The timestamp field is
	// refreshed on every call.
	Upsert(ctx context.Context, executionID string, fields models.WorkflowState) error

	// Get returns the state for executionID, or ErrExecutionNotFound.
	Get(ctx context.Context, executionID string) (models.WorkflowState, error)

	// List returns all known states, each carrying its execution_id field.
	// Order is unspecified.
	List(ctx context.Context) ([]models.WorkflowState, error)

	// Count returns the number of executions seen so far.
	Count(ctx context.Context) (int, error)
}

// WebhookRepository stores engine callback URLs per (execution, slot).
type WebhookRepository interface {
	// Register builds the full callback URL from baseURL and suffix and
	// stores it under (executionID, slot), overwriting any prior value.
	// Construction is idempotent: if baseURL already ends with suffix it is
	// stored as is. Returns the stored URL.
	Register(ctx context.Context, executionID string, slot models.WebhookSlot, baseURL, suffix string) (string, error)

	// Resolve returns the URL stored for (executionID, slot), or
	// ErrWebhookNotRegistered.
	Resolve(ctx context.Context, executionID string, slot models.WebhookSlot) (string, error)
}
