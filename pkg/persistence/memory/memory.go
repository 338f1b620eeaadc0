// Package memory provides the in-memory persistence implementation used by
// the relay. State lives for the lifetime of the process and is lost on exit;
// there is no eviction, so memory grows with the total number of executions
// seen.
package memory

import (
	"context"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/models"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/persistence"
)

// Persistence implements persistence.Persistence with plain in-process maps
// guarded by read-write mutexes. Merges stay last-write-wins per field; the
// locks protect map memory, not update ordering.
type Persistence struct {
	stateRepo   *ExecutionStateRepository
	webhookRepo *WebhookRepository
}

// NewPersistence creates an empty in-memory persistence instance.
func NewPersistence() *Persistence {
	return &Persistence{
		stateRepo: &ExecutionStateRepository{
			states: make(map[string]models.WorkflowState),
		},
		webhookRepo: &WebhookRepository{
			urls: make(map[string]map[models.WebhookSlot]string),
		},
	}
}

func (p *Persistence) ExecutionStateRepository() persistence.ExecutionStateRepository {
	return p.stateRepo
}

func (p *Persistence) WebhookRepository() persistence.WebhookRepository {
	return p.webhookRepo
}

// HealthCheck always succeeds: the maps exist as long as the process does.
func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

// Close performs any necessary cleanup. For in-memory persistence, there is
// nothing to clean up.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// ExecutionStateRepository stores workflow state snapshots keyed by execution
// identifier.
type ExecutionStateRepository struct {
	mu     sync.RWMutex
	states map[string]models.WorkflowState
}

// Upsert shallow-merges fields into the stored state for executionID,
// creating the record if absent, and refreshes the timestamp field.
func (r *ExecutionStateRepository) Upsert(_ context.Context, executionID string, fields models.WorkflowState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[executionID]
	if !ok {
		state = make(models.WorkflowState, len(fields)+2)
		r.states[executionID] = state
	}

	maps.Copy(state, fields)
	state[models.FieldTimestamp] = models.Timestamp(time.Now())

	return nil
}

// Get returns a copy of the state for executionID with the execution_id field
// filled in. Copying keeps callers from observing later mutations.
func (r *ExecutionStateRepository) Get(_ context.Context, executionID string) (models.WorkflowState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[executionID]
	if !ok {
		return nil, persistence.ErrExecutionNotFound
	}

	return r.snapshot(executionID, state), nil
}

// List returns copies of all stored states. Order is unspecified.
func (r *ExecutionStateRepository) List(_ context.Context) ([]models.WorkflowState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.WorkflowState, 0, len(r.states))
	for id, state := range r.states {
		result = append(result, r.snapshot(id, state))
	}

	return result, nil
}

// Count returns the number of executions seen so far.
func (r *ExecutionStateRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.states), nil
}

func (r *ExecutionStateRepository) snapshot(executionID string, state models.WorkflowState) models.WorkflowState {
	copied := make(models.WorkflowState, len(state)+1)
	maps.Copy(copied, state)
	copied[models.FieldExecutionID] = executionID

	return copied
}

// WebhookRepository stores callback URLs keyed by execution identifier and
// slot name.
type WebhookRepository struct {
	mu   sync.RWMutex
	urls map[string]map[models.WebhookSlot]string
}

// Register stores the callback URL built from baseURL and suffix under
// (executionID, slot). Re-registering the same phase overwrites the prior
// URL, which is what regeneration loops rely on.
func (r *WebhookRepository) Register(_ context.Context, executionID string, slot models.WebhookSlot, baseURL, suffix string) (string, error) {
	url := buildCallbackURL(baseURL, suffix)

	r.mu.Lock()
	defer r.mu.Unlock()

	slots, ok := r.urls[executionID]
	if !ok {
		slots = make(map[models.WebhookSlot]string)
		r.urls[executionID] = slots
	}

	slots[slot] = url

	return url, nil
}

// Resolve returns the URL stored for (executionID, slot).
func (r *WebhookRepository) Resolve(_ context.Context, executionID string, slot models.WebhookSlot) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	url, ok := r.urls[executionID][slot]
	if !ok {
		return "", persistence.ErrWebhookNotRegistered
	}

	return url, nil
}

// buildCallbackURL appends suffix to baseURL unless baseURL already ends with
// it, so registering twice with the same inputs yields the same URL.
func buildCallbackURL(baseURL, suffix string) string {
	if strings.HasSuffix(baseURL, suffix) {
		return baseURL
	}

	return strings.TrimSuffix(baseURL, "/") + "/" + suffix
}
