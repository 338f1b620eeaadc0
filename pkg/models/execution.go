package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkflowState is the accumulated snapshot of one pipeline execution. The
// engine supplies most of its fields as opaque structured values, so the
// state is an open field set rather than a rigid schema: fields accumulate
// over the run and are only ever overwritten, never removed. The relay itself
// inspects only the handful of keys named by the Field* constants.
type WorkflowState map[string]any

// Field names this system reads or writes itself. Everything else in a
// WorkflowState is engine payload passed through unchanged.
const (
	FieldExecutionID    = "execution_id"
	FieldType           = "type"
	FieldPhase          = "phase"
	FieldStatus         = "status"
	FieldLastAction     = "last_action"
	FieldAttemptNumber  = "attempt_number"
	FieldTimestamp      = "timestamp"
	FieldCompletionTime = "completion_time"
	FieldInputData      = "input_data"
)

// WorkflowTypeCompleteSEO tags executions started through the complete-SEO
// entry point.
const WorkflowTypeCompleteSEO = "complete_seo"

// NewExecutionID generates an execution identifier of the form
// exec-<unix-millis>-<random suffix>. The timestamp keeps ids roughly sortable
// while the suffix guarantees practical uniqueness without coordination.
func NewExecutionID() string {
	return fmt.Sprintf("exec-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// Timestamp formats t the way every mutation records it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
