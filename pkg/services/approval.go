package services

import (
	"context"
	"log/slog"

	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/models"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/n8n"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/persistence"
)

// Approval forwards human decisions to the engine's resume webhooks. Each
// relay is a single best-effort attempt: the engine drives pipeline
// progression and reports it back through the next ingestion call, so a relay
// failure only means the user has to press the button again.
type Approval struct {
	persistence persistence.Persistence
	engine      *n8n.Client
	logger      *slog.Logger
}

// NewApproval creates a new approval service.
func NewApproval(persistence persistence.Persistence, engine *n8n.Client, logger *slog.Logger) *Approval {
	return &Approval{
		persistence: persistence,
		engine:      engine,
		logger:      logger,
	}
}

// DecisionRequest is one human decision for a review phase. Action defaults
// to approve. SelectionIndex is only meaningful for phases with a selection
// index field and defaults to 0.
type DecisionRequest struct {
	Phase       models.ReviewPhase
	ExecutionID string
	Action      string
	Feedback    string
	Index       int
}

// DecisionResult reports the webhook used and the engine's answer.
type DecisionResult struct {
	Action       string
	WebhookURL   string
	EngineStatus int
}

// Decide resolves the callback URL registered for the phase, forwards the
// decision payload, and on delivery records the resulting status and
// last_action. Transport failures leave local state untouched.
func (a *Approval) Decide(ctx context.Context, req DecisionRequest) (*DecisionResult, error) {
	action := req.Action
	if action == "" {
		action = models.ActionApprove
	}

	webhookURL, err := a.persistence.WebhookRepository().Resolve(ctx, req.ExecutionID, req.Phase.Slot)
	if err != nil {
		if persistence.IsWebhookNotRegistered(err) {
			return nil, &NoCallbackError{ExecutionID: req.ExecutionID, Phase: req.Phase.Name}
		}

		return nil, err
	}

	payload := map[string]any{
		models.FieldExecutionID: req.ExecutionID,
		"action":                action,
		req.Phase.FeedbackField: req.Feedback,
	}

	if req.Phase.IndexField != "" {
		payload[req.Phase.IndexField] = req.Index
	}

	a.logger.Info("Relaying decision to engine",
		"execution_id", req.ExecutionID,
		"phase", req.Phase.Name,
		"action", action,
		"webhook_url", webhookURL)

	resp, err := a.engine.SendDecision(ctx, webhookURL, payload)
	if err != nil {
		return nil, err
	}

	// The snapshot is only updated when the execution is already known; a
	// decision never creates state on its own.
	_, err = a.persistence.ExecutionStateRepository().Get(ctx, req.ExecutionID)
	if err == nil {
		err = a.persistence.ExecutionStateRepository().Upsert(ctx, req.ExecutionID, models.WorkflowState{
			models.FieldStatus:     req.Phase.Status(action),
			models.FieldLastAction: req.Phase.LastAction(action),
		})
		if err != nil {
			return nil, err
		}
	} else if !persistence.IsExecutionNotFound(err) {
		return nil, err
	}

	return &DecisionResult{
		Action:       action,
		WebhookURL:   webhookURL,
		EngineStatus: resp.Status,
	}, nil
}
