package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/models"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/n8n"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/persistence"
)

// Execution owns the write side of the relay: starting pipeline runs and
// ingesting the state snapshots the engine posts back at each phase, plus the
// read side the polling UI uses.
type Execution struct {
	persistence persistence.Persistence
	engine      *n8n.Client
	externalURL string
	logger      *slog.Logger
}

// NewExecution creates a new execution service. externalURL is the address
// the engine should use to reach this process back.
func NewExecution(persistence persistence.Persistence, engine *n8n.Client, externalURL string, logger *slog.Logger) *Execution {
	return &Execution{
		persistence: persistence,
		engine:      engine,
		externalURL: externalURL,
		logger:      logger,
	}
}

// HealthCheck checks the health of the persistence layer.
func (e *Execution) HealthCheck(ctx context.Context) (string, bool) {
	if e.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := e.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// StartWorkflowRequest carries the user's initial pipeline input. Optional
// fields default to the values the engine's prompt templates expect.
type StartWorkflowRequest struct {
	PrimaryTopic   string
	CompetitorURLs string
	TargetAudience string
	ContentType    string
	Location       string
	Language       string
	CompanyName    string
}

// StartWorkflowResult reports the assigned execution id and what the engine
// answered.
type StartWorkflowResult struct {
	ExecutionID  string
	EngineStatus int
}

// Start assigns a fresh execution id, posts the wrapped start payload to the
// engine, and records the initial workflow state. The engine call happens
// before the state write: a run that never reached the engine should not
// appear on the dashboard.
func (e *Execution) Start(ctx context.Context, req StartWorkflowRequest) (*StartWorkflowResult, error) {
	topic := strings.TrimSpace(req.PrimaryTopic)
	if topic == "" {
		return nil, ErrPrimaryTopicRequired
	}

	executionID := models.NewExecutionID()

	// n8n's webhook trigger exposes the request under a body key, so the
	// payload is wrapped to match.
	payload := map[string]any{
		"body": map[string]any{
			"primary_topic":     topic,
			"competitor_urls":   req.CompetitorURLs,
			"target_audience":   defaultString(req.TargetAudience, "general audience"),
			"content_type":      defaultString(req.ContentType, "blog post"),
			"location":          defaultString(req.Location, "United States"),
			"language":          defaultString(req.Language, "English"),
			"company_name":      req.CompanyName,
			"execution_id":      executionID,
			"web_interface_url": e.externalURL,
		},
	}

	e.logger.Info("Starting complete SEO workflow",
		"execution_id", executionID,
		"primary_topic", topic,
		"webhook_url", e.engine.StartWebhookURL())

	resp, err := e.engine.StartWorkflow(ctx, payload)
	if err != nil {
		return nil, err
	}

	err = e.persistence.ExecutionStateRepository().Upsert(ctx, executionID, models.WorkflowState{
		models.FieldType:      models.WorkflowTypeCompleteSEO,
		models.FieldPhase:     models.PhaseInitializing,
		models.FieldStatus:    models.StatusWorkflowStarted,
		models.FieldInputData: payload,
	})
	if err != nil {
		return nil, err
	}

	return &StartWorkflowResult{ExecutionID: executionID, EngineStatus: resp.Status}, nil
}

// IngestReviewRequest is one engine callback for a HITL phase: the snapshot
// fields to merge plus the optional callback base URL to register.
type IngestReviewRequest struct {
	Phase         models.ReviewPhase
	ExecutionID   string
	WorkflowPhase string
	Status        string
	AttemptNumber int
	WebhookURL    string

	// Payload holds the phase-specific fields (keyword_strategy, blog_ideas,
	// ...) passed through unchanged.
	Payload models.WorkflowState
}

// IngestReview registers the phase callback URL when present and merges the
// snapshot into the state store. Payload contents are deliberately not
// validated; the engine owns their shape.
func (e *Execution) IngestReview(ctx context.Context, req IngestReviewRequest) (int, error) {
	attempt := req.AttemptNumber
	if attempt <= 0 {
		attempt = 1
	}

	if req.WebhookURL != "" {
		stored, err := e.persistence.WebhookRepository().Register(ctx, req.ExecutionID, req.Phase.Slot, req.WebhookURL, req.Phase.WebhookSuffix)
		if err != nil {
			return 0, err
		}

		e.logger.Info("Stored phase callback URL",
			"execution_id", req.ExecutionID,
			"phase", req.Phase.Name,
			"webhook_url", stored)
	}

	fields := make(models.WorkflowState, len(req.Payload)+3)
	for key, value := range req.Payload {
		fields[key] = value
	}

	fields[models.FieldPhase] = req.WorkflowPhase
	fields[models.FieldStatus] = req.Status
	fields[models.FieldAttemptNumber] = attempt

	err := e.persistence.ExecutionStateRepository().Upsert(ctx, req.ExecutionID, fields)
	if err != nil {
		return 0, err
	}

	e.logger.Info("Ingested phase snapshot",
		"execution_id", req.ExecutionID,
		"phase", req.WorkflowPhase,
		"status", req.Status,
		"attempt_number", attempt)

	return attempt, nil
}

// FinalDeliveryRequest is the engine's terminal callback carrying the
// finished content and run summary.
type FinalDeliveryRequest struct {
	ExecutionID    string
	WorkflowStatus string
	CompletionTime string
	Payload        models.WorkflowState
}

// CompleteDelivery records the terminal snapshot for an execution.
func (e *Execution) CompleteDelivery(ctx context.Context, req FinalDeliveryRequest) error {
	completion := req.CompletionTime
	if completion == "" {
		completion = models.Timestamp(time.Now())
	}

	fields := make(models.WorkflowState, len(req.Payload)+4)
	for key, value := range req.Payload {
		fields[key] = value
	}

	fields[models.FieldPhase] = models.PhaseCompleted
	fields[models.FieldStatus] = req.WorkflowStatus
	fields[models.FieldCompletionTime] = completion
	fields[models.FieldLastAction] = models.StatusWorkflowCompleted

	err := e.persistence.ExecutionStateRepository().Upsert(ctx, req.ExecutionID, fields)
	if err != nil {
		return err
	}

	e.logger.Info("Workflow completed", "execution_id", req.ExecutionID, "completion_time", completion)

	return nil
}

// Get returns the state snapshot for executionID.
func (e *Execution) Get(ctx context.Context, executionID string) (models.WorkflowState, error) {
	return e.persistence.ExecutionStateRepository().Get(ctx, executionID)
}

// List returns all known execution snapshots for dashboard polling.
func (e *Execution) List(ctx context.Context) ([]models.WorkflowState, error) {
	return e.persistence.ExecutionStateRepository().List(ctx)
}

// ActiveCount returns how many executions this process has seen.
func (e *Execution) ActiveCount(ctx context.Context) (int, error) {
	return e.persistence.ExecutionStateRepository().Count(ctx)
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
