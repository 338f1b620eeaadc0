// Package web provides the HTTP handlers for the relay API: workflow start,
// HITL ingestion callbacks from the engine, approval relays back to it, and
// the query endpoints the polling frontend reads.
package web

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/models"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/n8n"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	executionService *services.Execution
	approvalService  *services.Approval
	engine           *n8n.Client
	validator        *validator.Validate
	logger           *slog.Logger
	externalURL      string
}

func NewAPIHandlers(
	executionService *services.Execution,
	approvalService *services.Approval,
	engine *n8n.Client,
	validator *validator.Validate,
	logger *slog.Logger,
	externalURL string,
) *APIHandlers {
	return &APIHandlers{
		executionService: executionService,
		approvalService:  approvalService,
		engine:           engine,
		validator:        validator,
		logger:           logger,
		externalURL:      externalURL,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	count, err := h.executionService.ActiveCount(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	status := "healthy"
	httpStatus := fiber.StatusOK

	if _, ok := h.executionService.HealthCheck(c.Context()); !ok {
		status = "unhealthy"
		httpStatus = fiber.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":           status,
		"timestamp":        models.Timestamp(time.Now()),
		"active_workflows": count,
		"backend_url":      h.externalURL,
		"n8n_url":          h.engine.BaseURL(),
	})
}

// TestInfo echoes the effective configuration for quick manual diagnosis.
func (h *APIHandlers) TestInfo(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":              "SEO workflow backend is running",
		"timestamp":            models.Timestamp(time.Now()),
		"n8n_url":              h.engine.BaseURL(),
		"seo_workflow_webhook": h.engine.StartWebhookURL(),
		"external_url":         h.externalURL,
	})
}

// TestEngineConnection probes the engine's REST API.
func (h *APIHandlers) TestEngineConnection(c fiber.Ctx) error {
	count, err := h.engine.WorkflowCount(c.Context())
	if err != nil {
		return handleServiceError(c, "", err)
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"message":         "n8n connection successful",
		"workflows_count": count,
		"n8n_url":         h.engine.BaseURL(),
	})
}

func (h *APIHandlers) StartWorkflow(c fiber.Ctx) error {
	var req StartWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.executionService.Start(c.Context(), services.StartWorkflowRequest{
		PrimaryTopic:   req.PrimaryTopic,
		CompetitorURLs: req.CompetitorURLs,
		TargetAudience: req.TargetAudience,
		ContentType:    req.ContentType,
		Location:       req.Location,
		Language:       req.Language,
		CompanyName:    req.CompanyName,
	})
	if err != nil {
		return handleServiceError(c, "", err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"execution_id": result.ExecutionID,
		"message":      "Complete SEO workflow started successfully",
		"status":       models.PhaseInitializing,
		"type":         models.WorkflowTypeCompleteSEO,
		"n8n_status":   result.EngineStatus,
		"webhook_url":  h.engine.StartWebhookURL(),
		"external_url": h.externalURL,
	})
}

func (h *APIHandlers) KeywordStrategyReview(c fiber.Ctx) error {
	var req KeywordStrategyReviewRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	return h.ingestReview(c, services.IngestReviewRequest{
		Phase:         models.KeywordStrategyPhase,
		ExecutionID:   req.ExecutionID,
		WorkflowPhase: req.WorkflowPhase,
		Status:        req.Status,
		AttemptNumber: req.AttemptNumber,
		WebhookURL:    req.WebhookURL,
		Payload: payloadFields(map[string]json.RawMessage{
			"keyword_strategy": req.KeywordStrategy,
			"research_data":    req.ResearchData,
		}),
	}, "Keyword strategy received for review")
}

func (h *APIHandlers) BlogIdeaSelection(c fiber.Ctx) error {
	var req BlogIdeaSelectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	return h.ingestReview(c, services.IngestReviewRequest{
		Phase:         models.BlogIdeaPhase,
		ExecutionID:   req.ExecutionID,
		WorkflowPhase: req.WorkflowPhase,
		Status:        req.Status,
		AttemptNumber: req.AttemptNumber,
		WebhookURL:    req.WebhookURL,
		Payload: payloadFields(map[string]json.RawMessage{
			"blog_ideas": req.BlogIdeas,
		}),
	}, "Blog ideas received for selection")
}

func (h *APIHandlers) TitleSelection(c fiber.Ctx) error {
	var req TitleSelectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	return h.ingestReview(c, services.IngestReviewRequest{
		Phase:         models.TitlePhase,
		ExecutionID:   req.ExecutionID,
		WorkflowPhase: req.WorkflowPhase,
		Status:        req.Status,
		AttemptNumber: req.AttemptNumber,
		WebhookURL:    req.WebhookURL,
		Payload: payloadFields(map[string]json.RawMessage{
			"title_options": req.TitleOptions,
			"selected_idea": req.SelectedIdea,
		}),
	}, "Title options received for selection")
}

func (h *APIHandlers) ResearchReview(c fiber.Ctx) error {
	var req ResearchReviewRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	return h.ingestReview(c, services.IngestReviewRequest{
		Phase:         models.ResearchPhase,
		ExecutionID:   req.ExecutionID,
		WorkflowPhase: req.WorkflowPhase,
		Status:        req.Status,
		AttemptNumber: req.AttemptNumber,
		WebhookURL:    req.WebhookURL,
		Payload: payloadFields(map[string]json.RawMessage{
			"research_data":  req.ResearchData,
			"selected_topic": req.SelectedTopic,
		}),
	}, "Research data received for review")
}

func (h *APIHandlers) ContentReview(c fiber.Ctx) error {
	var req ContentReviewRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	return h.ingestReview(c, services.IngestReviewRequest{
		Phase:         models.ContentPhase,
		ExecutionID:   req.ExecutionID,
		WorkflowPhase: req.WorkflowPhase,
		Status:        req.Status,
		AttemptNumber: req.AttemptNumber,
		WebhookURL:    req.WebhookURL,
		Payload: payloadFields(map[string]json.RawMessage{
			"blog_content":   req.BlogContent,
			"selected_topic": req.SelectedTopic,
			"research_data":  req.ResearchData,
		}),
	}, "Content received for review")
}

func (h *APIHandlers) ingestReview(c fiber.Ctx, req services.IngestReviewRequest, message string) error {
	attempt, err := h.executionService.IngestReview(c.Context(), req)
	if err != nil {
		return handleServiceError(c, req.ExecutionID, err)
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"message":        message,
		"execution_id":   req.ExecutionID,
		"attempt_number": attempt,
	})
}

func (h *APIHandlers) ApproveKeywordStrategy(c fiber.Ctx) error {
	executionID := c.Params("execution_id")

	var req KeywordStrategyApprovalRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	result, err := h.approvalService.Decide(c.Context(), services.DecisionRequest{
		Phase:       models.KeywordStrategyPhase,
		ExecutionID: executionID,
		Action:      req.Action,
		Feedback:    req.StrategyFeedback,
	})
	if err != nil {
		return handleServiceError(c, executionID, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Keyword strategy " + result.Action + "d successfully",
		"action":       result.Action,
		"webhook_used": result.WebhookURL,
	})
}

func (h *APIHandlers) ApproveBlogIdea(c fiber.Ctx) error {
	executionID := c.Params("execution_id")

	var req BlogIdeaApprovalRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	result, err := h.approvalService.Decide(c.Context(), services.DecisionRequest{
		Phase:       models.BlogIdeaPhase,
		ExecutionID: executionID,
		Action:      req.Action,
		Feedback:    req.SelectionFeedback,
		Index:       req.SelectedIdeaIndex,
	})
	if err != nil {
		return handleServiceError(c, executionID, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Blog idea " + result.Action + "d",
		"action":  result.Action,
	})
}

func (h *APIHandlers) ApproveTitle(c fiber.Ctx) error {
	executionID := c.Params("execution_id")

	var req TitleApprovalRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	result, err := h.approvalService.Decide(c.Context(), services.DecisionRequest{
		Phase:       models.TitlePhase,
		ExecutionID: executionID,
		Action:      req.Action,
		Feedback:    req.SelectionFeedback,
		Index:       req.SelectedTitleIndex,
	})
	if err != nil {
		return handleServiceError(c, executionID, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Title " + result.Action + "d",
		"action":  result.Action,
	})
}

func (h *APIHandlers) ApproveResearch(c fiber.Ctx) error {
	executionID := c.Params("execution_id")

	var req ResearchApprovalRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	_, err := h.approvalService.Decide(c.Context(), services.DecisionRequest{
		Phase:       models.ResearchPhase,
		ExecutionID: executionID,
		Action:      req.Action,
		Feedback:    req.ResearchFeedback,
	})
	if err != nil {
		return handleServiceError(c, executionID, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Research approved",
	})
}

func (h *APIHandlers) ApproveContent(c fiber.Ctx) error {
	executionID := c.Params("execution_id")

	var req ContentApprovalRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	result, err := h.approvalService.Decide(c.Context(), services.DecisionRequest{
		Phase:       models.ContentPhase,
		ExecutionID: executionID,
		Action:      req.Action,
		Feedback:    req.ContentFeedback,
	})
	if err != nil {
		return handleServiceError(c, executionID, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Content " + result.Action + "d",
		"action":  result.Action,
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	executionID := c.Params("execution_id")
	if executionID == "" {
		return badRequest(c, "Execution ID is required")
	}

	state, err := h.executionService.Get(c.Context(), executionID)
	if err != nil {
		return handleServiceError(c, executionID, err)
	}

	return c.JSON(state)
}

func (h *APIHandlers) ListWorkflows(c fiber.Ctx) error {
	states, err := h.executionService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows": states,
		"total":     len(states),
		"timestamp": models.Timestamp(time.Now()),
	})
}

func (h *APIHandlers) FinalDelivery(c fiber.Ctx) error {
	var req FinalDeliveryRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	err := h.executionService.CompleteDelivery(c.Context(), services.FinalDeliveryRequest{
		ExecutionID:    req.ExecutionID,
		WorkflowStatus: req.WorkflowStatus,
		CompletionTime: req.WorkflowCompletionTime,
		Payload: payloadFields(map[string]json.RawMessage{
			"final_content":    req.FinalContent,
			"selected_topic":   req.SelectedTopic,
			"selected_idea":    req.SelectedIdea,
			"research_data":    req.ResearchData,
			"workflow_summary": req.WorkflowSummary,
			"original_input":   req.OriginalInput,
			"content_approval": req.ContentApproval,
		}),
	})
	if err != nil {
		return handleServiceError(c, req.ExecutionID, err)
	}

	return c.JSON(fiber.Map{
		"success":               true,
		"message":               "Content delivered successfully",
		"execution_id":          req.ExecutionID,
		"final_content_preview": contentPreview(req.FinalContent, req.WorkflowCompletionTime),
	})
}

// contentPreview pulls the title and word count out of the opaque
// final_content blob for the delivery acknowledgment.
func contentPreview(finalContent json.RawMessage, completionTime string) fiber.Map {
	preview := fiber.Map{
		"title":           nil,
		"word_count":      nil,
		"completion_time": completionTime,
	}

	if finalContent == nil {
		return preview
	}

	var content map[string]any
	if err := json.Unmarshal(finalContent, &content); err != nil {
		return preview
	}

	preview["title"] = content["seo_title"]
	preview["word_count"] = content["word_count"]

	return preview
}

// NotFoundHandler answers anything the router did not match.
func NotFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":          "Endpoint not found",
		"requested_path": c.Path(),
		"method":         c.Method(),
	})
}
