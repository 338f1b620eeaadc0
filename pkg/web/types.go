// Package web provides HTTP request and response types for the relay API.
package web

import (
	"encoding/json"

	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/models"
)

// StartWorkflowRequest is the user's initial pipeline input. Only
// primary_topic is mandatory; everything else has engine-side defaults.
type StartWorkflowRequest struct {
	PrimaryTopic   string `json:"primary_topic"   validate:"required"`
	CompetitorURLs string `json:"competitor_urls"`
	TargetAudience string `json:"target_audience"`
	ContentType    string `json:"content_type"`
	Location       string `json:"location"`
	Language       string `json:"language"`
	CompanyName    string `json:"company_name"`
}

// Ingestion request bodies, one per HITL phase. Payload fields are opaque
// engine values and stay json.RawMessage; the relay never looks inside them.

type KeywordStrategyReviewRequest struct {
	ExecutionID     string          `json:"execution_id"`
	KeywordStrategy json.RawMessage `json:"keyword_strategy"`
	ResearchData    json.RawMessage `json:"research_data"`
	WorkflowPhase   string          `json:"workflow_phase"`
	Status          string          `json:"status"`
	AttemptNumber   int             `json:"attempt_number"`
	WebhookURL      string          `json:"webhook_url"`
}

type BlogIdeaSelectionRequest struct {
	ExecutionID   string          `json:"execution_id"`
	BlogIdeas     json.RawMessage `json:"blog_ideas"`
	WorkflowPhase string          `json:"workflow_phase"`
	Status        string          `json:"status"`
	AttemptNumber int             `json:"attempt_number"`
	WebhookURL    string          `json:"webhook_url"`
}

type TitleSelectionRequest struct {
	ExecutionID   string          `json:"execution_id"`
	TitleOptions  json.RawMessage `json:"title_options"`
	SelectedIdea  json.RawMessage `json:"selected_idea"`
	WorkflowPhase string          `json:"workflow_phase"`
	Status        string          `json:"status"`
	AttemptNumber int             `json:"attempt_number"`
	WebhookURL    string          `json:"webhook_url"`
}

type ResearchReviewRequest struct {
	ExecutionID   string          `json:"execution_id"`
	ResearchData  json.RawMessage `json:"research_data"`
	SelectedTopic json.RawMessage `json:"selected_topic"`
	WorkflowPhase string          `json:"workflow_phase"`
	Status        string          `json:"status"`
	AttemptNumber int             `json:"attempt_number"`
	WebhookURL    string          `json:"webhook_url"`
}

type ContentReviewRequest struct {
	ExecutionID   string          `json:"execution_id"`
	BlogContent   json.RawMessage `json:"blog_content"`
	SelectedTopic json.RawMessage `json:"selected_topic"`
	ResearchData  json.RawMessage `json:"research_data"`
	WorkflowPhase string          `json:"workflow_phase"`
	Status        string          `json:"status"`
	AttemptNumber int             `json:"attempt_number"`
	WebhookURL    string          `json:"webhook_url"`
}

// FinalDeliveryRequest is the engine's terminal callback.
type FinalDeliveryRequest struct {
	ExecutionID            string          `json:"execution_id"`
	FinalContent           json.RawMessage `json:"final_content"`
	WorkflowStatus         string          `json:"workflow_status"`
	SelectedTopic          json.RawMessage `json:"selected_topic"`
	SelectedIdea           json.RawMessage `json:"selected_idea"`
	ResearchData           json.RawMessage `json:"research_data"`
	WorkflowSummary        json.RawMessage `json:"workflow_summary"`
	OriginalInput          json.RawMessage `json:"original_input"`
	ContentApproval        json.RawMessage `json:"content_approval"`
	WorkflowCompletionTime string          `json:"workflow_completion_time"`
}

// Approval request bodies, one per relay route.

type KeywordStrategyApprovalRequest struct {
	Action           string `json:"action"`
	StrategyFeedback string `json:"strategy_feedback"`
}

type BlogIdeaApprovalRequest struct {
	Action            string `json:"action"`
	SelectionFeedback string `json:"selection_feedback"`
	SelectedIdeaIndex int    `json:"selected_idea_index"`
}

type TitleApprovalRequest struct {
	Action             string `json:"action"`
	SelectionFeedback  string `json:"selection_feedback"`
	SelectedTitleIndex int    `json:"selected_title_index"`
}

type ResearchApprovalRequest struct {
	Action           string `json:"action"`
	ResearchFeedback string `json:"research_feedback"`
}

type ContentApprovalRequest struct {
	Action          string `json:"action"`
	ContentFeedback string `json:"content_feedback"`
}

// payloadFields collects the opaque fields an ingestion request carried,
// skipping the ones the engine omitted so a partial callback never clobbers
// previously stored values.
func payloadFields(fields map[string]json.RawMessage) models.WorkflowState {
	payload := make(models.WorkflowState, len(fields))

	for key, value := range fields {
		if value != nil {
			payload[key] = value
		}
	}

	return payload
}
