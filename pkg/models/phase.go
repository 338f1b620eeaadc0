// Package models defines the domain model for the SEO content pipeline relay:
// execution identifiers, pipeline phases, and the human-in-the-loop review
// phase descriptors shared by the ingestion and approval layers.
package models

// WebhookSlot names one of the fixed callback slots the engine can register
// per execution. A slot is (re)populated each time the matching HITL phase is
// ingested, which supports regeneration loops.
type WebhookSlot string

const (
	SlotKeywordStrategy WebhookSlot = "keyword_strategy"
	SlotBlogIdea        WebhookSlot = "blog_idea"
	SlotTitle           WebhookSlot = "title"
	SlotResearch        WebhookSlot = "research"
	SlotContent         WebhookSlot = "content"
)

// Pipeline phases as reported by the engine. The enumeration is open: the
// engine owns progression and the relay records whatever it last sent.
const (
	PhaseInitializing          = "initializing"
	PhaseKeywordStrategyReview = "keyword_strategy_review"
	PhaseBlogIdeaSelection     = "blog_idea_selection"
	PhaseTitleSelection        = "title_selection"
	PhaseResearchReview        = "research_review"
	PhaseContentReview         = "content_review"
	PhaseCompleted             = "completed"
)

// Workflow status strings set cooperatively by the engine and the approval
// relay.
const (
	StatusWorkflowStarted   = "workflow_started"
	StatusWorkflowCompleted = "workflow_completed"
)

// Approval actions accepted from the review UI.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// ReviewPhase describes one human-in-the-loop stage: which webhook slot it
// registers, the suffix appended to the engine's callback base URL, the
// decision payload fields, and the status/last_action strings written after a
// decision has been relayed.
type ReviewPhase struct {
	Name          string
	Slot          WebhookSlot
	WebhookSuffix string

	// Decision payload field names. IndexField is empty for phases without a
	// selection index.
	FeedbackField string
	IndexField    string

	StatusOnApprove string
	StatusOnReject  string
	ActionOnApprove string
	ActionOnReject  string
}

// Status returns the workflow status string recorded after relaying action.
func (p ReviewPhase) Status(action string) string {
	if action == ActionReject {
		return p.StatusOnReject
	}

	return p.StatusOnApprove
}

// LastAction returns the last_action string recorded after relaying action.
func (p ReviewPhase) LastAction(action string) string {
	if action == ActionReject {
		return p.ActionOnReject
	}

	return p.ActionOnApprove
}

// The five review phases of the complete SEO pipeline, in protocol order.
// The research phase records research_approved regardless of action: the
// engine treats any research decision as forward progress and feedback rides
// along in the payload.
var (
	KeywordStrategyPhase = ReviewPhase{
		Name:            "keyword_strategy",
		Slot:            SlotKeywordStrategy,
		WebhookSuffix:   "keyword-strategy-approval-webhook",
		FeedbackField:   "strategy_feedback",
		StatusOnApprove: "strategy_approved",
		StatusOnReject:  "strategy_rejected",
		ActionOnApprove: "keyword_strategy_approved",
		ActionOnReject:  "keyword_strategy_rejected",
	}

	BlogIdeaPhase = ReviewPhase{
		Name:            "blog_idea",
		Slot:            SlotBlogIdea,
		WebhookSuffix:   "blog-idea-selection-webhook",
		FeedbackField:   "selection_feedback",
		IndexField:      "selected_idea_index",
		StatusOnApprove: "idea_selected",
		StatusOnReject:  "ideas_rejected",
		ActionOnApprove: "blog_idea_selected",
		ActionOnReject:  "blog_idea_rejected",
	}

	TitlePhase = ReviewPhase{
		Name:            "title",
		Slot:            SlotTitle,
		WebhookSuffix:   "title-selection-webhook",
		FeedbackField:   "selection_feedback",
		IndexField:      "selected_title_index",
		StatusOnApprove: "title_selected",
		StatusOnReject:  "titles_rejected",
		ActionOnApprove: "title_selected",
		ActionOnReject:  "title_rejected",
	}

	ResearchPhase = ReviewPhase{
		Name:            "research",
		Slot:            SlotResearch,
		WebhookSuffix:   "research-approval-webhook",
		FeedbackField:   "research_feedback",
		StatusOnApprove: "research_approved",
		StatusOnReject:  "research_approved",
		ActionOnApprove: "research_approved",
		ActionOnReject:  "research_approved",
	}

	ContentPhase = ReviewPhase{
		Name:            "content",
		Slot:            SlotContent,
		WebhookSuffix:   "content-approval-webhook",
		FeedbackField:   "content_feedback",
		StatusOnApprove: "content_approved",
		StatusOnReject:  "content_rejected",
		ActionOnApprove: "content_approved",
		ActionOnReject:  "content_rejected",
	}
)
