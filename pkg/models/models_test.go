package models_test

import (
	"testing"

	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestNewExecutionID(t *testing.T) {
	t.Parallel()

	id := models.NewExecutionID()
	assert.Regexp(t, `^exec-\d{13}-[0-9a-f]{8}$`, id)

	assert.NotEqual(t, id, models.NewExecutionID())
}

func TestReviewPhaseStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phase          models.ReviewPhase
		action         string
		wantStatus     string
		wantLastAction string
	}{
		{models.KeywordStrategyPhase, models.ActionApprove, "strategy_approved", "keyword_strategy_approved"},
		{models.KeywordStrategyPhase, models.ActionReject, "strategy_rejected", "keyword_strategy_rejected"},
		{models.BlogIdeaPhase, models.ActionApprove, "idea_selected", "blog_idea_selected"},
		{models.BlogIdeaPhase, models.ActionReject, "ideas_rejected", "blog_idea_rejected"},
		{models.TitlePhase, models.ActionApprove, "title_selected", "title_selected"},
		{models.TitlePhase, models.ActionReject, "titles_rejected", "title_rejected"},
		{models.ResearchPhase, models.ActionApprove, "research_approved", "research_approved"},
		{models.ResearchPhase, models.ActionReject, "research_approved", "research_approved"},
		{models.ContentPhase, models.ActionApprove, "content_approved", "content_approved"},
		{models.ContentPhase, models.ActionReject, "content_rejected", "content_rejected"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.wantStatus, tt.phase.Status(tt.action), tt.phase.Name)
		assert.Equal(t, tt.wantLastAction, tt.phase.LastAction(tt.action), tt.phase.Name)
	}
}
