package services_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/models"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/n8n"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/persistence/memory"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApprovalService(t *testing.T, config n8n.Config) (*services.Approval, *memory.Persistence) {
	t.Helper()

	persistence := memory.NewPersistence()
	engine := n8n.NewClient(config, slog.Default())

	return services.NewApproval(persistence, engine, slog.Default()), persistence
}

func TestApproval_DecideWithoutRegistrationFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, persistence := setupApprovalService(t, n8n.Config{})

	_, err := service.Decide(ctx, services.DecisionRequest{
		Phase:       models.ContentPhase,
		ExecutionID: "exec-never-ingested",
		Action:      models.ActionApprove,
	})
	require.Error(t, err)
	assert.True(t, services.IsNoCallbackError(err))

	// The failed relay must not create a state entry.
	_, err = persistence.ExecutionStateRepository().Get(ctx, "exec-never-ingested")
	assert.True(t, services.IsNotFoundError(err))
}

func TestApproval_DecideRelaysAndRecordsAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		phase          models.ReviewPhase
		action         string
		feedback       string
		index          int
		wantStatus     string
		wantLastAction string
		wantFields     map[string]any
	}{
		{
			name:           "keyword strategy reject",
			phase:          models.KeywordStrategyPhase,
			action:         models.ActionReject,
			feedback:       "needs more long-tail keywords",
			wantStatus:     "strategy_rejected",
			wantLastAction: "keyword_strategy_rejected",
			wantFields:     map[string]any{"strategy_feedback": "needs more long-tail keywords"},
		},
		{
			name:           "keyword strategy approve",
			phase:          models.KeywordStrategyPhase,
			action:         models.ActionApprove,
			wantStatus:     "strategy_approved",
			wantLastAction: "keyword_strategy_approved",
		},
		{
			name:           "blog idea selection carries index",
			phase:          models.BlogIdeaPhase,
			action:         models.ActionApprove,
			index:          2,
			wantStatus:     "idea_selected",
			wantLastAction: "blog_idea_selected",
			wantFields:     map[string]any{"selected_idea_index": float64(2)},
		},
		{
			name:           "research reject still records approval",
			phase:          models.ResearchPhase,
			action:         models.ActionReject,
			feedback:       "check the statistics",
			wantStatus:     "research_approved",
			wantLastAction: "research_approved",
			wantFields:     map[string]any{"research_feedback": "check the statistics"},
		},
		{
			name:           "content approve",
			phase:          models.ContentPhase,
			action:         models.ActionApprove,
			wantStatus:     "content_approved",
			wantLastAction: "content_approved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()

			var delivered map[string]any

			engineServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&delivered)
				w.WriteHeader(http.StatusOK)
			}))
			defer engineServer.Close()

			service, persistence := setupApprovalService(t, n8n.Config{})

			require.NoError(t, persistence.ExecutionStateRepository().Upsert(ctx, "exec-1", models.WorkflowState{
				models.FieldPhase: models.PhaseKeywordStrategyReview,
			}))

			_, err := persistence.WebhookRepository().Register(ctx, "exec-1", tt.phase.Slot, engineServer.URL, tt.phase.WebhookSuffix)
			require.NoError(t, err)

			result, err := service.Decide(ctx, services.DecisionRequest{
				Phase:       tt.phase,
				ExecutionID: "exec-1",
				Action:      tt.action,
				Feedback:    tt.feedback,
				Index:       tt.index,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.action, result.Action)
			assert.Equal(t, engineServer.URL+"/"+tt.phase.WebhookSuffix, result.WebhookURL)
			assert.Equal(t, http.StatusOK, result.EngineStatus)

			assert.Equal(t, "exec-1", delivered["execution_id"])
			assert.Equal(t, tt.action, delivered["action"])

			for field, want := range tt.wantFields {
				assert.Equal(t, want, delivered[field])
			}

			state, err := persistence.ExecutionStateRepository().Get(ctx, "exec-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, state[models.FieldStatus])
			assert.Equal(t, tt.wantLastAction, state[models.FieldLastAction])
		})
	}
}

func TestApproval_DecideDefaultsToApprove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var delivered map[string]any

	engineServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&delivered)
		w.WriteHeader(http.StatusOK)
	}))
	defer engineServer.Close()

	service, persistence := setupApprovalService(t, n8n.Config{})

	_, err := persistence.WebhookRepository().Register(ctx, "exec-1", models.SlotTitle, engineServer.URL, models.TitlePhase.WebhookSuffix)
	require.NoError(t, err)

	result, err := service.Decide(ctx, services.DecisionRequest{
		Phase:       models.TitlePhase,
		ExecutionID: "exec-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActionApprove, result.Action)
	assert.Equal(t, models.ActionApprove, delivered["action"])
	assert.Equal(t, "", delivered["selection_feedback"])
	assert.Equal(t, float64(0), delivered["selected_title_index"])
}

func TestApproval_EngineErrorStatusStillCountsAsDelivered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	engineServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer engineServer.Close()

	service, persistence := setupApprovalService(t, n8n.Config{})

	require.NoError(t, persistence.ExecutionStateRepository().Upsert(ctx, "exec-1", models.WorkflowState{}))
	_, err := persistence.WebhookRepository().Register(ctx, "exec-1", models.SlotContent, engineServer.URL, models.ContentPhase.WebhookSuffix)
	require.NoError(t, err)

	result, err := service.Decide(ctx, services.DecisionRequest{
		Phase:       models.ContentPhase,
		ExecutionID: "exec-1",
		Action:      models.ActionReject,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, result.EngineStatus)

	state, err := persistence.ExecutionStateRepository().Get(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, "content_rejected", state[models.FieldStatus])
}

func TestApproval_TimeoutLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	engineServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer engineServer.Close()

	service, persistence := setupApprovalService(t, n8n.Config{DecisionTimeout: 50 * time.Millisecond})

	require.NoError(t, persistence.ExecutionStateRepository().Upsert(ctx, "exec-1", models.WorkflowState{
		models.FieldStatus: "awaiting_content_approval",
	}))
	_, err := persistence.WebhookRepository().Register(ctx, "exec-1", models.SlotContent, engineServer.URL, models.ContentPhase.WebhookSuffix)
	require.NoError(t, err)

	_, err = service.Decide(ctx, services.DecisionRequest{
		Phase:       models.ContentPhase,
		ExecutionID: "exec-1",
		Action:      models.ActionApprove,
	})
	require.Error(t, err)

	upstream, ok := n8n.IsUpstreamError(err)
	require.True(t, ok)
	assert.True(t, upstream.Timeout)

	state, err := persistence.ExecutionStateRepository().Get(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, "awaiting_content_approval", state[models.FieldStatus])
	assert.NotContains(t, state, models.FieldLastAction)
}
