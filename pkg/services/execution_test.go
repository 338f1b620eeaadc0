package services_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/models"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/n8n"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/persistence/memory"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testExternalURL = "http://relay.test:3001"

func setupExecutionService(t *testing.T, engineHandler http.HandlerFunc) (*services.Execution, *memory.Persistence) {
	t.Helper()

	server := httptest.NewServer(engineHandler)
	t.Cleanup(server.Close)

	engine := n8n.NewClient(n8n.Config{
		BaseURL:         server.URL,
		StartWebhookURL: server.URL + "/webhook/start",
	}, slog.Default())

	persistence := memory.NewPersistence()

	return services.NewExecution(persistence, engine, testExternalURL, slog.Default()), persistence
}

func acceptAll(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestExecution_StartRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, _ := setupExecutionService(t, acceptAll)

	result, err := service.Start(ctx, services.StartWorkflowRequest{PrimaryTopic: "  container security  "})
	require.NoError(t, err)
	require.NotEmpty(t, result.ExecutionID)
	assert.Regexp(t, `^exec-\d+-`, result.ExecutionID)
	assert.Equal(t, http.StatusOK, result.EngineStatus)

	state, err := service.Get(ctx, result.ExecutionID)
	require.NoError(t, err)

	assert.Equal(t, models.PhaseInitializing, state[models.FieldPhase])
	assert.Equal(t, models.StatusWorkflowStarted, state[models.FieldStatus])
	assert.Equal(t, models.WorkflowTypeCompleteSEO, state[models.FieldType])

	input, ok := state[models.FieldInputData].(map[string]any)
	require.True(t, ok)
	body, ok := input["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "container security", body["primary_topic"])
	assert.Equal(t, "general audience", body["target_audience"])
	assert.Equal(t, "blog post", body["content_type"])
	assert.Equal(t, result.ExecutionID, body["execution_id"])
	assert.Equal(t, testExternalURL, body["web_interface_url"])
}

func TestExecution_StartRequiresPrimaryTopic(t *testing.T) {
	t.Parallel()

	service, _ := setupExecutionService(t, acceptAll)

	for _, topic := range []string{"", "   "} {
		_, err := service.Start(context.Background(), services.StartWorkflowRequest{PrimaryTopic: topic})
		require.Error(t, err)
		assert.True(t, services.IsValidationError(err))
	}
}

func TestExecution_StartEngineFailureStoresNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, _ := setupExecutionService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := service.Start(ctx, services.StartWorkflowRequest{PrimaryTopic: "golang"})
	require.Error(t, err)

	states, err := service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestExecution_IngestReviewRegistersWebhookAndMergesState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, persistence := setupExecutionService(t, acceptAll)

	attempt, err := service.IngestReview(ctx, services.IngestReviewRequest{
		Phase:         models.KeywordStrategyPhase,
		ExecutionID:   "exec-1",
		WorkflowPhase: models.PhaseKeywordStrategyReview,
		Status:        "awaiting_strategy_approval",
		AttemptNumber: 2,
		WebhookURL:    "http://eng/cb",
		Payload:       models.WorkflowState{"keyword_strategy": map[string]any{"primary": "go"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempt)

	url, err := persistence.WebhookRepository().Resolve(ctx, "exec-1", models.SlotKeywordStrategy)
	require.NoError(t, err)
	assert.Equal(t, "http://eng/cb/keyword-strategy-approval-webhook", url)

	state, err := service.Get(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseKeywordStrategyReview, state[models.FieldPhase])
	assert.Equal(t, "awaiting_strategy_approval", state[models.FieldStatus])
	assert.Equal(t, 2, state[models.FieldAttemptNumber])
	assert.NotEmpty(t, state[models.FieldTimestamp])
}

func TestExecution_IngestReviewDefaultsAttemptNumber(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, persistence := setupExecutionService(t, acceptAll)

	attempt, err := service.IngestReview(ctx, services.IngestReviewRequest{
		Phase:         models.ContentPhase,
		ExecutionID:   "exec-1",
		WorkflowPhase: models.PhaseContentReview,
		Status:        "awaiting_content_approval",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempt)

	// No webhook_url in the request, so the slot stays empty.
	_, err = persistence.WebhookRepository().Resolve(ctx, "exec-1", models.SlotContent)
	require.Error(t, err)
}

func TestExecution_CompleteDelivery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, _ := setupExecutionService(t, acceptAll)

	_, err := service.IngestReview(ctx, services.IngestReviewRequest{
		Phase:         models.ContentPhase,
		ExecutionID:   "exec-1",
		WorkflowPhase: models.PhaseContentReview,
		Status:        "awaiting_content_approval",
		Payload:       models.WorkflowState{"blog_content": "draft"},
	})
	require.NoError(t, err)

	err = service.CompleteDelivery(ctx, services.FinalDeliveryRequest{
		ExecutionID:    "exec-1",
		WorkflowStatus: models.StatusWorkflowCompleted,
		CompletionTime: "2026-08-29T10:00:00Z",
		Payload:        models.WorkflowState{"final_content": map[string]any{"seo_title": "Go"}},
	})
	require.NoError(t, err)

	state, err := service.Get(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCompleted, state[models.FieldPhase])
	assert.Equal(t, models.StatusWorkflowCompleted, state[models.FieldStatus])
	assert.Equal(t, models.StatusWorkflowCompleted, state[models.FieldLastAction])
	assert.Equal(t, "2026-08-29T10:00:00Z", state[models.FieldCompletionTime])
	// Earlier phase fields survive the terminal merge.
	assert.Equal(t, "draft", state["blog_content"])
}

func TestExecution_ListMatchesIngestedExecutions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, _ := setupExecutionService(t, acceptAll)

	for _, id := range []string{"exec-a", "exec-b", "exec-c"} {
		_, err := service.IngestReview(ctx, services.IngestReviewRequest{
			Phase:         models.ResearchPhase,
			ExecutionID:   id,
			WorkflowPhase: models.PhaseResearchReview,
			Status:        "awaiting_research_approval",
		})
		require.NoError(t, err)
	}

	states, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, states, 3)

	count, err := service.ActiveCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
