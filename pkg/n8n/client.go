// Package n8n implements the outbound HTTP client for the n8n workflow
// engine: starting pipeline runs, relaying human decisions to resume webhooks,
// and probing engine connectivity. Every call is a single best-effort attempt;
// the engine is the source of truth for pipeline progression, so nothing here
// is retried.
package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/tracer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultStartTimeout    = 15 * time.Second
	defaultDecisionTimeout = 30 * time.Second
	defaultProbeTimeout    = 10 * time.Second

	// Upstream status tolerance per call site. Workflow starts treat any
	// non-5xx response as accepted; decision relays treat any HTTP response
	// at all as delivered, since resume webhooks answer with whatever status
	// the workflow happens to produce.
	startMaxStatus    = http.StatusInternalServerError
	decisionMaxStatus = 600
)

// Config holds the engine endpoints and per-call-site timeouts. Zero timeouts
// fall back to the defaults above.
type Config struct {
	BaseURL         string
	StartWebhookURL string

	StartTimeout    time.Duration
	DecisionTimeout time.Duration
	ProbeTimeout    time.Duration
}

// Client is the relay's view of the n8n engine.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewClient creates an engine client. The http.Client carries no global
// timeout; each call bounds itself through its request context.
func NewClient(config Config, logger *slog.Logger) *Client {
	if config.StartTimeout == 0 {
		config.StartTimeout = defaultStartTimeout
	}

	if config.DecisionTimeout == 0 {
		config.DecisionTimeout = defaultDecisionTimeout
	}

	if config.ProbeTimeout == 0 {
		config.ProbeTimeout = defaultProbeTimeout
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{},
		logger:     logger,
		tracer:     otel.Tracer("n8n-client"),
	}
}

// Response captures whatever the engine answered with.
type Response struct {
	Status int
	Body   []byte
}

// StartWorkflow posts the initial pipeline payload to the configured start
// webhook.
func (c *Client) StartWorkflow(ctx context.Context, payload any) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "n8n.start_workflow",
		trace.WithAttributes(attribute.String(tracer.WebhookURLKey, c.config.StartWebhookURL)))
	defer span.End()

	resp, err := c.post(ctx, c.config.StartWebhookURL, payload, c.config.StartTimeout, startMaxStatus)
	if err != nil {
		tracer.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.Int(tracer.UpstreamStatus, resp.Status))
	c.logger.Info("Workflow start accepted by engine", "status", resp.Status)

	return resp, nil
}

// SendDecision forwards a human approve/reject decision to the resume webhook
// registered for the current phase.
func (c *Client) SendDecision(ctx context.Context, url string, decision any) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "n8n.send_decision",
		trace.WithAttributes(attribute.String(tracer.WebhookURLKey, url)))
	defer span.End()

	resp, err := c.post(ctx, url, decision, c.config.DecisionTimeout, decisionMaxStatus)
	if err != nil {
		tracer.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.Int(tracer.UpstreamStatus, resp.Status))
	c.logger.Info("Decision delivered to engine", "webhook_url", url, "status", resp.Status)

	return resp, nil
}

// WorkflowCount asks the engine's REST API how many workflows it knows about.
// Used only by the connectivity probe endpoint.
func (c *Client) WorkflowCount(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	url := c.config.BaseURL + "/api/v1/workflows"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create engine probe request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &UpstreamError{URL: url, Timeout: isTimeout(err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read engine probe response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return 0, &UpstreamError{URL: url, Status: resp.StatusCode, Body: string(body)}
	}

	var listing struct {
		Data []json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(body, &listing); err != nil {
		return 0, fmt.Errorf("failed to decode engine workflow listing: %w", err)
	}

	return len(listing.Data), nil
}

// BaseURL returns the configured engine base URL for config echo endpoints.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// StartWebhookURL returns the configured start webhook for config echo
// endpoints.
func (c *Client) StartWebhookURL() string {
	return c.config.StartWebhookURL
}

func (c *Client) post(ctx context.Context, url string, payload any, timeout time.Duration, maxStatus int) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode engine payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{URL: url, Timeout: isTimeout(err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{URL: url, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= maxStatus {
		return nil, &UpstreamError{URL: url, Status: resp.StatusCode, Body: string(respBody)}
	}

	return &Response{Status: resp.StatusCode, Body: respBody}, nil
}
