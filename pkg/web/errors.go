package web

import (
	"net/http"

	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/n8n"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(http.StatusBadRequest).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(http.StatusNotFound).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(http.StatusInternalServerError).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// relayProblem extends the RFC-7807 body with the relay context the frontend
// shows next to its manual retry button.
type relayProblem struct {
	problems.Problem

	ExecutionID string `json:"execution_id,omitempty"`
	WebhookURL  string `json:"webhook_url,omitempty"`
	IsTimeout   bool   `json:"is_timeout,omitempty"`
	Suggestion  string `json:"suggestion,omitempty"`
}

// handleServiceError maps service layer errors onto HTTP responses.
// executionID may be empty when the failure predates id assignment.
func handleServiceError(c fiber.Ctx, executionID string, err error) error {
	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case services.IsNotFoundError(err):
		return notFound(c, "Workflow not found")

	case services.IsNoCallbackError(err):
		problem := relayProblem{
			Problem: *problems.NewStatusProblem(http.StatusInternalServerError).
				WithInstance(c.Path()).
				WithType("no_callback_registered").
				WithDetail(err.Error()),
			ExecutionID: executionID,
			Suggestion:  "Verify the SEO workflow is active in n8n and waiting for input",
		}

		return c.Status(fiber.StatusInternalServerError).JSON(problem)

	default:
		if upstream, ok := n8n.IsUpstreamError(err); ok {
			problem := relayProblem{
				Problem: *problems.NewStatusProblem(http.StatusInternalServerError).
					WithInstance(c.Path()).
					WithType("upstream_error").
					WithDetail(err.Error()),
				ExecutionID: executionID,
				WebhookURL:  upstream.URL,
				IsTimeout:   upstream.Timeout,
			}

			return c.Status(fiber.StatusInternalServerError).JSON(problem)
		}

		return internalError(c, err)
	}
}
