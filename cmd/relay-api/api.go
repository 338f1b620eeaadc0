// Package main provides the SEO workflow relay API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/n8n"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/persistence"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/services"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	engine      *n8n.Client
	externalURL string
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	engine *n8n.Client,
	externalURL string,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		engine:      engine,
		externalURL: externalURL,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	executionService := services.NewExecution(a.persistence, a.engine, a.externalURL, a.logger)
	approvalService := services.NewApproval(a.persistence, a.engine, a.logger)

	handlers := web.NewAPIHandlers(executionService, approvalService, a.engine, a.validate, a.logger, a.externalURL)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	api := app.Group("/api")
	api.Get("/health", handlers.HealthCheck)
	api.Get("/test", handlers.TestInfo)
	api.Get("/test/n8n", handlers.TestEngineConnection)

	api.Post("/workflow/complete-seo/start", handlers.StartWorkflow)

	hitl := api.Group("/hitl")
	hitl.Post("/keyword-strategy-review", handlers.KeywordStrategyReview)
	hitl.Post("/blog-idea-selection", handlers.BlogIdeaSelection)
	hitl.Post("/title-selection", handlers.TitleSelection)
	hitl.Post("/research-review", handlers.ResearchReview)
	hitl.Post("/content-review", handlers.ContentReview)

	approve := api.Group("/approve")
	approve.Post("/keyword-strategy/:execution_id", handlers.ApproveKeywordStrategy)
	approve.Post("/blog-idea/:execution_id", handlers.ApproveBlogIdea)
	approve.Post("/title/:execution_id", handlers.ApproveTitle)
	approve.Post("/research/:execution_id", handlers.ApproveResearch)
	approve.Post("/content/:execution_id", handlers.ApproveContent)

	api.Get("/workflow/:execution_id", handlers.GetWorkflow)
	api.Get("/workflows", handlers.ListWorkflows)

	api.Post("/publishing/final-delivery", handlers.FinalDelivery)

	app.Use(web.NotFoundHandler)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
