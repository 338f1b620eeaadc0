package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/log"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/n8n"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/persistence/memory"
	"github.com/Inbotiq-com/Seo-Research-Workflow/pkg/tracer"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 3001

func main() {
	_ = godotenv.Load()

	logger := log.WithModule("relay-api")

	cmd := &cli.Command{
		Name:                  "relay-api",
		Usage:                 "Human-in-the-loop relay for the n8n SEO content pipeline",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the relay API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "n8n-base-url",
				Usage:   "Base URL of the n8n instance",
				Value:   "http://localhost:5678",
				Sources: cli.EnvVars("N8N_BASE_URL"),
			},
			&cli.StringFlag{
				Name:     "start-webhook",
				Usage:    "n8n webhook URL that starts the complete SEO workflow",
				Required: true,
				Sources:  cli.EnvVars("SEO_WORKFLOW_WEBHOOK"),
			},
			&cli.StringFlag{
				Name:    "external-url",
				Usage:   "Externally reachable base URL of this server, used for engine callbacks",
				Sources: cli.EnvVars("EXTERNAL_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			tracerProvider, err := tracer.InitTracer(ctx, "seo-relay-api")
			if err != nil {
				return fmt.Errorf("failed to initialize tracer: %w", err)
			}
			defer func() {
				if err := tracerProvider.Shutdown(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
				}
			}()

			port := command.Int("port")

			externalURL := command.String("external-url")
			if externalURL == "" {
				externalURL = fmt.Sprintf("http://localhost:%d", port)
			}

			engine := n8n.NewClient(n8n.Config{
				BaseURL:         command.String("n8n-base-url"),
				StartWebhookURL: command.String("start-webhook"),
			}, logger)

			persistence := memory.NewPersistence()
			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			logger.InfoContext(ctx, "Initializing SEO workflow relay API",
				"port", port,
				"external_url", externalURL,
				"n8n_url", command.String("n8n-base-url"),
				"start_webhook", command.String("start-webhook"))

			api := NewAPI(logger, persistence, engine, externalURL)

			if err := api.Start(port); err != nil {
				logger.ErrorContext(ctx, "Failed to start relay API", "error", err)

				return err
			}

			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
