// cmd/server/main.go
package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/sozercan/vizbot/internal/agent"
	"github.com/sozercan/vizbot/internal/config"
	"github.com/sozercan/vizbot/internal/llm"
	"github.com/sozercan/vizbot/internal/server"
	"github.com/sozercan/vizbot/internal/tools"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	llmProvider, err := llm.NewOpenAI(&cfg.OpenAI)
	if err != nil {
		log.Fatalf("failed to create LLM provider: %v", err)
	}

	registry, err := tools.NewRegistry()
	if err != nil {
		log.Fatalf("failed to create tool registry: %v", err)
	}

	a := agent.New(llmProvider, registry, agent.Options{
		MaxSteps: cfg.Agent.MaxSteps,
		Model:    cfg.OpenAI.Model,
		Retry: llm.RetryConfig{
			MaxAttempts: cfg.Agent.MaxRetries + 1,
			Timeout:     cfg.Agent.LLMTimeout,
		},
	})

	srv := server.New(*cfg, a)
	slog.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port, "model", cfg.OpenAI.Model)
	if err := srv.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
