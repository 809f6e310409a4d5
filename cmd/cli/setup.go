package main

import (
	"fmt"
	"log/slog"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/llm"
	"github.com/sevigo/code-council/internal/logger"
	"github.com/sevigo/code-council/internal/openrouter"
)

// deps bundles the collaborators every review-issuing command needs.
type deps struct {
	cfg     *config.Config
	client  *openrouter.Client
	prompts *llm.PromptManager
	log     *slog.Logger
}

// buildDeps loads config and credentials and wires the OpenRouter client.
// Failures here are fatal configuration errors: the command exits 1
// before any network activity.
func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKey()
	if err != nil {
		return nil, err
	}

	prompts, err := llm.NewPromptManager()
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	log := logger.New(cfg.LogLevel, "text", nil)
	client := openrouter.NewClient(openrouter.ClientConfig{
		APIKey:         apiKey,
		Timeout:        cfg.RequestTimeout,
		MaxAttempts:    cfg.MaxAttempts,
		InitialBackoff: cfg.InitialBackoff,
	}, log)

	return &deps{cfg: cfg, client: client, prompts: prompts, log: log}, nil
}
