package main

import (
	"context"
	"fmt"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/adapter/llm"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/config"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/metrics"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/prompt"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/repository"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/scoring"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/service"
	"github.com/maddoxeriksen-12/Calling-Coach/policy"
)

// app bundles the wired components shared by the subcommands.
type app struct {
	cfg     *config.Config
	store   *repository.SQLiteStore
	metrics *metrics.Metrics
	service *service.Service
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	policyEngine, err := policy.NewDefaultEngine(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	llmClient := llm.NewLLMClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ScoringTimeout)
	evaluator := scoring.NewLLMEvaluator(llmClient, cfg.ScoringModel)
	builder := prompt.Builder{
		WebhookBaseURL: cfg.WebhookBaseURL,
		Model:          cfg.AssistantModel,
		VoiceID:        cfg.VoiceID,
	}
	m := metrics.NewMetrics("")

	return &app{
		cfg:     cfg,
		store:   db,
		metrics: m,
		service: service.New(db, builder, evaluator, cfg, policyEngine, m),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
