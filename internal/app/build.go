// Package app wires the assistant's components together from configuration.
package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/munes-ai/munes/internal/config"
	"github.com/munes-ai/munes/internal/dialog"
	"github.com/munes-ai/munes/internal/gemma"
	"github.com/munes-ai/munes/internal/httpapi"
	"github.com/munes-ai/munes/internal/memory"
	"github.com/munes-ai/munes/internal/observability"
	"github.com/munes-ai/munes/internal/session"
)

type BuildResult struct {
	Config   config.Config
	API      *httpapi.Server
	Store    *memory.Store
	Sessions *session.Manager
	Service  gemma.Service
	Metrics  *observability.Metrics

	// Cleanup should be called on shutdown to release external resources.
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*BuildResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	tuning := memory.DefaultTuning()
	if cfg.TuningPath != "" {
		loaded, err := memory.LoadTuning(cfg.TuningPath)
		if err != nil {
			return nil, fmt.Errorf("tuning load failed: %w", err)
		}
		tuning = loaded
	}

	svc, err := gemma.New(gemma.Config{
		Mode:    cfg.GemmaMode,
		HTTPURL: cfg.GemmaHTTPURL,
		Timeout: cfg.GemmaTimeout,
		Retries: cfg.GemmaRetries,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("generation service init failed: %w", err)
	}

	persister, err := memory.NewPersister(ctx, cfg.DatabaseURL, cfg.MemoryFilePath)
	if err != nil {
		return nil, fmt.Errorf("memory persistence init failed: %w", err)
	}

	store, err := memory.NewStore(ctx, memory.Config{
		Tuning:    tuning,
		Service:   svc,
		Persister: persister,
		Logger:    logger,
		Metrics:   metrics,
	})
	if err != nil {
		_ = persister.Close()
		return nil, fmt.Errorf("memory store init failed: %w", err)
	}

	sessions := session.NewManager(session.ManagerConfig{
		Analyzer:    dialog.NewAnalyzer(svc, logger),
		Store:       store,
		Service:     svc,
		Persister:   session.NewFilePersister(cfg.SessionsDir),
		Logger:      logger,
		Metrics:     metrics,
		IdleTimeout: cfg.SessionIdleTimeout,
	})
	sessions.StartJanitor(ctx, cfg.JanitorInterval)

	api := httpapi.New(cfg, store, sessions)

	cleanup := func() error {
		var errs []string
		if err := store.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	return &BuildResult{
		Config:   cfg,
		API:      api,
		Store:    store,
		Sessions: sessions,
		Service:  svc,
		Metrics:  metrics,
		Cleanup:  cleanup,
	}, nil
}
