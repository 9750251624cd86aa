// Package app wires configuration into stores, providers and services.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/raphaelgruber/voicejournal/internal/blob"
	"github.com/raphaelgruber/voicejournal/internal/config"
	"github.com/raphaelgruber/voicejournal/internal/db"
	"github.com/raphaelgruber/voicejournal/internal/llm"
	"github.com/raphaelgruber/voicejournal/internal/metrics"
	"github.com/raphaelgruber/voicejournal/internal/pg"
	"github.com/raphaelgruber/voicejournal/internal/service"
	"github.com/raphaelgruber/voicejournal/internal/store"
	"github.com/raphaelgruber/voicejournal/internal/transcribe"
)

// App holds every dependency the binaries need.
type App struct {
	Config   config.Config
	Metrics  *metrics.Collector
	Registry *prometheus.Registry
	Store    store.RecordStore
	Blobs    blob.Store

	Generator *service.Generator
	Pipeline  *service.Pipeline
	Notes     *service.NoteService
	Chat      *service.ChatService
	Themes    *service.ThemeService
}

// Deps overrides parts of the wiring, mostly for tests. Nil fields are built
// from configuration.
type Deps struct {
	Store       store.RecordStore
	Blobs       blob.Store
	Transcriber service.Transcriber
	Model       service.LanguageModel
}

// New builds the application from cfg.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	return NewWithDeps(ctx, cfg, logger, Deps{})
}

// NewWithDeps builds the application, using any dependency supplied in deps
// instead of constructing it.
func NewWithDeps(ctx context.Context, cfg config.Config, logger *slog.Logger, deps Deps) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		// Affected steps report the missing credential when they run.
		logger.Warn("configuration incomplete", "error", err)
	}

	reg := prometheus.NewRegistry()
	mc := metrics.NewCollector(reg)

	st := deps.Store
	if st == nil {
		var err error
		st, err = OpenStore(ctx, cfg, logger, mc)
		if err != nil {
			return nil, err
		}
	}

	blobs := deps.Blobs
	if blobs == nil {
		b, err := blob.New(ctx, cfg)
		if err != nil {
			st.Close(ctx)
			return nil, err
		}
		blobs = b
	}
	blobs = blob.WithMetrics(blobs, mc)

	transcriber := deps.Transcriber
	if transcriber == nil {
		transcriber = transcribe.New(cfg.DeepgramAPIKey, cfg.DeepgramURL, mc)
	}

	model := deps.Model
	if model == nil {
		m, err := llm.NewModel(ctx, cfg, mc)
		if err != nil {
			st.Close(ctx)
			return nil, err
		}
		model = m
	}

	gen := service.NewGenerator(model)
	return &App{
		Config:    cfg,
		Metrics:   mc,
		Registry:  reg,
		Store:     st,
		Blobs:     blobs,
		Generator: gen,
		Pipeline: service.NewPipeline(transcriber, gen, st, blobs, mc, service.PipelineOptions{
			ExtractInsight:  cfg.ExtractInsight,
			ExtractLocation: cfg.ExtractLocation,
		}),
		Notes:  service.NewNoteService(st),
		Chat:   service.NewChatService(st, st, model, cfg.Timezone),
		Themes: service.NewThemeService(st, model),
	}, nil
}

// OpenStore connects to the configured record store and ensures its schema.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger, mc *metrics.Collector) (store.RecordStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.StoreBackend {
	case config.StoreSurreal:
		client, err := db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger, mc)
		if err != nil {
			return nil, err
		}
		if err := client.InitSchema(ctx); err != nil {
			client.Close(ctx)
			return nil, err
		}
		return client, nil

	case config.StorePostgres:
		s, err := pg.Open(ctx, pg.Config{URL: cfg.DatabaseURL, MaxConns: cfg.DatabaseMaxConns, SlowMs: 200}, mc, nil)
		if err != nil {
			return nil, err
		}
		if err := s.InitSchema(ctx); err != nil {
			s.Close(ctx)
			return nil, err
		}
		return s, nil

	case config.StoreMemory:
		logger.Warn("using in-memory record store, data is lost on exit")
		return store.NewMemory(), nil

	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.StoreBackend)
	}
}

// Close waits for pending temp-audio deletions and closes the store.
func (a *App) Close(ctx context.Context) error {
	if err := a.Pipeline.Drain(ctx); err != nil {
		slog.Warn("cleanup tasks still running at shutdown", "error", err)
	}
	if a.Store != nil {
		return a.Store.Close(ctx)
	}
	return nil
}
