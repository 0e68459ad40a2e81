package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/seobrief/internal/brief"
	"github.com/vijay-prabhu/seobrief/internal/cache"
	"github.com/vijay-prabhu/seobrief/internal/config"
	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/keywords"
	"github.com/vijay-prabhu/seobrief/internal/llm"
	"github.com/vijay-prabhu/seobrief/internal/logging"
	"github.com/vijay-prabhu/seobrief/internal/metrics"
	"github.com/vijay-prabhu/seobrief/internal/research"
	"github.com/vijay-prabhu/seobrief/internal/serp"
)

// app holds what a command needs: configuration, logger, database and
// metrics. Collaborators that talk to the network are built lazily.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	db      *database.DB
	metrics *metrics.Metrics
	closers []io.Closer
}

// openApp loads configuration, sets up logging and opens the database.
func openApp() (*app, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	logging.SetGlobal(logger)

	a := &app{
		cfg:     cfg,
		log:     logger,
		metrics: metrics.New(),
		closers: []io.Closer{logCloser},
	}

	if err := cfg.EnsureDirectories(); err != nil {
		a.Close()
		return nil, err
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.db = db
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

// model returns the configured text model, or nil when running on the
// offline catalog. A missing API key degrades to the catalog with a warning.
func (a *app) model(ctx context.Context) (llm.TextModel, error) {
	model, err := llm.New(ctx, a.cfg.LLM)
	if errors.Is(err, llm.ErrNoAPIKey) {
		a.log.Warn().Msgf("%s is not set; using the offline keyword catalog", config.EnvGeminiKey)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if c, ok := model.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	return model, nil
}

// generator returns the LLM generator backed by the catalog, or the catalog
// alone when no model is configured.
func (a *app) generator(model llm.TextModel) keywords.Generator {
	catalog := keywords.NewCatalog()
	if model == nil {
		return catalog
	}
	primary := keywords.NewLLM(llm.WithMetrics(model, a.metrics, "keywords"), a.log)
	return keywords.NewFallback(primary, catalog, a.log)
}

// searcher returns a cached SERP client, or nil when no API key is set.
func (a *app) searcher() (serp.Searcher, error) {
	if a.cfg.SERP.APIKey() == "" {
		a.log.Info().Msgf("%s is not set; skipping search result lookups", config.EnvSerpKey)
		return nil, nil
	}

	store, err := cache.New(a.cfg.Cache, a.db)
	if err != nil {
		return nil, fmt.Errorf("failed to set up cache: %w", err)
	}
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	client := serp.NewClient(a.cfg.SERP, a.log)
	return serp.NewCachedClient(client, store, a.cfg.SERP.CacheTTL(), a.metrics, a.log), nil
}

// pipeline wires the full research pipeline.
func (a *app) pipeline(ctx context.Context) (*research.Pipeline, error) {
	model, err := a.model(ctx)
	if err != nil {
		return nil, err
	}
	searcher, err := a.searcher()
	if err != nil {
		return nil, err
	}

	var writerModel llm.TextModel
	if model != nil {
		writerModel = llm.WithMetrics(model, a.metrics, "brief")
	}

	return research.New(research.Deps{
		DB:        a.db,
		Generator: a.generator(model),
		Searcher:  searcher,
		Writer:    brief.NewWriter(writerModel, a.log),
		Metrics:   a.metrics,
		Config:    a.cfg,
		Logger:    a.log,
	}), nil
}
