package main

import (
	"context"
	"fmt"

	"github.com/jonathan/career-planner/internal/adzuna"
	"github.com/jonathan/career-planner/internal/config"
	"github.com/jonathan/career-planner/internal/enrich"
	"github.com/jonathan/career-planner/internal/evidence"
	"github.com/jonathan/career-planner/internal/planner"
	"github.com/jonathan/career-planner/internal/reference"
	"github.com/jonathan/career-planner/internal/store"
)

// loadAppConfig resolves configuration from the environment, overlaid by the
// optional --config file.
func loadAppConfig() (*config.Config, error) {
	cfg := config.FromEnv()
	if configFile != "" {
		fileCfg, err := config.LoadConfig(configFile)
		if err != nil {
			return nil, err
		}
		merged := fileCfg.MergeWithDefaults(*cfg)
		cfg = &merged
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// app bundles the wired services behind the CLI verbs.
type app struct {
	cfg          *config.Config
	db           *store.DB
	orchestrator *evidence.Orchestrator
	catalog      *reference.Catalog
	planner      *planner.Planner
	enricher     *enrich.Enricher
}

// newApp connects the database and wires the evidence pipeline, reference
// catalog, and planner. The Adzuna client and enricher tolerate missing
// credentials; the database is the one hard dependency.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	provider := adzuna.NewClient(adzuna.Options{
		AppID:    cfg.AdzunaAppID,
		AppKey:   cfg.AdzunaAppKey,
		Country:  cfg.AdzunaCountry,
		PageSize: cfg.AdzunaPageSize,
	})

	opts := []evidence.Option{evidence.WithTTL(cfg.EvidenceTTL())}
	if cfg.AdzunaMaxPages > 0 {
		opts = append(opts, evidence.WithMaxPages(cfg.AdzunaMaxPages))
	}

	var enricher *enrich.Enricher
	if cfg.GeminiAPIKey != "" {
		gen, err := enrich.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		enricher = enrich.New(gen)
		opts = append(opts, evidence.WithEnricher(enricher))
	}

	orchestrator := evidence.New(db, provider, opts...)
	catalog := reference.NewCatalog(db)

	region := cfg.Region
	if region == "" {
		region = planner.DefaultRegion
	}

	pl := planner.New(catalog,
		planner.WithEvidenceSource(orchestrator),
		planner.WithMetadataStore(db),
		planner.WithRegion(region),
		planner.WithCountry(cfg.AdzunaCountry),
	)

	return &app{
		cfg:          cfg,
		db:           db,
		orchestrator: orchestrator,
		catalog:      catalog,
		planner:      pl,
		enricher:     enricher,
	}, nil
}

// Close releases the database pool.
func (a *app) Close() {
	a.db.Close()
}
