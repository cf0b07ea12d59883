package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/nikdata/oura-hrv/internal"
	"github.com/nikdata/oura-hrv/internal/config"
	"github.com/nikdata/oura-hrv/internal/extract"
	"github.com/nikdata/oura-hrv/internal/nightly"
	"github.com/nikdata/oura-hrv/internal/oura"
	"github.com/nikdata/oura-hrv/internal/service"
	"github.com/nikdata/oura-hrv/internal/sink"
	"github.com/nikdata/oura-hrv/internal/storage"
)

// env holds what every command needs: configuration and a logger.
type env struct {
	cfg    *config.Config
	logger *internal.ZapLogger
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger}, nil
}

func (e *env) close() {
	_ = e.logger.Sync()
}

// pipeline is everything a sync run touches.
type pipeline struct {
	store  storage.TokenStore
	client *oura.Client
	sinks  []sink.ReadingSink
	syncer *service.Syncer
}

func (e *env) newClient(ctx context.Context) (storage.TokenStore, *oura.Client, error) {
	store, err := storage.NewTokenStore(ctx, e.cfg, e.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open token store: %w", err)
	}
	creds, err := storage.LoadCredentials(ctx, store, storage.SeedCredentials(e.cfg))
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	client := oura.NewClient(creds, store, oura.Options{
		BaseURL:     e.cfg.APIBaseURL,
		TokenURL:    e.cfg.TokenURL,
		AuthURL:     e.cfg.AuthURL,
		RedirectURI: e.cfg.RedirectURI,
	}, e.logger)
	return store, client, nil
}

func (e *env) newPipeline(ctx context.Context) (*pipeline, error) {
	store, client, err := e.newClient(ctx)
	if err != nil {
		return nil, err
	}
	sinks, err := sink.FromConfig(e.cfg)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to open reading sinks: %w", err)
	}
	syncer := service.NewSyncer(
		client,
		extract.New(e.cfg.Location(), e.logger),
		nightly.NewWriter(e.cfg.DataDir, e.cfg.WriteEmptyNights, e.logger),
		sinks,
		e.logger,
	)
	return &pipeline{store: store, client: client, sinks: sinks, syncer: syncer}, nil
}

func (p *pipeline) close(logger internal.Logger) {
	if err := sink.CloseAll(p.sinks); err != nil {
		logger.Warnf("closing sinks: %v", err)
	}
	if err := p.store.Close(); err != nil {
		logger.Warnf("closing token store: %v", err)
	}
}

func (e *env) dateRange(start, end string) (internal.DateRange, error) {
	if start == "" {
		start = e.cfg.StartDate
	}
	if end == "" {
		end = e.cfg.EndDate
	}
	return service.DateRangeFor(start, end, e.cfg.DaysBack, time.Now())
}
