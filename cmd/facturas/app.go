package main

import (
	"context"
	"fmt"

	"facturas/internal/backend"
	"facturas/internal/config"
	"facturas/internal/details"
	"facturas/internal/log"
	"facturas/internal/repository"
)

// appConfig is set by initConfig before any subcommand runs.
var appConfig *config.Config

type app struct {
	backend *backend.BackendResult
	records *repository.Repository
	details *details.Repository
	logger  *log.Logger
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := log.FromContext(ctx)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize backend: %w", err)
	}

	return &app{
		backend: res,
		records: repository.New(res.Remote, res.Store, logger),
		details: details.New(res.Details, cfg.DetailsCacheTTL, logger),
		logger:  logger,
	}, nil
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Error("failed to close backend", log.FieldError, err)
	}
}
