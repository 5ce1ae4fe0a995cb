package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"facturas/internal/amqp"
	"facturas/internal/backend"
	"facturas/internal/cache"
	"facturas/internal/cli"
	"facturas/internal/config"
	"facturas/internal/details"
	"facturas/internal/log"
	"facturas/internal/repository"
	"facturas/internal/worker"
)

const (
	cacheSweepInterval  = time.Minute
	refreshRequestLimit = 6
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	logger.Info("Starting facturas-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	records := repository.New(res.Remote, res.Store, logger)
	info := details.New(res.Details, cfg.DetailsCacheTTL, logger)
	useFallback := cfg.LiveSource == config.LiveSourceNone
	w := worker.NewRefreshWorker(records, info, useFallback, logger,
		worker.WithRequestLimit(refreshRequestLimit, time.Minute))

	caches := cache.NewManager(logger)
	caches.Register(info.Cache())

	// On startup, fill the cache before serving requests
	if err := w.StartupRefresh(ctx); err != nil {
		logger.Error("Startup refresh failed", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return caches.Run(gctx, cacheSweepInterval)
	})

	if cfg.RefreshInterval > 0 {
		g.Go(func() error {
			return w.RunPeriodic(gctx, cfg.RefreshInterval)
		})
	} else {
		logger.Info("Periodic refresh disabled")
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return err
		}
		defer client.Close()

		g.Go(func() error {
			err := client.ConsumeRefreshRequests(gctx, w.HandleRefreshMessage)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("Skipping AMQP message consumption - no AMQP_URL provided")
	}

	err = g.Wait()
	logger.Info("Worker shutdown complete")
	return err
}
