package worker

import (
	"context"
	"fmt"
	"time"

	"facturas/internal/amqp"
	"facturas/internal/core"
	"facturas/internal/log"
	"facturas/internal/repository"
	"facturas/internal/sources"
)

// RecordRefresher refreshes the cached billing records.
type RecordRefresher interface {
	Refresh(ctx context.Context, useFallbackSource bool) (repository.Result, error)
}

// DetailsRefresher refreshes the cached installation details.
type DetailsRefresher interface {
	Refresh(ctx context.Context) ([]core.InstallationDetails, error)
}

// RefreshWorker keeps the local cache warm: on demand through AMQP refresh
// requests and on a fixed schedule as a backup.
type RefreshWorker struct {
	records           RecordRefresher
	details           DetailsRefresher
	useFallbackSource bool
	requests          *limiter
	logger            *log.Logger
}

// Option configures a RefreshWorker.
type Option func(*RefreshWorker)

// WithRequestLimit drops queued refresh requests beyond limit per source
// within window. Scheduled and startup refreshes are never limited.
func WithRequestLimit(limit int, window time.Duration) Option {
	return func(w *RefreshWorker) {
		if limit > 0 && window > 0 {
			w.requests = newLimiter(limit, window)
		}
	}
}

// NewRefreshWorker creates a worker. details may be nil.
// useFallbackSource selects the source for scheduled refreshes.
func NewRefreshWorker(records RecordRefresher, details DetailsRefresher, useFallbackSource bool, logger *log.Logger, opts ...Option) *RefreshWorker {
	if logger == nil {
		logger = log.Nop()
	}
	w := &RefreshWorker{
		records:           records,
		details:           details,
		useFallbackSource: useFallbackSource,
		logger:            logger.WithComponent(log.ComponentWorker),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleRefreshMessage processes a single refresh request from AMQP.
// Only an unreadable cache is an error; a failed fetch already fell back.
func (w *RefreshWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.RefreshRequestMessage) error {
	selector := sources.SelectorFor(msg.UseFallbackSource).String()
	if w.requests != nil && !w.requests.Allow(selector) {
		w.logger.WarnContext(ctx, "Dropping refresh request over the rate limit",
			log.FieldSelector, selector,
			"reason", msg.Reason)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing refresh request",
		log.FieldSelector, selector,
		"reason", msg.Reason,
		"requested_at", msg.Timestamp)

	return w.refresh(ctx, msg.UseFallbackSource)
}

// StartupRefresh refreshes once when the worker starts, so a cold cache
// is filled before the first scheduled tick.
func (w *RefreshWorker) StartupRefresh(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Running startup refresh", log.FieldOperation, log.OpStartup)
	return w.refresh(ctx, w.useFallbackSource)
}

// RunPeriodic refreshes every interval until ctx is done. Failed ticks are
// logged and the schedule continues.
func (w *RefreshWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "Started periodic refresh", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Stopping periodic refresh", log.FieldOperation, log.OpShutdown)
			return nil
		case <-ticker.C:
			if err := w.refresh(ctx, w.useFallbackSource); err != nil {
				w.logger.ErrorContext(ctx, "Periodic refresh failed", log.FieldError, err)
			}
		}
	}
}

func (w *RefreshWorker) refresh(ctx context.Context, useFallbackSource bool) error {
	start := time.Now()
	res, err := w.records.Refresh(ctx, useFallbackSource)
	if err != nil {
		return fmt.Errorf("refresh records: %w", err)
	}

	fields := log.NewFields().
		WithOperation(log.OpRefresh).
		WithRefresh(sources.SelectorFor(useFallbackSource).String(), res.Origin.String(), len(res.Records)).
		WithDuration(time.Since(start)).
		WithSuccess(!res.Fallback())
	if res.Fallback() {
		w.logger.WarnContext(ctx, "Remote refresh failed, serving cached records",
			fields.WithError(res.FetchErr).Args()...)
	} else {
		w.logger.InfoContext(ctx, "Refreshed records", fields.Args()...)
	}

	if w.details != nil {
		if _, err := w.details.Refresh(ctx); err != nil {
			w.logger.WarnContext(ctx, "Details refresh failed", log.FieldError, err)
		}
	}
	return nil
}
