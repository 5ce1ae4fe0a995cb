// Package repository coordinates the remote record source with the local
// cache. A refresh never fails because of the remote side: whatever goes
// wrong there, the caller gets the cached records instead.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"facturas/internal/core"
	"facturas/internal/log"
	"facturas/internal/sources"
)

// ErrStorage means the local cache could not be read.
var ErrStorage = errors.New("record storage unavailable")

// Origin tells where the records of a Result came from.
type Origin int

const (
	OriginRemote Origin = iota
	OriginCache
)

func (o Origin) String() string {
	switch o {
	case OriginRemote:
		return "remote"
	case OriginCache:
		return "cache"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// Result is the outcome of a refresh. FetchErr holds the remote or cache
// write error that caused a fallback, nil otherwise.
type Result struct {
	Records  []core.Record
	Origin   Origin
	FetchErr error
}

// Fallback reports whether the records came from the cache.
func (r Result) Fallback() bool {
	return r.Origin == OriginCache
}

type Repository struct {
	remote sources.RemoteSource
	store  sources.DataStore
	logger *log.Logger
}

func New(remote sources.RemoteSource, store sources.DataStore, logger *log.Logger) *Repository {
	if logger == nil {
		logger = log.Nop()
	}
	return &Repository{
		remote: remote,
		store:  store,
		logger: logger.WithComponent(log.ComponentRepository),
	}
}

// Refresh fetches once from the source picked by useFallbackSource and, on
// success, replaces the cache with the batch. On any failure it returns
// the cached records instead. The only error it returns wraps ErrStorage.
func (r *Repository) Refresh(ctx context.Context, useFallbackSource bool) (Result, error) {
	sel := sources.SelectorFor(useFallbackSource)
	start := time.Now()

	records, err := r.fetch(ctx, sel)
	if err == nil {
		if err = r.store.ReplaceAll(ctx, records); err == nil {
			r.logger.InfoContext(ctx, "Refreshed records from remote",
				log.NewFields().
					WithOperation(log.OpRefresh).
					WithRefresh(sel.String(), OriginRemote.String(), len(records)).
					WithDuration(time.Since(start)).
					Args()...)
			return Result{Records: records, Origin: OriginRemote}, nil
		}
		err = fmt.Errorf("replace cached records: %w", err)
	}

	cached, readErr := r.store.ReadAll(ctx)
	if readErr != nil {
		r.logger.ErrorContext(ctx, "Cache unreadable after failed refresh",
			log.NewFields().
				WithOperation(log.OpRead).
				WithError(readErr).
				Args()...)
		return Result{}, fmt.Errorf("%w: %v", ErrStorage, readErr)
	}

	r.logger.WarnContext(ctx, "Refresh failed, serving cached records",
		log.NewFields().
			WithOperation(log.OpRefresh).
			WithRefresh(sel.String(), OriginCache.String(), len(cached)).
			WithError(err).
			Args()...)
	return Result{Records: cached, Origin: OriginCache, FetchErr: err}, nil
}

// fetch performs the single remote round trip and validates the batch.
func (r *Repository) fetch(ctx context.Context, sel sources.Selector) ([]core.Record, error) {
	if r.remote == nil {
		return nil, fmt.Errorf("%w: no remote source", sources.ErrFetch)
	}
	records, err := r.remote.Fetch(ctx, sel)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateBatch(records); err != nil {
		return nil, fmt.Errorf("%w: %v", sources.ErrMalformedPayload, err)
	}
	if records == nil {
		records = []core.Record{}
	}
	return records, nil
}

// Cached reads the cache without contacting the remote source.
func (r *Repository) Cached(ctx context.Context) ([]core.Record, error) {
	records, err := r.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return records, nil
}

// Observe exposes the cache's continuous view, independent of Refresh.
func (r *Repository) Observe() (<-chan []core.Record, func()) {
	return r.store.Observe()
}
