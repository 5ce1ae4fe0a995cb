// Package details keeps the installation details of the account. Unlike
// billing records there is no durable fallback: a failed refresh is an
// error, and the last good value only survives in memory until it expires.
package details

import (
	"context"
	"errors"
	"fmt"
	"time"

	"facturas/internal/broadcast"
	"facturas/internal/cache"
	"facturas/internal/core"
	"facturas/internal/log"
	"facturas/internal/sources"
)

var ErrUnavailable = errors.New("installation details unavailable")

const cacheKey = "details"

type Repository struct {
	fetcher sources.DetailsFetcher
	cache   *cache.LRUCache[[]core.InstallationDetails]
	updates *broadcast.Broadcaster[[]core.InstallationDetails]
	logger  *log.Logger
}

// New creates the repository. ttl bounds how long Current serves a
// fetched value.
func New(fetcher sources.DetailsFetcher, ttl time.Duration, logger *log.Logger, opts ...cache.Option) *Repository {
	if logger == nil {
		logger = log.Nop()
	}
	return &Repository{
		fetcher: fetcher,
		cache:   cache.NewLRUCache[[]core.InstallationDetails](1, ttl, opts...),
		updates: broadcast.NewWithValue([]core.InstallationDetails{}),
		logger:  logger.WithComponent(log.ComponentDetails),
	}
}

// Refresh fetches the details once. On success they replace the cached
// value and are published; on failure the error wraps ErrUnavailable and
// nothing changes.
func (r *Repository) Refresh(ctx context.Context) ([]core.InstallationDetails, error) {
	if r.fetcher == nil {
		return nil, fmt.Errorf("%w: no source configured", ErrUnavailable)
	}
	list, err := r.fetcher.FetchDetails(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to load installation details",
			log.FieldOperation, log.OpFetch,
			log.FieldError, err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	list = append(make([]core.InstallationDetails, 0, len(list)), list...)
	r.cache.Set(cacheKey, list)
	r.updates.Publish(list)

	r.logger.DebugContext(ctx, "Loaded installation details", log.FieldRecords, len(list))
	return list, nil
}

// Current returns the last fetched details while they are fresh.
func (r *Repository) Current() ([]core.InstallationDetails, bool) {
	return r.cache.Get(cacheKey)
}

// Get serves fresh cached details or refreshes when there are none.
func (r *Repository) Get(ctx context.Context) ([]core.InstallationDetails, error) {
	if list, ok := r.Current(); ok {
		return list, nil
	}
	return r.Refresh(ctx)
}

// Observe streams every successfully refreshed list, starting with the
// latest (empty before the first refresh).
func (r *Repository) Observe() (<-chan []core.InstallationDetails, func()) {
	return r.updates.Subscribe()
}

// Cache exposes the underlying cache so a cache.Manager can sweep it.
func (r *Repository) Cache() cache.Cleaner {
	return r.cache
}
