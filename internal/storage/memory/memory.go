// Package memory is a process-local DataStore, used when no database is
// configured and in tests.
package memory

import (
	"context"
	"sync"

	"facturas/internal/broadcast"
	"facturas/internal/core"
	"facturas/internal/sources"
)

type Store struct {
	mu      sync.Mutex
	items   []core.Record
	updates *broadcast.Broadcaster[[]core.Record]
}

var _ sources.DataStore = (*Store)(nil)

// New returns a store seeded with records.
func New(seed ...core.Record) *Store {
	items := clone(seed)
	return &Store{
		items:   items,
		updates: broadcast.NewWithValue(clone(items)),
	}
}

// ReplaceAll swaps the whole contents under the lock.
func (s *Store) ReplaceAll(ctx context.Context, records []core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = clone(records)
	s.updates.Publish(clone(s.items))
	return nil
}

// ReadAll returns a copy of the stored records.
func (s *Store) ReadAll(ctx context.Context) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items), nil
}

func (s *Store) Observe() (<-chan []core.Record, func()) {
	return s.updates.Subscribe()
}

func clone(in []core.Record) []core.Record {
	return append(make([]core.Record, 0, len(in)), in...)
}
