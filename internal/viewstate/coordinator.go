// Package viewstate owns the filtered billing list shown to a user: the
// original records, the active criteria, the visible subset and the
// loading/message/error flags, published as immutable snapshots.
package viewstate

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"facturas/internal/broadcast"
	"facturas/internal/core"
	"facturas/internal/filter"
	"facturas/internal/log"
	"facturas/internal/repository"
)

// Refresher is the part of the repository the coordinator needs.
type Refresher interface {
	Refresh(ctx context.Context, useFallbackSource bool) (repository.Result, error)
}

// Coordinator serializes every state change behind one mutex and publishes
// the resulting snapshot before releasing it, so subscribers observe
// changes in the order they were made.
type Coordinator struct {
	repo    Refresher
	logger  *log.Logger
	updates *broadcast.Broadcaster[ViewState]

	mu    sync.Mutex
	state ViewState
	seq   uint64
}

func New(repo Refresher, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Nop()
	}
	initial := ViewState{MaxAmount: decimal.Zero}
	return &Coordinator{
		repo:    repo,
		logger:  logger.WithComponent(log.ComponentViewState),
		updates: broadcast.NewWithValue(initial),
		state:   initial,
	}
}

// LoadInitial refreshes the records and rebuilds the visible list with the
// criteria in force when the refresh completes. A load overtaken by a
// newer one is discarded and returns nil. The returned error is the
// repository's storage failure, also recorded in the state.
func (c *Coordinator) LoadInitial(ctx context.Context, useFallbackSource bool) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	next := c.state
	next.Loading = true
	c.commit(next)
	c.mu.Unlock()

	res, err := c.repo.Refresh(ctx, useFallbackSource)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.logger.DebugContext(ctx, "Discarding superseded load",
			log.FieldSeq, seq,
			"latest", c.seq)
		return nil
	}

	next = c.state
	next.Loading = false
	if err != nil {
		next.Error = ErrorStorage
		if !errors.Is(err, repository.ErrStorage) {
			next.Error = err.Error()
		}
		c.commit(next)
		c.logger.ErrorContext(ctx, "Load failed",
			log.NewFields().WithSeq(seq).WithError(err).Args()...)
		return err
	}

	original := append(make([]core.Record, 0, len(res.Records)), res.Records...)
	next.Original = original
	next.MaxAmount = filter.MaxAmount(original)
	next.FromCache = res.Fallback()
	if next.HasActiveFilters() {
		next.Visible = filter.Apply(original, next.Criteria)
	} else {
		next.Visible = original
	}
	next.Message = messageFor(original, next.Visible)
	next.Error = ""
	if res.FetchErr != nil && len(original) == 0 {
		next.Error = ErrorUnavailable
	}
	c.commit(next)

	c.logger.InfoContext(ctx, "Loaded records",
		log.FieldSeq, seq,
		log.FieldRecords, len(original),
		log.FieldVisible, len(next.Visible),
		log.FieldOrigin, res.Origin.String())
	return nil
}

// SetStatuses restricts the list to the given statuses; none clears the
// status criterion.
func (c *Coordinator) SetStatuses(statuses ...core.Status) {
	c.update(func(cr *core.FilterCriteria) {
		if len(statuses) == 0 {
			cr.Statuses = nil
			return
		}
		cr.Statuses = append([]core.Status(nil), statuses...)
	})
}

// SetStartDate sets the inclusive lower date bound from dd/mm/yyyy text.
// Empty text or core.DateSentinel clears it. Invalid text returns
// core.ErrInvalidDateText and changes nothing.
func (c *Coordinator) SetStartDate(text string) error {
	d, err := core.ParseOptionalDate(text)
	if err != nil {
		return err
	}
	c.update(func(cr *core.FilterCriteria) { cr.StartDate = d })
	return nil
}

// SetEndDate is SetStartDate for the inclusive upper bound.
func (c *Coordinator) SetEndDate(text string) error {
	d, err := core.ParseOptionalDate(text)
	if err != nil {
		return err
	}
	c.update(func(cr *core.FilterCriteria) { cr.EndDate = d })
	return nil
}

// SetAmountRange sets both inclusive amount bounds. An inverted range is
// accepted and matches nothing.
func (c *Coordinator) SetAmountRange(min, max decimal.Decimal) {
	c.update(func(cr *core.FilterCriteria) {
		cr.MinAmount = &min
		cr.MaxAmount = &max
	})
}

// ClearAmountRange removes both amount bounds.
func (c *Coordinator) ClearAmountRange() {
	c.update(func(cr *core.FilterCriteria) {
		cr.MinAmount = nil
		cr.MaxAmount = nil
	})
}

// ClearFilters drops every criterion and shows the original list again.
func (c *Coordinator) ClearFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state
	next.Criteria = core.FilterCriteria{}
	next.Visible = next.Original
	next.Message = MessageNone
	c.commit(next)
}

// ClearMessage dismisses the informational message.
func (c *Coordinator) ClearMessage() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Message == MessageNone {
		return
	}
	next := c.state
	next.Message = MessageNone
	c.commit(next)
}

// ClearError dismisses the error text.
func (c *Coordinator) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Error == "" {
		return
	}
	next := c.state
	next.Error = ""
	c.commit(next)
}

// MaxAmount is the largest amount of the original list, zero when empty.
func (c *Coordinator) MaxAmount() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.MaxAmount
}

func (c *Coordinator) HasActiveFilters() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.HasActiveFilters()
}

// State returns the current snapshot.
func (c *Coordinator) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe streams snapshots starting with the current one. Slow
// subscribers skip to the newest snapshot. Call cancel to unsubscribe.
func (c *Coordinator) Subscribe() (<-chan ViewState, func()) {
	return c.updates.Subscribe()
}

// Close ends every subscription.
func (c *Coordinator) Close() {
	c.updates.Close()
}

// update applies a criteria change and recomputes the visible list. With
// no original records the list stays empty and the message is kept.
func (c *Coordinator) update(mutate func(*core.FilterCriteria)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state
	criteria := next.Criteria.Clone()
	mutate(&criteria)
	next.Criteria = criteria

	if len(next.Original) > 0 {
		next.Visible = filter.Apply(next.Original, criteria)
		next.Message = messageFor(next.Original, next.Visible)
	}
	c.commit(next)
}

// commit stamps and publishes next. Callers hold c.mu.
func (c *Coordinator) commit(next ViewState) {
	next.Generation = c.state.Generation + 1
	c.state = next
	c.updates.Publish(next)
}
