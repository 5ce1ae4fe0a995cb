package viewstate

import (
	"github.com/shopspring/decimal"

	"facturas/internal/core"
)

// Message is an informational text shown alongside the list.
type Message string

const (
	MessageNone      Message = ""
	MessageNoRecords Message = "No hay facturas disponibles"
	MessageNoMatches Message = "No hay facturas que coincidan con los filtros seleccionados"
)

const (
	// ErrorUnavailable is set when a fetch failed and nothing was cached.
	ErrorUnavailable = "No se han podido cargar las facturas"
	// ErrorStorage is set when the local cache could not be read.
	ErrorStorage = "No se ha podido acceder a las facturas guardadas"
)

// ViewState is one immutable snapshot of the list screen. Snapshots share
// record slices with each other; neither the coordinator nor subscribers
// may modify them.
type ViewState struct {
	Original  []core.Record
	Criteria  core.FilterCriteria
	Visible   []core.Record
	MaxAmount decimal.Decimal
	Loading   bool
	FromCache bool
	Message   Message
	Error     string
	// Generation increases by one with every published snapshot.
	Generation uint64
}

// HasActiveFilters reports whether any criterion restricts the list. An
// amount range equal to [0, MaxAmount] restricts nothing.
func (s ViewState) HasActiveFilters() bool {
	c := s.Criteria
	if len(c.Statuses) > 0 || c.StartDate != nil || c.EndDate != nil {
		return true
	}
	if c.MinAmount != nil && !c.MinAmount.IsZero() {
		return true
	}
	if c.MaxAmount != nil && !c.MaxAmount.Equal(s.MaxAmount) {
		return true
	}
	return false
}

// messageFor picks the informational message for a recomputed list.
func messageFor(original, visible []core.Record) Message {
	switch {
	case len(original) == 0:
		return MessageNoRecords
	case len(visible) == 0:
		return MessageNoMatches
	default:
		return MessageNone
	}
}
