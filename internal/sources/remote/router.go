package remote

import (
	"context"
	"fmt"

	"facturas/internal/core"
	"facturas/internal/sources"
)

// Router is the RemoteSource used by the repository: it forwards each fetch
// to exactly one backend chosen by the selector.
type Router struct {
	Live      sources.Fetcher
	Simulated sources.Fetcher
}

var _ sources.RemoteSource = (*Router)(nil)

func NewRouter(live, simulated sources.Fetcher) *Router {
	return &Router{Live: live, Simulated: simulated}
}

func (r *Router) Fetch(ctx context.Context, sel sources.Selector) ([]core.Record, error) {
	var f sources.Fetcher
	switch sel {
	case sources.SelectorLive:
		f = r.Live
	case sources.SelectorSimulated:
		f = r.Simulated
	}
	if f == nil {
		return nil, fmt.Errorf("%w: no %s backend configured", sources.ErrFetch, sel)
	}
	return f.FetchRecords(ctx)
}
