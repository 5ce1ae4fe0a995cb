package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"facturas/internal/core"
)

var (
	// ErrFetch covers transport failures, timeouts and non-success responses.
	ErrFetch = errors.New("remote fetch failed")
	// ErrMalformedPayload is returned when a response cannot be decoded
	// into a valid record batch.
	ErrMalformedPayload = errors.New("malformed payload")
)

// Selector picks which remote configuration serves a fetch.
type Selector int

const (
	SelectorLive Selector = iota
	SelectorSimulated
)

func (s Selector) String() string {
	switch s {
	case SelectorLive:
		return "live"
	case SelectorSimulated:
		return "simulated"
	default:
		return fmt.Sprintf("selector(%d)", int(s))
	}
}

// SelectorFor maps the fallback-source flag used by callers to a Selector.
func SelectorFor(useFallbackSource bool) Selector {
	if useFallbackSource {
		return SelectorSimulated
	}
	return SelectorLive
}

// Ports for outbound adapters.
type (
	// DataStore is the local record cache.
	DataStore interface {
		// ReplaceAll atomically clears the store and inserts records.
		ReplaceAll(ctx context.Context, records []core.Record) error
		// ReadAll returns the stored records in insertion order.
		ReadAll(ctx context.Context) ([]core.Record, error)
		// Observe emits the store contents after every ReplaceAll. New
		// subscribers receive the current contents first.
		Observe() (<-chan []core.Record, func())
	}

	// RemoteSource fetches a record batch. One round trip per call.
	RemoteSource interface {
		Fetch(ctx context.Context, sel Selector) ([]core.Record, error)
	}

	// Fetcher is a single remote backend, before selector routing.
	Fetcher interface {
		FetchRecords(ctx context.Context) ([]core.Record, error)
	}

	// DetailsFetcher returns the installation details of the account.
	DetailsFetcher interface {
		FetchDetails(ctx context.Context) ([]core.InstallationDetails, error)
	}
)

type batch struct {
	Records *[]core.Record `json:"records"`
}

// DecodeBatch reads a {"records":[...]} document and validates every record.
// Any decoding or validation problem is reported as ErrMalformedPayload.
func DecodeBatch(r io.Reader) ([]core.Record, error) {
	var b batch
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if b.Records == nil {
		return nil, fmt.Errorf("%w: missing records", ErrMalformedPayload)
	}
	records := *b.Records
	if records == nil {
		records = []core.Record{}
	}
	if err := core.ValidateBatch(records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return records, nil
}

// EncodeBatch writes records in the shape DecodeBatch reads.
func EncodeBatch(w io.Writer, records []core.Record) error {
	if records == nil {
		records = []core.Record{}
	}
	return json.NewEncoder(w).Encode(batch{Records: &records})
}

type detailsDocument struct {
	Details *[]core.InstallationDetails `json:"details"`
}

// DecodeDetails reads a {"details":[...]} document.
func DecodeDetails(r io.Reader) ([]core.InstallationDetails, error) {
	var doc detailsDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if doc.Details == nil {
		return nil, fmt.Errorf("%w: missing details", ErrMalformedPayload)
	}
	out := make([]core.InstallationDetails, 0, len(*doc.Details))
	for i, d := range *doc.Details {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%w: details at index %d: %v", ErrMalformedPayload, i, err)
		}
		out = append(out, d)
	}
	return out, nil
}
