// Package fixture serves the simulated backend: a static record batch and
// installation details embedded in the binary, optionally replaced by a
// file on disk.
package fixture

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"os"

	"facturas/internal/core"
	"facturas/internal/sources"
)

//go:embed data/*.json
var embedded embed.FS

const (
	recordsFile = "data/facturas.json"
	detailsFile = "data/detalles.json"
)

// Source reads the simulated documents on every call so edits to an
// override file are picked up without a restart.
type Source struct {
	recordsPath string
}

var (
	_ sources.Fetcher        = (*Source)(nil)
	_ sources.DetailsFetcher = (*Source)(nil)
)

// New returns the simulated source. When recordsPath is non-empty that file
// is served instead of the embedded batch.
func New(recordsPath string) *Source {
	return &Source{recordsPath: recordsPath}
}

func (s *Source) FetchRecords(ctx context.Context) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", sources.ErrFetch, err)
	}
	r, err := s.open()
	if err != nil {
		return nil, err
	}
	return sources.DecodeBatch(r)
}

func (s *Source) FetchDetails(ctx context.Context) ([]core.InstallationDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", sources.ErrFetch, err)
	}
	raw, err := embedded.ReadFile(detailsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sources.ErrFetch, err)
	}
	return sources.DecodeDetails(bytes.NewReader(raw))
}

func (s *Source) open() (io.Reader, error) {
	if s.recordsPath == "" {
		raw, err := embedded.ReadFile(recordsFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", sources.ErrFetch, err)
		}
		return bytes.NewReader(raw), nil
	}
	raw, err := os.ReadFile(s.recordsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read fixture %s: %v", sources.ErrFetch, s.recordsPath, err)
	}
	return bytes.NewReader(raw), nil
}
