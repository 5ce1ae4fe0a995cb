// Package remote implements the HTTP JSON record source and the selector
// router that picks between live and simulated backends.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"facturas/internal/core"
	"facturas/internal/log"
	"facturas/internal/sources"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultRecordsPath = "/facturas"
	defaultDetailsPath = "/detalles"
	maxBodyBytes       = 8 << 20
)

var ErrNotConfigured = errors.New("remote client not configured")

// Client fetches record batches from an HTTP JSON endpoint.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	recordsPath string
	detailsPath string
}

// ClientConfig configures the client.
type ClientConfig struct {
	BaseURL string
	// RecordsPath and DetailsPath default to /facturas and /detalles.
	RecordsPath string
	DetailsPath string
	// HTTPClient is optional; tests pass the httptest client.
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *log.Logger
}

var (
	_ sources.Fetcher        = (*Client)(nil)
	_ sources.DetailsFetcher = (*Client)(nil)
)

func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrNotConfigured
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	traced := *httpClient
	traced.Transport = newTracingTransport(httpClient.Transport, cfg.Logger)

	c := &Client{
		httpClient:  &traced,
		baseURL:     base,
		recordsPath: cfg.RecordsPath,
		detailsPath: cfg.DetailsPath,
	}
	if c.recordsPath == "" {
		c.recordsPath = defaultRecordsPath
	}
	if c.detailsPath == "" {
		c.detailsPath = defaultDetailsPath
	}
	return c, nil
}

// FetchRecords performs one GET against the records endpoint.
func (c *Client) FetchRecords(ctx context.Context) ([]core.Record, error) {
	body, err := c.get(ctx, c.recordsPath)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return sources.DecodeBatch(io.LimitReader(body, maxBodyBytes))
}

// FetchDetails performs one GET against the installation details endpoint.
func (c *Client) FetchDetails(ctx context.Context) ([]core.InstallationDetails, error) {
	body, err := c.get(ctx, c.detailsPath)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return sources.DecodeDetails(io.LimitReader(body, maxBodyBytes))
}

func (c *Client) get(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", sources.ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sources.ErrFetch, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s returned status %d", sources.ErrFetch, path, resp.StatusCode)
	}
	return resp.Body, nil
}
