package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/core"
	"facturas/internal/sources"
)

func newServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "  "})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFetchRecords_Success(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"records":[{"id":"1","status":"Pagada","date":"01/01/2024","amount":50}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL + "/", HTTPClient: srv.Client()})
	require.NoError(t, err)

	got, err := c.FetchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.StatusPaid, got[0].Status)
	assert.Equal(t, "/facturas", gotPath)
}

func TestFetchRecords_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{}`, sources.ErrFetch},
		{"not found", http.StatusNotFound, ``, sources.ErrFetch},
		{"malformed body", http.StatusOK, `{"records":`, sources.ErrMalformedPayload},
		{"invalid record", http.StatusOK, `{"records":[{"id":"1","status":"x","amount":1}]}`, sources.ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, hits := newServer(t, tt.status, tt.body)
			c, err := NewClient(ClientConfig{BaseURL: srv.URL, HTTPClient: srv.Client()})
			require.NoError(t, err)

			_, err = c.FetchRecords(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, int32(1), atomic.LoadInt32(hits), "exactly one round trip")
		})
	}
}

func TestFetchRecords_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.FetchRecords(context.Background())
	assert.ErrorIs(t, err, sources.ErrFetch)
}

func TestFetchDetails(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"details":[{"cau":"ES001","request_status":"ok","self_consumption_type":"t","compensation":"c","power":"5kWp"}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL, DetailsPath: "/v1/details", HTTPClient: srv.Client()})
	require.NoError(t, err)

	got, err := c.FetchDetails(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ES001", got[0].CAU)
	assert.Equal(t, "/v1/details", gotPath)
}

type stubFetcher struct {
	records []core.Record
	err     error
	calls   int
}

func (s *stubFetcher) FetchRecords(context.Context) ([]core.Record, error) {
	s.calls++
	return s.records, s.err
}

func TestRouter_RoutesBySelector(t *testing.T) {
	live := &stubFetcher{records: []core.Record{{ID: "live"}}}
	sim := &stubFetcher{records: []core.Record{{ID: "sim"}}}
	r := NewRouter(live, sim)

	got, err := r.Fetch(context.Background(), sources.SelectorLive)
	require.NoError(t, err)
	assert.Equal(t, "live", got[0].ID)

	got, err = r.Fetch(context.Background(), sources.SelectorSimulated)
	require.NoError(t, err)
	assert.Equal(t, "sim", got[0].ID)

	assert.Equal(t, 1, live.calls)
	assert.Equal(t, 1, sim.calls)
}

func TestRouter_MissingBackend(t *testing.T) {
	r := NewRouter(nil, &stubFetcher{})
	_, err := r.Fetch(context.Background(), sources.SelectorLive)
	assert.ErrorIs(t, err, sources.ErrFetch)
}
