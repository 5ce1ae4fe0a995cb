package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/config"
	"facturas/internal/repository"
	"facturas/internal/sources"
	"facturas/internal/sources/fixture"
	"facturas/internal/sources/remote"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataStore:     "memory",
		LiveSource:    "http",
		RemoteBaseURL: "https://api.example.com",
		RemoteTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, MemoryStore, cfg.Store)
	assert.Equal(t, LiveHTTP, cfg.Live)

	_, err = FromAppConfig(&config.Config{DataStore: "postgres", LiveSource: "none"})
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory no live", Config{Store: MemoryStore, Live: LiveNone}, false},
		{"sqlite without path", Config{Store: SQLiteStore, Live: LiveNone}, true},
		{"bad store", Config{Store: "x", Live: LiveNone}, true},
		{"bad live", Config{Store: MemoryStore, Live: "x"}, true},
		{"http without url", Config{Store: MemoryStore, Live: LiveHTTP}, true},
		{"sheets without credentials", Config{Store: MemoryStore, Live: LiveSheets, GoogleSpreadsheetID: "s"}, true},
		{"sheets ok", Config{Store: MemoryStore, Live: LiveSheets, GoogleSpreadsheetID: "s", GoogleCredentialsJSON: "{}"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateBackend_MemoryWithFixture(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Store: MemoryStore, Live: LiveNone})
	require.NoError(t, err)
	defer res.Close()

	assert.IsType(t, &remote.Router{}, res.Remote)
	assert.IsType(t, &fixture.Source{}, res.Details)

	repo := repository.New(res.Remote, res.Store, nil)

	// simulated source is served from the embedded fixture
	sim, err := repo.Refresh(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, repository.OriginRemote, sim.Origin)
	assert.NotEmpty(t, sim.Records)

	// no live source configured: falls back to what the simulated run cached
	live, err := repo.Refresh(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, repository.OriginCache, live.Origin)
	assert.ErrorIs(t, live.FetchErr, sources.ErrFetch)
	assert.Len(t, live.Records, len(sim.Records))
}

func TestCreateBackend_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "facturas.db")

	res, err := NewFactory(nil).CreateBackend(ctx, Config{Store: SQLiteStore, SQLiteDBPath: path, Live: LiveNone})
	require.NoError(t, err)

	_, err = repository.New(res.Remote, res.Store, nil).Refresh(ctx, true)
	require.NoError(t, err)
	require.NoError(t, res.Close())

	reopened, err := NewFactory(nil).CreateBackend(ctx, Config{Store: SQLiteStore, SQLiteDBPath: path, Live: LiveNone})
	require.NoError(t, err)
	defer reopened.Close()

	cached, err := repository.New(reopened.Remote, reopened.Store, nil).Cached(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, cached)
}

func TestCreateBackend_HTTPLiveServesDetails(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Store:         MemoryStore,
		Live:          LiveHTTP,
		RemoteBaseURL: "http://127.0.0.1:1",
	})
	require.NoError(t, err)
	assert.IsType(t, &remote.Client{}, res.Details)
}

func TestCreateBackend_InvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Store: "nope"})
	assert.Error(t, err)
}
