package backend

import (
	"context"
	"fmt"

	"facturas/internal/log"
	"facturas/internal/sources"
	"facturas/internal/sources/fixture"
	gsheet "facturas/internal/sources/google"
	"facturas/internal/sources/remote"
	"facturas/internal/storage"
	"facturas/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Nop()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	simulated := fixture.New(config.FixturePath)
	live, details, err := f.createLive(ctx, config)
	if err != nil {
		return nil, err
	}
	if details == nil {
		details = simulated
	}

	store, cleanup, err := f.createStore(ctx, config)
	if err != nil {
		return nil, err
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		"store", config.Store.String(),
		"live_source", config.Live.String(),
		"fixture_override", config.FixturePath != "")

	return &BackendResult{
		Store:   store,
		Remote:  remote.NewRouter(live, simulated),
		Details: details,
		Cleanup: cleanup,
	}, nil
}

func (f *DefaultFactory) createStore(ctx context.Context, config Config) (sources.DataStore, CleanupFunc, error) {
	switch config.Store {
	case SQLiteStore:
		s, err := storage.NewSQLiteStore(ctx, config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite store", "db_path", config.SQLiteDBPath)
		return s, s.Close, nil
	case MemoryStore:
		return memory.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store type: %s", config.Store)
	}
}

// createLive builds the live record fetcher and, when the live backend
// serves them, the details fetcher.
func (f *DefaultFactory) createLive(ctx context.Context, config Config) (sources.Fetcher, sources.DetailsFetcher, error) {
	switch config.Live {
	case LiveHTTP:
		c, err := remote.NewClient(remote.ClientConfig{
			BaseURL: config.RemoteBaseURL,
			Timeout: config.RemoteTimeout,
			Logger:  f.logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize remote client: %w", err)
		}
		return c, c, nil
	case LiveSheets:
		c, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleCredentialsJSON,
			CredentialsFile: config.GoogleCredentialsFile,
			OAuthClientJSON: config.GoogleOAuthClientJSON,
			OAuthClientFile: config.GoogleOAuthClientFile,
			OAuthTokenFile:  config.GoogleOAuthTokenFile,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		return c, nil, nil
	default:
		return nil, nil, nil
	}
}
