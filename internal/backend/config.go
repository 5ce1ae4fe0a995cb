package backend

import (
	"fmt"
	"time"

	"facturas/internal/config"
)

// StoreType selects the local cache implementation.
type StoreType string

const (
	SQLiteStore StoreType = "sqlite"
	MemoryStore StoreType = "memory"
)

func (t StoreType) String() string {
	return string(t)
}

func (t StoreType) IsValid() bool {
	switch t {
	case SQLiteStore, MemoryStore:
		return true
	default:
		return false
	}
}

// LiveType selects the live remote source. The simulated source is always
// the embedded fixture.
type LiveType string

const (
	LiveNone   LiveType = "none"
	LiveHTTP   LiveType = "http"
	LiveSheets LiveType = "sheets"
)

func (t LiveType) String() string {
	return string(t)
}

func (t LiveType) IsValid() bool {
	switch t {
	case LiveNone, LiveHTTP, LiveSheets:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation
type Config struct {
	Store        StoreType
	SQLiteDBPath string

	Live          LiveType
	RemoteBaseURL string
	RemoteTimeout time.Duration
	FixturePath   string

	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string
	GoogleOAuthClientJSON string
	GoogleOAuthClientFile string
	GoogleOAuthTokenFile  string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Store:        StoreType(appConfig.DataStore),
		SQLiteDBPath: appConfig.SQLiteDBPath,

		Live:          LiveType(appConfig.LiveSource),
		RemoteBaseURL: appConfig.RemoteBaseURL,
		RemoteTimeout: appConfig.RemoteTimeout,
		FixturePath:   appConfig.FixturePath,

		GoogleSpreadsheetID:   appConfig.GoogleSpreadsheetID,
		GoogleSheetName:       appConfig.GoogleSheetName,
		GoogleCredentialsFile: appConfig.GoogleCredentialsFile,
		GoogleCredentialsJSON: appConfig.GoogleCredentialsJSON,
		GoogleOAuthClientJSON: appConfig.GoogleOAuthClientJSON,
		GoogleOAuthClientFile: appConfig.GoogleOAuthClientFile,
		GoogleOAuthTokenFile:  appConfig.GoogleOAuthTokenFile,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Store.IsValid() {
		return fmt.Errorf("invalid store type: %s", c.Store)
	}
	if !c.Live.IsValid() {
		return fmt.Errorf("invalid live source type: %s", c.Live)
	}
	if c.Store == SQLiteStore && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite store")
	}

	switch c.Live {
	case LiveHTTP:
		if c.RemoteBaseURL == "" {
			return fmt.Errorf("remote base URL is required for http live source")
		}
	case LiveSheets:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets live source")
		}
		hasOAuth := (c.GoogleOAuthClientJSON != "" || c.GoogleOAuthClientFile != "") && c.GoogleOAuthTokenFile != ""
		if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" && !hasOAuth {
			return fmt.Errorf("either GoogleCredentialsFile, GoogleCredentialsJSON or a saved OAuth token must be provided for sheets live source")
		}
	}

	return nil
}
