// Package google reads billing records from a Google Sheets spreadsheet.
// The sheet holds one record per row: ID, status, date (dd/mm/yyyy) and
// amount, with an optional header row.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"facturas/internal/core"
	"facturas/internal/sources"
)

const defaultSheetName = "Facturas"

var ErrNotConfigured = errors.New("sheets source not configured")

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Config selects the spreadsheet and its credentials. Service account
// credentials win over a user OAuth token; CredentialsJSON wins over
// CredentialsFile. Options are appended to the service options and let
// tests point the client at a local server.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	// OAuthClientJSON (or OAuthClientFile) and OAuthTokenFile use a token
	// saved by `facturas sheets-auth` instead of a service account.
	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenFile  string
	Options         []goption.ClientOption
}

var _ sources.Fetcher = (*Client)(nil)

func (c Config) hasOAuth() bool {
	hasClient := strings.TrimSpace(c.OAuthClientJSON) != "" || strings.TrimSpace(c.OAuthClientFile) != ""
	return hasClient && strings.TrimSpace(c.OAuthTokenFile) != ""
}

// New creates a Sheets-backed record source.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, fmt.Errorf("%w: missing spreadsheet id", ErrNotConfigured)
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = defaultSheetName
	}

	opts, err := credentialOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, cfg.Options...)

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheet}, nil
}

// credentialOptions resolves service account credentials. With none
// configured the caller must supply auth through cfg.Options.
func credentialOptions(ctx context.Context, cfg Config) ([]goption.ClientOption, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)

	var credentialsJSON []byte
	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(inline)
	case file != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", file)
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = raw
	case cfg.hasOAuth():
		slog.DebugContext(ctx, "Using saved OAuth token", "path", cfg.OAuthTokenFile)
		clientJSON, err := ReadClientSecret(cfg.OAuthClientJSON, cfg.OAuthClientFile)
		if err != nil {
			return nil, err
		}
		ts, err := oauthTokenSource(ctx, clientJSON, cfg.OAuthTokenFile)
		if err != nil {
			return nil, err
		}
		return []goption.ClientOption{goption.WithTokenSource(ts)}, nil
	default:
		if len(cfg.Options) == 0 {
			return nil, fmt.Errorf("%w: missing credentials", ErrNotConfigured)
		}
		return nil, nil
	}

	return []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope),
	}, nil
}

// FetchRecords reads columns A:D of the configured sheet in one request.
// Amounts are requested unformatted so numeric cells arrive as numbers;
// dates keep their displayed text.
func (c *Client) FetchRecords(ctx context.Context) ([]core.Record, error) {
	if c.svc == nil {
		return nil, fmt.Errorf("%w: sheets service not initialized", sources.ErrFetch)
	}
	rng := fmt.Sprintf("%s!A:D", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", sources.ErrFetch, rng, err)
	}
	return parseRows(resp.Values)
}
