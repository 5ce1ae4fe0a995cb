package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"facturas/internal/broadcast"
	"facturas/internal/core"
	"facturas/internal/log"
	"facturas/internal/sources"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the durable record cache. Amounts are stored as decimal
// text and row order is kept in the position column.
type SQLiteStore struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
	updates *broadcast.Broadcaster[[]core.Record]
}

var _ sources.DataStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// migrates it.
func NewSQLiteStore(ctx context.Context, dbPath string, logger *log.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = log.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer; avoids SQLITE_BUSY between the replace transaction and readers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(log.ComponentStorage),
	}

	current, err := s.ReadAll(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.updates = broadcast.NewWithValue(current)

	return s, nil
}

func (s *SQLiteStore) Close() error {
	if s.updates != nil {
		s.updates.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ReplaceAll deletes every row and inserts records in one transaction.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, records []core.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := s.queries.WithTx(tx)
	if err := q.DeleteAllFacturas(ctx); err != nil {
		return fmt.Errorf("clear facturas: %w", err)
	}

	storedAt := time.Now().UTC().Format(time.RFC3339)
	for i, r := range records {
		err := q.InsertFactura(ctx, InsertFacturaParams{
			Position:  int64(i),
			ID:        r.ID,
			Status:    string(r.Status),
			IssueDate: r.Date,
			Amount:    r.Amount.String(),
			StoredAt:  storedAt,
		})
		if err != nil {
			return fmt.Errorf("insert factura %q: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.DebugContext(ctx, "Replaced cached records",
		log.FieldOperation, log.OpReplace,
		log.FieldRecords, len(records))

	s.updates.Publish(append(make([]core.Record, 0, len(records)), records...))
	return nil
}

// ReadAll returns the cached records in the order they were stored.
func (s *SQLiteStore) ReadAll(ctx context.Context) ([]core.Record, error) {
	rows, err := s.queries.ListFacturas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list facturas: %w", err)
	}

	out := make([]core.Record, 0, len(rows))
	for _, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("decode amount of factura %q: %w", row.ID, err)
		}
		out = append(out, core.Record{
			ID:     row.ID,
			Status: core.Status(row.Status),
			Date:   row.IssueDate,
			Amount: amount,
		})
	}
	return out, nil
}

// Observe emits the full contents after every successful ReplaceAll.
func (s *SQLiteStore) Observe() (<-chan []core.Record, func()) {
	return s.updates.Subscribe()
}

// Count returns the number of cached records.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	n, err := s.queries.CountFacturas(ctx)
	if err != nil {
		return 0, fmt.Errorf("count facturas: %w", err)
	}
	return n, nil
}
