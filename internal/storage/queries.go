package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Factura is a row of the facturas table.
type Factura struct {
	Position  int64
	ID        string
	Status    string
	IssueDate string
	Amount    string
	StoredAt  string
}

const deleteAllFacturas = `DELETE FROM facturas`

func (q *Queries) DeleteAllFacturas(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllFacturas)
	return err
}

const insertFactura = `INSERT INTO facturas (position, id, status, issue_date, amount, stored_at)
VALUES (?, ?, ?, ?, ?, ?)`

type InsertFacturaParams struct {
	Position  int64
	ID        string
	Status    string
	IssueDate string
	Amount    string
	StoredAt  string
}

func (q *Queries) InsertFactura(ctx context.Context, arg InsertFacturaParams) error {
	_, err := q.db.ExecContext(ctx, insertFactura,
		arg.Position,
		arg.ID,
		arg.Status,
		arg.IssueDate,
		arg.Amount,
		arg.StoredAt,
	)
	return err
}

const listFacturas = `SELECT position, id, status, issue_date, amount, stored_at
FROM facturas
ORDER BY position`

func (q *Queries) ListFacturas(ctx context.Context) ([]Factura, error) {
	rows, err := q.db.QueryContext(ctx, listFacturas)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Factura
	for rows.Next() {
		var i Factura
		if err := rows.Scan(
			&i.Position,
			&i.ID,
			&i.Status,
			&i.IssueDate,
			&i.Amount,
			&i.StoredAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countFacturas = `SELECT COUNT(*) FROM facturas`

func (q *Queries) CountFacturas(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countFacturas)
	var count int64
	err := row.Scan(&count)
	return count, err
}
