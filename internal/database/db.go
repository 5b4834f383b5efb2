// Package database is the persistence layer. It exposes a thin Queries type
// over a pgx connection, pool or transaction, mirroring the shape of
// generated query packages so callers stay agnostic of which they hold.
package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx behavior the queries need. *pgxpool.Pool,
// *pgx.Conn and pgx.Tx all satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// New wraps a connection-like value in a Queries.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries bundles all SQL access. Methods are safe for concurrent use when
// the underlying DBTX is (pools are, transactions are not).
type Queries struct {
	db DBTX
}

// WithTx returns a Queries bound to an open transaction.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}
