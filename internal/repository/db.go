package repository

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database handle methods the repositories use.
// It is satisfied by *sql.DB, *sql.Tx and observability.TraceDB, so the
// same repository code serves plain reads, traced connections, and the
// transaction-scoped mutations the services run.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
