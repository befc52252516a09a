package store

import (
	"context"
	"database/sql"
)

// DBTX is the query surface the stores run against. Both *sql.DB and *sql.Tx
// satisfy it, so the same store code serves direct reads and the coordinator's
// transactional writes; WithTx swaps one for the other.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
