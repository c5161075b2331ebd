package store

import (
	"context"
	"database/sql"

	"github.com/jonboulle/clockwork"
)

// DBTX is the session handle a Store operates over. Both *sql.DB and *sql.Tx
// satisfy it, so callers decide the transaction boundary; the store never
// opens or closes transactions itself.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db    DBTX
	clock clockwork.Clock
}

func New(db DBTX) *Store {
	return &Store{db: db, clock: clockwork.NewRealClock()}
}

// NewWithClock is for tests that need deterministic created/updated stamps.
func NewWithClock(db DBTX, clock clockwork.Clock) *Store {
	return &Store{db: db, clock: clock}
}
