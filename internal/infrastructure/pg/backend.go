package pg

import (
	"context"
	"errors"

	"uow-coordinator/internal/uow"

	"github.com/jackc/pgx/v5"
)

var _ uow.Backend[pgx.Tx] = (*Backend)(nil)

// Backend hands out pgx transactions from the pool.
type Backend struct {
	db   *DB
	opts pgx.TxOptions
}

func NewBackend(db *DB, opts pgx.TxOptions) *Backend {
	return &Backend{db: db, opts: opts}
}

func (b *Backend) Begin(ctx context.Context) (pgx.Tx, error) {
	return b.db.Pool.BeginTx(ctx, b.opts)
}

func (b *Backend) Commit(ctx context.Context, tx pgx.Tx) error { return tx.Commit(ctx) }

// Rollback after a failed Commit finds the tx already closed; that is not an error.
func (b *Backend) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
