package pg

import (
	"context"
	"errors"
	"fmt"

	"uow-coordinator/internal/domain"
	"uow-coordinator/internal/infrastructure/logx"
	"uow-coordinator/internal/uow"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

var _ uow.Object[pgx.Tx] = (*RecordEntity)(nil)

// RecordEntity persists a domain.Record into the records table.
type RecordEntity struct {
	Record domain.Record
}

func NewRecordEntity(r domain.Record) uow.Object[pgx.Tx] { return &RecordEntity{Record: r} }

func (e *RecordEntity) PersistCreate(ctx context.Context, tx pgx.Tx) error {
	const ins = `INSERT INTO records(id, name) VALUES ($1, $2)`
	_, err := e.exec(ctx, tx, "PersistCreate", ins, e.Record.ID, e.Record.Name)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, err)
	}
	return err
}

func (e *RecordEntity) PersistUpdate(ctx context.Context, tx pgx.Tx) error {
	const up = `UPDATE records SET name=$2 WHERE id=$1`
	n, err := e.exec(ctx, tx, "PersistUpdate", up, e.Record.ID, e.Record.Name)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (e *RecordEntity) PersistDelete(ctx context.Context, tx pgx.Tx) error {
	const del = `DELETE FROM records WHERE id=$1`
	_, err := e.exec(ctx, tx, "PersistDelete", del, e.Record.ID)
	return err
}

func (e *RecordEntity) exec(ctx context.Context, tx pgx.Tx, op, sql string, args ...any) (int64, error) {
	log := logx.L().With(
		zap.String("entity", "record"),
		zap.String("operation", op),
		zap.String("sql", sql),
		zap.Int64("id", e.Record.ID),
	)
	log.Debug("sql.exec_start")
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return 0, err
	}
	log.Debug("sql.exec_success", zap.Int64("rows_affected", tag.RowsAffected()))
	return tag.RowsAffected(), nil
}
