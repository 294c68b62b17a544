package pg

import (
	"context"
	"errors"

	"uow-coordinator/internal/domain"

	"github.com/jackc/pgx/v5"
)

// RecordStore reads records outside of any unit of work.
type RecordStore struct{ db *DB }

func NewRecordStore(db *DB) *RecordStore { return &RecordStore{db: db} }

func (s *RecordStore) Get(ctx context.Context, id int64) (domain.Record, error) {
	const q = `SELECT id, name FROM records WHERE id=$1`
	var out domain.Record
	err := s.db.Pool.QueryRow(ctx, q, id).Scan(&out.ID, &out.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Record{}, err
	}
	return out, nil
}

func (s *RecordStore) List(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT id, name FROM records ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Record, error) {
		var r domain.Record
		err := row.Scan(&r.ID, &r.Name)
		return r, err
	})
}

func (s *RecordStore) Truncate(ctx context.Context) error {
	_, err := s.db.Pool.Exec(ctx, `TRUNCATE records`)
	return err
}
