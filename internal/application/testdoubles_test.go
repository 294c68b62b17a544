package application

import (
	"context"
	"errors"
	"maps"
	"slices"

	"uow-coordinator/internal/domain"
	"uow-coordinator/internal/uow"
)

var (
	ErrRepo = errors.New("repo error")
)

type memTx struct{ rows map[int64]string }

// memBackend is a transactional map: a tx works on a copy that replaces
// the committed rows on Commit.
type memBackend struct {
	rows     map[int64]string
	failIDs  map[int64]bool
	beginErr error
	commits  int
}

func newMemBackend(seed ...domain.Record) *memBackend {
	b := &memBackend{rows: map[int64]string{}, failIDs: map[int64]bool{}}
	for _, r := range seed {
		b.rows[r.ID] = r.Name
	}
	return b
}

func (b *memBackend) Begin(context.Context) (*memTx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return &memTx{rows: maps.Clone(b.rows)}, nil
}

func (b *memBackend) Commit(_ context.Context, tx *memTx) error {
	b.rows = tx.rows
	b.commits++
	return nil
}

func (b *memBackend) Rollback(context.Context, *memTx) error { return nil }

func (b *memBackend) Get(_ context.Context, id int64) (domain.Record, error) {
	name, ok := b.rows[id]
	if !ok {
		return domain.Record{}, ErrNotFound
	}
	return domain.Record{ID: id, Name: name}, nil
}

func (b *memBackend) List(context.Context) ([]domain.Record, error) {
	ids := slices.Sorted(maps.Keys(b.rows))
	out := make([]domain.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Record{ID: id, Name: b.rows[id]})
	}
	return out, nil
}

func (b *memBackend) entity(r domain.Record) uow.Object[*memTx] {
	return &memEntity{rec: r, fail: b.failIDs[r.ID]}
}

func (b *memBackend) writerFactory() func() RecordWriter {
	return func() RecordWriter {
		return NewRecordRepository[*memTx](uow.New[*memTx](b), b.entity)
	}
}

type memEntity struct {
	rec  domain.Record
	fail bool
}

func (e *memEntity) PersistCreate(_ context.Context, tx *memTx) error {
	if e.fail {
		return ErrRepo
	}
	if _, ok := tx.rows[e.rec.ID]; ok {
		return domain.ErrAlreadyExists
	}
	tx.rows[e.rec.ID] = e.rec.Name
	return nil
}

func (e *memEntity) PersistUpdate(_ context.Context, tx *memTx) error {
	if e.fail {
		return ErrRepo
	}
	if _, ok := tx.rows[e.rec.ID]; !ok {
		return ErrNotFound
	}
	tx.rows[e.rec.ID] = e.rec.Name
	return nil
}

func (e *memEntity) PersistDelete(_ context.Context, tx *memTx) error {
	if e.fail {
		return ErrRepo
	}
	delete(tx.rows, e.rec.ID)
	return nil
}

type fakeIdempotency struct {
	keys     map[string]bool
	err      error
	released []string
}

func (f *fakeIdempotency) TryReserve(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.keys == nil {
		f.keys = map[string]bool{}
	}
	if f.keys[key] {
		return false, nil
	}
	f.keys[key] = true
	return true, nil
}

func (f *fakeIdempotency) Release(_ context.Context, key string) error {
	delete(f.keys, key)
	f.released = append(f.released, key)
	return nil
}
