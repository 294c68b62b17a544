package uow

import (
	"context"
	"errors"
	"maps"
)

var (
	errBackend   = errors.New("backend down")
	errDuplicate = errors.New("duplicate key")
	errMissing   = errors.New("row missing")
)

// fakeTx works on a private copy of the committed rows, so writes made
// through it are visible to later operations of the same transaction only.
type fakeTx struct {
	rows   map[int64]string
	closed bool
}

type fakeBackend struct {
	rows map[int64]string

	beginErr    error
	commitErr   error
	rollbackErr error

	begins, commits, rollbacks int
}

func newFakeBackend(rows map[int64]string) *fakeBackend {
	if rows == nil {
		rows = map[int64]string{}
	}
	return &fakeBackend{rows: rows}
}

func (b *fakeBackend) Begin(context.Context) (*fakeTx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	b.begins++
	return &fakeTx{rows: maps.Clone(b.rows)}, nil
}

func (b *fakeBackend) Commit(_ context.Context, tx *fakeTx) error {
	if b.commitErr != nil {
		return b.commitErr
	}
	b.commits++
	tx.closed = true
	b.rows = tx.rows
	return nil
}

func (b *fakeBackend) Rollback(_ context.Context, tx *fakeTx) error {
	b.rollbacks++
	tx.closed = true
	return b.rollbackErr
}

type fakeRecord struct {
	id   int64
	name string

	failOn OpKind
	calls  int
}

var _ Object[*fakeTx] = (*fakeRecord)(nil)

func (r *fakeRecord) PersistCreate(_ context.Context, tx *fakeTx) error {
	r.calls++
	if r.failOn == OpCreate {
		return errBackend
	}
	if _, ok := tx.rows[r.id]; ok {
		return errDuplicate
	}
	tx.rows[r.id] = r.name
	return nil
}

func (r *fakeRecord) PersistUpdate(_ context.Context, tx *fakeTx) error {
	r.calls++
	if r.failOn == OpUpdate {
		return errBackend
	}
	if _, ok := tx.rows[r.id]; !ok {
		return errMissing
	}
	tx.rows[r.id] = r.name
	return nil
}

func (r *fakeRecord) PersistDelete(_ context.Context, tx *fakeTx) error {
	r.calls++
	if r.failOn == OpDelete {
		return errBackend
	}
	delete(tx.rows, r.id)
	return nil
}

type observation struct {
	name    string
	mode    Mode
	outcome Outcome
	ops     int
}

type fakeRecorder struct{ seen []observation }

func (f *fakeRecorder) ObserveUnit(name string, mode Mode, outcome Outcome, ops int) {
	f.seen = append(f.seen, observation{name: name, mode: mode, outcome: outcome, ops: ops})
}
