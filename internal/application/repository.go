package application

import (
	"context"

	"uow-coordinator/internal/domain"
	"uow-coordinator/internal/uow"
)

// EntityFactory wraps a plain record into the backend adapter that knows
// how to persist it.
type EntityFactory[Tx any] func(domain.Record) uow.Object[Tx]

var _ RecordWriter = (*RecordRepository[any])(nil)

// RecordRepository marks records on its coordinator: immediately applied
// outside BeginWork, queued until CommitWork inside it.
type RecordRepository[Tx any] struct {
	*uow.Uow[Tx]
	newEntity EntityFactory[Tx]
}

func NewRecordRepository[Tx any](u *uow.Uow[Tx], newEntity EntityFactory[Tx]) *RecordRepository[Tx] {
	return &RecordRepository[Tx]{Uow: u, newEntity: newEntity}
}

func (r *RecordRepository[Tx]) Create(ctx context.Context, rec domain.Record) error {
	return r.MarkCreate(ctx, r.newEntity(rec))
}

func (r *RecordRepository[Tx]) Update(ctx context.Context, rec domain.Record) error {
	return r.MarkUpdate(ctx, r.newEntity(rec))
}

func (r *RecordRepository[Tx]) Delete(ctx context.Context, rec domain.Record) error {
	return r.MarkDelete(ctx, r.newEntity(rec))
}
