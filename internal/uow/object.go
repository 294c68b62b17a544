package uow

import "context"

// Object is implemented by every entity that takes part in a unit of work.
// Each method must run inside tx and must not commit or roll it back.
type Object[Tx any] interface {
	PersistCreate(ctx context.Context, tx Tx) error
	PersistUpdate(ctx context.Context, tx Tx) error
	PersistDelete(ctx context.Context, tx Tx) error
}

// Backend supplies transaction handles for one storage technology.
// Rollback is best effort: the coordinator logs its failures and moves on.
type Backend[Tx any] interface {
	Begin(ctx context.Context) (Tx, error)
	Commit(ctx context.Context, tx Tx) error
	Rollback(ctx context.Context, tx Tx) error
}

type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

func (k OpKind) String() string { return string(k) }

type pendingOp[Tx any] struct {
	kind OpKind
	obj  Object[Tx]
}

func (op pendingOp[Tx]) apply(ctx context.Context, tx Tx) error {
	return persist(ctx, op.kind, op.obj, tx)
}

func persist[Tx any](ctx context.Context, kind OpKind, obj Object[Tx], tx Tx) error {
	var err error
	switch kind {
	case OpCreate:
		err = obj.PersistCreate(ctx, tx)
	case OpUpdate:
		err = obj.PersistUpdate(ctx, tx)
	case OpDelete:
		err = obj.PersistDelete(ctx, tx)
	}
	if err != nil {
		return &PersistError{Kind: kind, Object: obj, Err: err}
	}
	return nil
}
