// Package uow coordinates create/update/delete operations against entities
// that can persist themselves inside a backend transaction.
//
// Without an open unit of work every Mark* call runs in its own implicit
// transaction. Between BeginWork and CommitWork the calls are only queued,
// then replayed in order inside a single transaction that is committed when
// every operation succeeds and rolled back otherwise.
//
// A Uow is not safe for concurrent use. Create one per request or session.
package uow

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State int

const (
	StateIdle State = iota
	StateWorking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWorking:
		return "working"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type options struct {
	log      *zap.Logger
	recorder Recorder
	name     string
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.log = l } }
func WithRecorder(r Recorder) Option  { return func(o *options) { o.recorder = r } }
func WithName(name string) Option     { return func(o *options) { o.name = name } }

type Uow[Tx any] struct {
	backend  Backend[Tx]
	log      *zap.Logger
	recorder Recorder
	name     string

	state   State
	tx      Tx
	unitID  string
	pending []pendingOp[Tx]
}

func New[Tx any](backend Backend[Tx], opts ...Option) *Uow[Tx] {
	o := options{name: "default"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.recorder == nil {
		o.recorder = noopRecorder{}
	}
	return &Uow[Tx]{
		backend:  backend,
		log:      o.log.With(zap.String("uow", o.name)),
		recorder: o.recorder,
		name:     o.name,
	}
}

func (u *Uow[Tx]) State() State { return u.state }

// Pending returns the number of operations queued since BeginWork.
func (u *Uow[Tx]) Pending() int { return len(u.pending) }

// BeginWork opens a transaction and switches the coordinator to queueing.
func (u *Uow[Tx]) BeginWork(ctx context.Context) error {
	if u.state == StateWorking {
		return fmt.Errorf("%w: begin work while a unit of work is open", ErrInvalidState)
	}
	tx, err := u.backend.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	u.tx = tx
	u.state = StateWorking
	u.unitID = uuid.NewString()
	u.pending = nil
	u.log.Debug("uow.begin_work", zap.String("unit_id", u.unitID))
	return nil
}

func (u *Uow[Tx]) MarkCreate(ctx context.Context, obj Object[Tx]) error {
	return u.mark(ctx, OpCreate, obj)
}

func (u *Uow[Tx]) MarkUpdate(ctx context.Context, obj Object[Tx]) error {
	return u.mark(ctx, OpUpdate, obj)
}

func (u *Uow[Tx]) MarkDelete(ctx context.Context, obj Object[Tx]) error {
	return u.mark(ctx, OpDelete, obj)
}

// CommitWork replays the queued operations in mark order and commits.
// The first failure stops the replay and rolls the whole batch back.
// The coordinator is idle again when CommitWork returns, whatever the outcome.
func (u *Uow[Tx]) CommitWork(ctx context.Context) error {
	if u.state != StateWorking {
		return fmt.Errorf("%w: commit work without begin work", ErrInvalidState)
	}
	tx, ops := u.tx, u.pending
	log := u.log.With(zap.String("unit_id", u.unitID), zap.Int("ops", len(ops)))
	defer u.reset()

	for i, op := range ops {
		if err := op.apply(ctx, tx); err != nil {
			log.Warn("uow.replay_failed", zap.Int("index", i), zap.Stringer("kind", op.kind), zap.Error(err))
			u.rollback(ctx, log, tx)
			u.recorder.ObserveUnit(u.name, ModeBatch, OutcomeRolledBack, len(ops))
			return err
		}
	}
	if err := u.backend.Commit(ctx, tx); err != nil {
		log.Warn("uow.commit_failed", zap.Error(err))
		u.rollback(ctx, log, tx)
		u.recorder.ObserveUnit(u.name, ModeBatch, OutcomeRolledBack, len(ops))
		return fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}
	log.Debug("uow.commit_work")
	u.recorder.ObserveUnit(u.name, ModeBatch, OutcomeCommitted, len(ops))
	return nil
}

// DiscardWork drops the queued operations and rolls back the open transaction.
func (u *Uow[Tx]) DiscardWork(ctx context.Context) error {
	if u.state != StateWorking {
		return fmt.Errorf("%w: discard work without begin work", ErrInvalidState)
	}
	log := u.log.With(zap.String("unit_id", u.unitID), zap.Int("ops", len(u.pending)))
	tx, n := u.tx, len(u.pending)
	defer u.reset()
	u.rollback(ctx, log, tx)
	u.recorder.ObserveUnit(u.name, ModeBatch, OutcomeRolledBack, n)
	log.Debug("uow.discard_work")
	return nil
}

// Do runs fn as one unit of work: committed when fn returns nil,
// discarded when it returns an error or panics.
func (u *Uow[Tx]) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := u.BeginWork(ctx); err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = u.DiscardWork(ctx)
			panic(p)
		}
	}()
	if err := fn(ctx); err != nil {
		_ = u.DiscardWork(ctx)
		return err
	}
	return u.CommitWork(ctx)
}

func (u *Uow[Tx]) mark(ctx context.Context, kind OpKind, obj Object[Tx]) error {
	if isNil(obj) {
		return ErrNilObject
	}
	if u.state == StateWorking {
		u.pending = append(u.pending, pendingOp[Tx]{kind: kind, obj: obj})
		return nil
	}
	return u.autoCommit(ctx, kind, obj)
}

func (u *Uow[Tx]) autoCommit(ctx context.Context, kind OpKind, obj Object[Tx]) error {
	tx, err := u.backend.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	log := u.log.With(zap.String("mode", string(ModeAuto)), zap.Stringer("kind", kind))
	if err := persist(ctx, kind, obj, tx); err != nil {
		log.Warn("uow.persist_failed", zap.Error(err))
		u.rollback(ctx, log, tx)
		u.recorder.ObserveUnit(u.name, ModeAuto, OutcomeRolledBack, 1)
		return err
	}
	if err := u.backend.Commit(ctx, tx); err != nil {
		log.Warn("uow.commit_failed", zap.Error(err))
		u.rollback(ctx, log, tx)
		u.recorder.ObserveUnit(u.name, ModeAuto, OutcomeRolledBack, 1)
		return fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}
	u.recorder.ObserveUnit(u.name, ModeAuto, OutcomeCommitted, 1)
	return nil
}

// rollback failures are only logged so the triggering error reaches the caller.
func (u *Uow[Tx]) rollback(ctx context.Context, log *zap.Logger, tx Tx) {
	if err := u.backend.Rollback(context.WithoutCancel(ctx), tx); err != nil {
		log.Warn("uow.rollback_failed", zap.Error(err))
	}
}

// isNil also catches a typed nil pointer stored in the interface.
func isNil(obj any) bool {
	if obj == nil {
		return true
	}
	switch v := reflect.ValueOf(obj); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

func (u *Uow[Tx]) reset() {
	var zero Tx
	u.tx = zero
	u.state = StateIdle
	u.unitID = ""
	u.pending = nil
}
