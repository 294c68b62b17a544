package application

import (
	"context"
	"errors"
	"fmt"

	"uow-coordinator/internal/domain"

	"go.uber.org/zap"
)

// RecordService applies record changes. Every call gets a fresh writer,
// so concurrent requests never share a coordinator.
type RecordService struct {
	newWriter func() RecordWriter
	reader    RecordReader
	idem      IdempotencyStore
	log       *zap.Logger
}

type Option func(*RecordService)

func WithIdempotency(s IdempotencyStore) Option { return func(r *RecordService) { r.idem = s } }
func WithLogger(l *zap.Logger) Option           { return func(r *RecordService) { r.log = l } }

func NewRecordService(newWriter func() RecordWriter, reader RecordReader, opts ...Option) *RecordService {
	s := &RecordService{newWriter: newWriter, reader: reader}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *RecordService) Create(ctx context.Context, r domain.Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return s.newWriter().Create(ctx, r)
}

func (s *RecordService) Update(ctx context.Context, r domain.Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return s.newWriter().Update(ctx, r)
}

func (s *RecordService) Delete(ctx context.Context, id int64) error {
	op := domain.RecordOp{Kind: domain.RecordOpDelete, Record: domain.Record{ID: id}}
	if err := op.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return s.newWriter().Delete(ctx, op.Record)
}

// ApplyBatch applies ops atomically in the given order. When idemKey is set
// a repeated key is rejected with ErrConflict; the key is released again if
// the batch does not commit so the client may retry.
func (s *RecordService) ApplyBatch(ctx context.Context, ops []domain.RecordOp, idemKey *string) (err error) {
	if len(ops) == 0 {
		return fmt.Errorf("%w: empty batch", ErrBadRequest)
	}
	for i, op := range ops {
		if err := op.Validate(); err != nil {
			return fmt.Errorf("%w: op %d: %w", ErrBadRequest, i, err)
		}
	}

	if idemKey != nil && s.idem != nil {
		ok, err := s.idem.TryReserve(ctx, *idemKey)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: idempotency key %q already used", ErrConflict, *idemKey)
		}
		defer func() {
			if err == nil {
				return
			}
			if relErr := s.idem.Release(context.WithoutCancel(ctx), *idemKey); relErr != nil {
				s.log.Warn("idempotency_release_failed", zap.String("key", *idemKey), zap.Error(relErr))
			}
		}()
	}

	w := s.newWriter()
	if err := w.BeginWork(ctx); err != nil {
		return err
	}
	for _, op := range ops {
		if err := mark(ctx, w, op); err != nil {
			_ = w.DiscardWork(ctx)
			return err
		}
	}
	if err := w.CommitWork(ctx); err != nil {
		s.log.Warn("batch_rolled_back", zap.Int("ops", len(ops)), zap.Error(err))
		return err
	}
	s.log.Info("batch_committed", zap.Int("ops", len(ops)))
	return nil
}

func (s *RecordService) Get(ctx context.Context, id int64) (domain.Record, error) {
	return s.reader.Get(ctx, id)
}

func (s *RecordService) List(ctx context.Context) ([]domain.Record, error) {
	return s.reader.List(ctx)
}

func mark(ctx context.Context, w RecordWriter, op domain.RecordOp) error {
	switch op.Kind {
	case domain.RecordOpCreate:
		return w.Create(ctx, op.Record)
	case domain.RecordOpUpdate:
		return w.Update(ctx, op.Record)
	case domain.RecordOpDelete:
		return w.Delete(ctx, op.Record)
	default:
		return errors.Join(ErrBadRequest, domain.ErrUnknownOp)
	}
}
