package application

import (
	"context"

	"uow-coordinator/internal/domain"
)

type RecordReader interface {
	Get(ctx context.Context, id int64) (domain.Record, error)
	List(ctx context.Context) ([]domain.Record, error)
}

// RecordWriter stages record changes; see RecordRepository.
type RecordWriter interface {
	Create(ctx context.Context, r domain.Record) error
	Update(ctx context.Context, r domain.Record) error
	Delete(ctx context.Context, r domain.Record) error

	BeginWork(ctx context.Context) error
	CommitWork(ctx context.Context) error
	DiscardWork(ctx context.Context) error
}
