package domain

import "fmt"

type RecordOpKind string

const (
	RecordOpCreate RecordOpKind = "create"
	RecordOpUpdate RecordOpKind = "update"
	RecordOpDelete RecordOpKind = "delete"
)

// RecordOp is one staged intention of a batch.
type RecordOp struct {
	Kind   RecordOpKind
	Record Record
}

// Validate checks the op shape only; a delete needs nothing but the id.
func (op RecordOp) Validate() error {
	switch op.Kind {
	case RecordOpCreate, RecordOpUpdate:
		return op.Record.Validate()
	case RecordOpDelete:
		if op.Record.ID <= 0 {
			return fmt.Errorf("%w: id must be positive", ErrInvalidRecord)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, op.Kind)
	}
}
