package uow

import (
	"errors"
	"fmt"
)

var (
	ErrBackendUnavailable = errors.New("uow: backend unavailable")
	ErrCommitFailed       = errors.New("uow: commit failed")
	ErrInvalidState       = errors.New("uow: invalid state")
	ErrPersistFailed      = errors.New("uow: persist failed")
	ErrNilObject          = errors.New("uow: nil object")
)

// PersistError reports which queued or auto-committed operation failed.
type PersistError struct {
	Kind   OpKind
	Object any
	Err    error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("uow: persist %s %T: %v", e.Kind, e.Object, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

func (e *PersistError) Is(target error) bool { return target == ErrPersistFailed }
