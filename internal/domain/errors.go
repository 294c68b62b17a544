package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidRecord = errors.New("invalid record")
	ErrUnknownOp     = errors.New("unknown operation")
)
