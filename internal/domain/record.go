package domain

import (
	"fmt"
	"unicode/utf8"
)

const MaxNameLength = 255

type Record struct {
	ID   int64
	Name string
}

func (r Record) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidRecord)
	}
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecord)
	}
	if utf8.RuneCountInString(r.Name) > MaxNameLength {
		return fmt.Errorf("%w: name longer than %d characters", ErrInvalidRecord, MaxNameLength)
	}
	return nil
}
