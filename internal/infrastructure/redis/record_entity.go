package redisstore

import (
	"context"
	"strconv"

	"uow-coordinator/internal/domain"
	"uow-coordinator/internal/uow"
)

const nameField = "name"

var _ uow.Object[*Tx] = (*RecordEntity)(nil)

// RecordEntity keeps a record as a hash plus its id in an index set.
type RecordEntity struct {
	Record domain.Record
	Keys   Keys
}

// Keys derives the Redis key layout from a prefix.
type Keys struct{ Prefix string }

func (k Keys) Record(id int64) string { return k.Prefix + strconv.FormatInt(id, 10) }
func (k Keys) Index() string          { return k.Prefix + "index" }

// NewRecordFactory returns a constructor for entities under the given key prefix.
func NewRecordFactory(keys Keys) func(domain.Record) uow.Object[*Tx] {
	return func(r domain.Record) uow.Object[*Tx] {
		return &RecordEntity{Record: r, Keys: keys}
	}
}

func (e *RecordEntity) PersistCreate(_ context.Context, tx *Tx) error {
	key, id := e.Keys.Record(e.Record.ID), e.id()
	tx.Add(Step{Key: key, Guard: GuardAbsent, Effect: EffectSet, Cmds: [][]string{
		{"HSET", key, nameField, e.Record.Name},
		{"SADD", e.Keys.Index(), id},
	}})
	return nil
}

func (e *RecordEntity) PersistUpdate(_ context.Context, tx *Tx) error {
	key := e.Keys.Record(e.Record.ID)
	tx.Add(Step{Key: key, Guard: GuardPresent, Effect: EffectKeep, Cmds: [][]string{
		{"HSET", key, nameField, e.Record.Name},
	}})
	return nil
}

func (e *RecordEntity) PersistDelete(_ context.Context, tx *Tx) error {
	key := e.Keys.Record(e.Record.ID)
	tx.Add(Step{Key: key, Guard: GuardAny, Effect: EffectRemove, Cmds: [][]string{
		{"DEL", key},
		{"SREM", e.Keys.Index(), e.id()},
	}})
	return nil
}

func (e *RecordEntity) id() string { return strconv.FormatInt(e.Record.ID, 10) }
