package redisstore

import (
	"context"
	"errors"
	"slices"
	"strconv"

	"uow-coordinator/internal/domain"

	"github.com/redis/go-redis/v9"
)

type RecordStore struct {
	Client redis.UniversalClient
	Keys   Keys
}

func NewRecordStore(client redis.UniversalClient, keys Keys) *RecordStore {
	return &RecordStore{Client: client, Keys: keys}
}

func (s *RecordStore) Get(ctx context.Context, id int64) (domain.Record, error) {
	name, err := s.Client.HGet(ctx, s.Keys.Record(id), nameField).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Record{}, err
	}
	return domain.Record{ID: id, Name: name}, nil
}

func (s *RecordStore) List(ctx context.Context) ([]domain.Record, error) {
	members, err := s.Client.SMembers(ctx, s.Keys.Index()).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)

	pipe := s.Client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGet(ctx, s.Keys.Record(id), nameField)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	out := make([]domain.Record, 0, len(ids))
	for i, id := range ids {
		name, err := cmds[i].Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Record{ID: id, Name: name})
	}
	return out, nil
}
