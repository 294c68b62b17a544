package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "idem:"

// Store reserves idempotency keys with SETNX so a batch is applied once.
type Store struct {
	Client redis.UniversalClient
	TTL    time.Duration
}

func New(client redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{Client: client, TTL: ttl}
}

func (s *Store) TryReserve(ctx context.Context, key string) (bool, error) {
	ok, err := s.Client.SetNX(ctx, idempotencyPrefix+key, "1", s.TTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Release frees a reserved key, used when the guarded batch did not commit.
func (s *Store) Release(ctx context.Context, key string) error {
	return s.Client.Del(ctx, idempotencyPrefix+key).Err()
}
