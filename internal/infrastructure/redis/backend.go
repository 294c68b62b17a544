package redisstore

import (
	"context"
	"fmt"
	"strings"

	"uow-coordinator/internal/domain"
	"uow-coordinator/internal/uow"

	"github.com/redis/go-redis/v9"
)

var _ uow.Backend[*Tx] = (*Backend)(nil)

// Backend stages writes in a Tx and applies them with a single Lua script on
// Commit. Nothing reaches Redis before that, so Rollback only drops the buffer.
// Keys are not passed through KEYS, so the script needs a standalone server.
type Backend struct {
	Client redis.UniversalClient
}

func NewBackend(client redis.UniversalClient) *Backend { return &Backend{Client: client} }

// Begin pings so that an unreachable server fails the unit before any work is queued.
func (b *Backend) Begin(ctx context.Context) (*Tx, error) {
	if err := b.Client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Tx{}, nil
}

func (b *Backend) Commit(ctx context.Context, tx *Tx) error {
	if tx.Len() == 0 {
		return nil
	}
	err := applyScript.Run(ctx, b.Client, nil, tx.args()...).Err()
	switch {
	case err == nil:
		return nil
	case strings.Contains(err.Error(), errCodeExists):
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, err)
	case strings.Contains(err.Error(), errCodeMissing):
		return fmt.Errorf("%w: %s", domain.ErrNotFound, err)
	default:
		return err
	}
}

func (b *Backend) Rollback(_ context.Context, tx *Tx) error {
	tx.steps = nil
	return nil
}
