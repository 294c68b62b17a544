package redisstore_test

import (
	"context"
	"errors"
	"testing"

	"uow-coordinator/internal/domain"
	redisstore "uow-coordinator/internal/infrastructure/redis"
	"uow-coordinator/internal/uow"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var keys = redisstore.Keys{Prefix: "record:"}

type failingDelete struct{ *redisstore.RecordEntity }

func (failingDelete) PersistDelete(context.Context, *redisstore.Tx) error {
	return errors.New("delete model error")
}

func entity(id int64, name string) *redisstore.RecordEntity {
	return &redisstore.RecordEntity{Record: domain.Record{ID: id, Name: name}, Keys: keys}
}

func setup(t *testing.T, seed ...domain.Record) (*miniredis.Miniredis, *redisstore.RecordStore, *uow.Uow[*redisstore.Tx]) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	u := uow.New[*redisstore.Tx](redisstore.NewBackend(client))
	for _, r := range seed {
		require.NoError(t, u.MarkCreate(context.Background(), entity(r.ID, r.Name)))
	}
	return mr, redisstore.NewRecordStore(client, keys), u
}

func TestAutoCommit(t *testing.T) {
	ctx := context.Background()
	_, store, u := setup(t)

	require.NoError(t, u.MarkCreate(ctx, entity(1, "test")))
	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.Record{ID: 1, Name: "test"}, got)

	require.NoError(t, u.MarkUpdate(ctx, entity(1, "update successfully")))
	got, err = store.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "update successfully", got.Name)

	require.NoError(t, u.MarkDelete(ctx, entity(1, "")))
	_, err = store.Get(ctx, 1)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBatch_CommitsAllActions(t *testing.T) {
	ctx := context.Background()
	_, store, u := setup(t, domain.Record{ID: 2, Name: "second"}, domain.Record{ID: 3, Name: "third"})

	require.NoError(t, u.BeginWork(ctx))
	require.NoError(t, u.MarkCreate(ctx, entity(1, "first")))
	require.NoError(t, u.MarkUpdate(ctx, entity(2, "update")))
	require.NoError(t, u.MarkDelete(ctx, entity(3, "third")))

	mid, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Record{{ID: 2, Name: "second"}, {ID: 3, Name: "third"}}, mid)

	require.NoError(t, u.CommitWork(ctx))

	after, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Record{{ID: 1, Name: "first"}, {ID: 2, Name: "update"}}, after)
}

func TestBatch_RollsBackOnAnyError(t *testing.T) {
	ctx := context.Background()
	mr, store, u := setup(t, domain.Record{ID: 2, Name: "second"}, domain.Record{ID: 3, Name: "third"})
	before, err := store.List(ctx)
	require.NoError(t, err)
	dumpBefore := mr.Dump()

	require.NoError(t, u.BeginWork(ctx))
	require.NoError(t, u.MarkCreate(ctx, entity(1, "first")))
	require.NoError(t, u.MarkUpdate(ctx, entity(2, "update")))
	require.NoError(t, u.MarkDelete(ctx, failingDelete{entity(3, "third")}))
	require.ErrorIs(t, u.CommitWork(ctx), uow.ErrPersistFailed)

	after, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.Equal(t, dumpBefore, mr.Dump())
	require.Equal(t, uow.StateIdle, u.State())
}

func TestBegin_BackendUnavailable(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	u := uow.New[*redisstore.Tx](redisstore.NewBackend(client))

	require.ErrorIs(t, u.BeginWork(ctx), uow.ErrBackendUnavailable)
	require.ErrorIs(t, u.MarkCreate(ctx, entity(1, "x")), uow.ErrBackendUnavailable)
}

func TestCommit_ServerRejects(t *testing.T) {
	ctx := context.Background()
	mr, _, u := setup(t)
	// a string under the record key makes HSET fail with WRONGTYPE inside the script
	require.NoError(t, mr.Set(keys.Record(5), "not-a-hash"))

	err := u.MarkUpdate(ctx, entity(5, "x"))
	require.ErrorIs(t, err, uow.ErrCommitFailed)
}

func TestUpdate_MissingRecord(t *testing.T) {
	ctx := context.Background()
	mr, store, u := setup(t, domain.Record{ID: 2, Name: "second"})
	dumpBefore := mr.Dump()

	err := u.MarkUpdate(ctx, entity(9, "ghost"))
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, err, uow.ErrCommitFailed)

	_, err = store.Get(ctx, 9)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Equal(t, dumpBefore, mr.Dump())
}

func TestCreate_ExistingRecord(t *testing.T) {
	ctx := context.Background()
	_, store, u := setup(t, domain.Record{ID: 2, Name: "second"})

	err := u.MarkCreate(ctx, entity(2, "again"))
	require.ErrorIs(t, err, domain.ErrAlreadyExists)

	got, err := store.Get(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "second", got.Name)
}

func TestBatch_GuardFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	mr, store, u := setup(t, domain.Record{ID: 2, Name: "second"})
	dumpBefore := mr.Dump()

	require.NoError(t, u.BeginWork(ctx))
	require.NoError(t, u.MarkCreate(ctx, entity(1, "first")))
	require.NoError(t, u.MarkUpdate(ctx, entity(2, "update")))
	require.NoError(t, u.MarkUpdate(ctx, entity(9, "ghost")))
	require.ErrorIs(t, u.CommitWork(ctx), domain.ErrNotFound)

	require.Equal(t, dumpBefore, mr.Dump())
	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Record{{ID: 2, Name: "second"}}, list)
}

func TestBatch_SeesEarlierStepsOfSameUnit(t *testing.T) {
	ctx := context.Background()
	_, store, u := setup(t, domain.Record{ID: 2, Name: "second"})

	require.NoError(t, u.BeginWork(ctx))
	require.NoError(t, u.MarkCreate(ctx, entity(1, "first")))
	require.NoError(t, u.MarkUpdate(ctx, entity(1, "renamed")))
	require.NoError(t, u.MarkDelete(ctx, entity(2, "")))
	require.NoError(t, u.MarkCreate(ctx, entity(2, "reborn")))
	require.NoError(t, u.CommitWork(ctx))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Record{{ID: 1, Name: "renamed"}, {ID: 2, Name: "reborn"}}, list)
}
