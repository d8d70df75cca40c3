package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/abacus/pkg/adapters/redis"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient(client)
	ports.RunHistoryStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	e := domain.NewEvaluation("2 * 3")
	e.Result = "6"
	require.NoError(t, store.Append(ctx, e))

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	mr.FastForward(2 * time.Second)

	_, err = store.Get(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrEvaluationNotFound)

	list, err = store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	// The index entry was pruned by List.
	members, err := mr.ZMembers("abacus:index")
	if err == nil {
		assert.Empty(t, members)
	}
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	e := domain.NewEvaluation("1 + 1")
	e.Result = "2"
	require.NoError(t, store.Append(ctx, e))

	assert.True(t, mr.Exists("custom:app:eval:"+e.ID), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists("custom:app:index"))
}

func TestRedisStore_LimitSkipsExpired(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()
	base := time.Now().UTC()

	var ids []string
	for i := 0; i < 4; i++ {
		e := domain.NewEvaluation("x")
		e.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, store.Append(ctx, e))
		ids = append(ids, e.ID)
	}
	// Drop the newest record behind the index's back.
	mr.Del("abacus:eval:" + ids[3])

	list, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)
}

func TestRedisStore_New(t *testing.T) {
	mr, _ := newClient(t)

	store := redis.New(mr.Addr(), "", 0)
	defer store.Close()
	assert.NoError(t, store.Ping(context.Background()))
}
