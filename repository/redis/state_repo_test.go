package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

func setupTestRedis(t *testing.T) (repository.KeyValueStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStateRepository(client, "test:"), mr
}

func TestStateRepository_Get_Missing(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.Get(context.Background(), repository.KeyToken)
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestStateRepository_PutUsesPrefixAndNoTTL(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, repository.KeyToken, []byte("jwt")))

	stored, err := mr.Get("test:token")
	require.NoError(t, err)
	assert.Equal(t, "jwt", stored)
	assert.Zero(t, mr.TTL("test:token"))

	value, err := store.Get(ctx, repository.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("jwt"), value)
}

func TestStateRepository_Delete(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, repository.KeyCart, []byte("[]")))
	require.NoError(t, store.Delete(ctx, repository.KeyCart))
	require.NoError(t, store.Delete(ctx, repository.KeyCart))

	assert.False(t, mr.Exists("test:cart"))
}

func TestStateRepository_DefaultPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewStateRepository(client, "")
	require.NoError(t, store.Put(context.Background(), "cart", []byte("[]")))
	assert.True(t, mr.Exists("storefront:cart"))
}
