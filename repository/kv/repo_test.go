package kv

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

func TestCartRepository_LoadMissingIsEmpty(t *testing.T) {
	repo := NewCartRepository(newMemoryStore())

	cart, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cart)
	assert.Empty(t, cart)
}

func TestCartRepository_RoundTrip(t *testing.T) {
	store := newMemoryStore()
	repo := NewCartRepository(store)
	ctx := context.Background()

	cart := domain.Cart{}.
		Add(domain.Product{ID: 1, Name: "Laptop", Price: decimal.RequireFromString("999.99")}).
		Add(domain.Product{ID: 1, Name: "Laptop", Price: decimal.RequireFromString("999.99")}).
		Add(domain.Product{ID: 2, Name: "Mouse", Price: decimal.NewFromInt(5)})
	require.NoError(t, repo.Save(ctx, cart))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)

	want, err := json.Marshal(cart)
	require.NoError(t, err)
	got, err := json.Marshal(loaded)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
	require.Len(t, loaded, 2)
	assert.Equal(t, int64(1), loaded[0].ID)
	assert.Equal(t, 2, loaded[0].Quantity)
}

func TestCartRepository_MalformedIsEmptyWithTypedError(t *testing.T) {
	store := newMemoryStore()
	store.data[repository.KeyCart] = []byte(`[{"id":1,"quan`)
	repo := NewCartRepository(store)

	cart, err := repo.Load(context.Background())
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeMalformedState))
	assert.Empty(t, cart)
}

func TestCartRepository_NullIsEmpty(t *testing.T) {
	store := newMemoryStore()
	store.data[repository.KeyCart] = []byte(`null`)

	cart, err := NewCartRepository(store).Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cart)
}

func TestCartRepository_ReadsNumericPrices(t *testing.T) {
	store := newMemoryStore()
	store.data[repository.KeyCart] = []byte(`[{"id":7,"name":"Pen","price":1.5,"quantity":3}]`)

	cart, err := NewCartRepository(store).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.True(t, cart[0].Price.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, 3, cart[0].Quantity)
}

func TestCartRepository_PropagatesStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("disk gone")

	_, err := NewCartRepository(store).Load(context.Background())
	assert.EqualError(t, err, "disk gone")
}

func TestTokenRepository(t *testing.T) {
	store := newMemoryStore()
	repo := NewTokenRepository(store)
	ctx := context.Background()

	token, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, repo.Save(ctx, "a.b.c"))
	token, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", token)

	require.NoError(t, repo.Save(ctx, ""))
	_, ok := store.data[repository.KeyToken]
	assert.False(t, ok)

	require.NoError(t, repo.Delete(ctx))
}

func TestCartRepository_BrokenLinesAreMalformed(t *testing.T) {
	for _, raw := range []string{
		`[{"id":1,"name":"p","price":"1","quantity":1},{"id":1,"name":"p","price":"1","quantity":0}]`,
		`[{"id":2,"name":"p","price":"1","quantity":-3}]`,
	} {
		store := newMemoryStore()
		store.data[repository.KeyCart] = []byte(raw)

		cart, err := NewCartRepository(store).Load(context.Background())
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeMalformedState), raw)
		assert.Empty(t, cart)
	}
}
