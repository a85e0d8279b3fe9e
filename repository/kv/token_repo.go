package kv

import (
	"context"
	"errors"
	"strings"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

type tokenRepository struct {
	store repository.KeyValueStore
	key   string
}

// NewTokenRepository stores the raw bearer string under repository.KeyToken.
func NewTokenRepository(store repository.KeyValueStore) repository.TokenRepository {
	return &tokenRepository{store: store, key: repository.KeyToken}
}

// Load returns an empty string when no token was saved.
func (r *tokenRepository) Load(ctx context.Context) (string, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, domain.ErrStateNotFound) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func (r *tokenRepository) Save(ctx context.Context, token string) error {
	if token == "" {
		return r.Delete(ctx)
	}
	return r.store.Put(ctx, r.key, []byte(token))
}

func (r *tokenRepository) Delete(ctx context.Context) error {
	return r.store.Delete(ctx, r.key)
}
