package repository

import "context"

// TokenRepository persists the raw bearer token under a fixed key.
type TokenRepository interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}
