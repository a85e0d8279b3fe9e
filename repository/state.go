package repository

import "context"

// Well-known keys in durable local storage.
const (
	KeyToken = "token"
	KeyCart  = "cart"
)

// KeyValueStore is the durable local storage the engines persist into.
// Get returns domain.ErrStateNotFound for absent keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
