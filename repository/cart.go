package repository

import (
	"context"

	"github.com/fastygo/storefront/domain"
)

// CartRepository persists the whole cart as one serialized value.
// Load returns an empty cart when nothing was saved and a MALFORMED_STATE
// error (alongside an empty cart) when the stored value cannot be decoded.
type CartRepository interface {
	Load(ctx context.Context) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
}
