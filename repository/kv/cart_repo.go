package kv

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

type cartRepository struct {
	store repository.KeyValueStore
	key   string
}

// NewCartRepository stores the cart as a JSON array under repository.KeyCart.
func NewCartRepository(store repository.KeyValueStore) repository.CartRepository {
	return &cartRepository{store: store, key: repository.KeyCart}
}

func (r *cartRepository) Load(ctx context.Context) (domain.Cart, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, domain.ErrStateNotFound) {
			return domain.Cart{}, nil
		}
		return domain.Cart{}, err
	}

	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return domain.Cart{}, domain.WrapError(domain.ErrCodeMalformedState, "persisted cart is malformed", err)
	}
	if cart == nil {
		cart = domain.Cart{}
	}
	if err := cart.Validate(); err != nil {
		return domain.Cart{}, domain.WrapError(domain.ErrCodeMalformedState, "persisted cart is malformed", err)
	}
	return cart, nil
}

func (r *cartRepository) Save(ctx context.Context, cart domain.Cart) error {
	if cart == nil {
		cart = domain.Cart{}
	}
	payload, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, r.key, payload)
}
