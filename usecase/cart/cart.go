package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
	"github.com/fastygo/storefront/usecase"
)

var errInvalidQuantity = domain.NewError(domain.ErrCodeInvalidInput, "quantity must be at least 1")

// UseCase is the cart engine. Mutators are serialized by one lock held across
// read, persist and commit.
type UseCase struct {
	carts  repository.CartRepository
	events usecase.Publisher
	logger *zap.Logger

	mu    sync.Mutex
	items domain.Cart

	// outbox holds committed snapshots not yet published, in commit order.
	// Only the caller that finds draining unset publishes them.
	outbox   []domain.Cart
	draining bool
}

func New(carts repository.CartRepository, events usecase.Publisher, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		carts:  carts,
		events: events,
		logger: logger,
		items:  domain.Cart{},
	}
}

// Rehydrate replaces the in-memory cart with the persisted one. A missing or
// malformed value yields an empty cart and no error.
func (uc *UseCase) Rehydrate(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	items, err := uc.carts.Load(ctx)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeMalformedState) {
			return err
		}
		uc.logger.Warn("persisted cart is malformed, starting empty", zap.Error(err))
		items = domain.Cart{}
	}
	if err := items.Validate(); err != nil {
		uc.logger.Warn("persisted cart breaks line invariants, starting empty", zap.Error(err))
		items = domain.Cart{}
	}
	uc.items = items.Clone()
	uc.logger.Debug("cart rehydrated", zap.Int("lines", len(uc.items)))
	return nil
}

// Add increments the line for product or appends it with quantity 1.
func (uc *UseCase) Add(ctx context.Context, product domain.Product) (domain.Cart, error) {
	return uc.mutate(ctx, "add", func(c domain.Cart) domain.Cart { return c.Add(product) })
}

// Remove drops the line for productID. Unknown ids are a no-op.
func (uc *UseCase) Remove(ctx context.Context, productID int64) (domain.Cart, error) {
	return uc.mutate(ctx, "remove", func(c domain.Cart) domain.Cart { return c.Remove(productID) })
}

// Clear empties the cart.
func (uc *UseCase) Clear(ctx context.Context) (domain.Cart, error) {
	return uc.mutate(ctx, "clear", func(domain.Cart) domain.Cart { return domain.Cart{} })
}

// UpdateQuantity sets the quantity of productID. Quantities below 1 are
// rejected without touching the cart; unknown ids are a no-op.
func (uc *UseCase) UpdateQuantity(ctx context.Context, productID int64, quantity int) (domain.Cart, error) {
	if quantity < 1 {
		return uc.Items(), errInvalidQuantity
	}
	return uc.mutate(ctx, "update_quantity", func(c domain.Cart) domain.Cart {
		next, _ := c.SetQuantity(productID, quantity)
		return next
	})
}

// Items returns a copy of the current cart.
func (uc *UseCase) Items() domain.Cart {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.items.Clone()
}

func (uc *UseCase) Total() decimal.Decimal {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.items.Total()
}

func (uc *UseCase) Count() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.items.Count()
}

// mutate persists the next cart and only then makes it current. Observers
// are notified after the engine lock is released; a mutation made from
// inside an observer is queued and published once the current delivery ends.
func (uc *UseCase) mutate(ctx context.Context, op string, fn func(domain.Cart) domain.Cart) (domain.Cart, error) {
	uc.mu.Lock()
	next := fn(uc.items)
	if err := uc.carts.Save(ctx, next); err != nil {
		current := uc.items.Clone()
		uc.mu.Unlock()
		uc.logger.Error("failed to persist cart", zap.String("operation", op), zap.Error(err))
		return current, domain.WrapError(domain.ErrCodeTransient, "Unable to save your cart. Please try again.", err)
	}
	uc.items = next
	snapshot := next.Clone()
	var drain bool
	if uc.events != nil {
		uc.outbox = append(uc.outbox, snapshot.Clone())
		drain = !uc.draining
		uc.draining = true
	}
	uc.mu.Unlock()

	uc.logger.Debug("cart updated", zap.String("operation", op), zap.Int("lines", len(snapshot)))
	if drain {
		uc.drain(ctx)
	}
	return snapshot, nil
}

func (uc *UseCase) drain(ctx context.Context) {
	for {
		uc.mu.Lock()
		if len(uc.outbox) == 0 {
			uc.draining = false
			uc.mu.Unlock()
			return
		}
		next := uc.outbox[0]
		uc.outbox = uc.outbox[1:]
		uc.mu.Unlock()

		uc.events.Publish(ctx, usecase.TopicCartChanged, next)
	}
}
