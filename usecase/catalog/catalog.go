package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
	"github.com/fastygo/storefront/usecase"
)

const refreshKey = "products"

// Snapshot is the published state of the cache.
type Snapshot struct {
	Items       []domain.Product `json:"items"`
	LastError   string           `json:"last_error,omitempty"`
	RefreshedAt time.Time        `json:"refreshed_at,omitempty"`
}

// UseCase caches the product list. Refresh replaces the list wholesale and a
// failed refresh keeps the previous one.
type UseCase struct {
	products repository.CatalogGateway
	events   usecase.Publisher
	now      func() time.Time
	logger   *zap.Logger

	group singleflight.Group

	mu          sync.RWMutex
	items       []domain.Product
	byID        map[int64]int
	lastError   string
	refreshedAt time.Time
}

func New(products repository.CatalogGateway, events usecase.Publisher, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		products: products,
		events:   events,
		now:      time.Now,
		logger:   logger,
		items:    []domain.Product{},
		byID:     map[int64]int{},
	}
}

// Refresh fetches the product list. Concurrent calls share one request.
func (uc *UseCase) Refresh(ctx context.Context) (Snapshot, error) {
	_, err, shared := uc.group.Do(refreshKey, func() (interface{}, error) {
		return nil, uc.refresh(ctx)
	})
	if shared {
		uc.logger.Debug("catalog refresh shared with in-flight call")
	}
	return uc.Snapshot(), err
}

func (uc *UseCase) refresh(ctx context.Context) error {
	items, err := uc.products.ListProducts(ctx)
	if err != nil {
		msg := failureMessage(err)
		uc.mu.Lock()
		uc.lastError = msg
		uc.mu.Unlock()
		uc.logger.Warn("catalog refresh failed", zap.Error(err))
		uc.publish(ctx)
		return domain.WrapError(domain.ErrCodeTransient, msg, err)
	}

	index := make(map[int64]int, len(items))
	for i, p := range items {
		if _, dup := index[p.ID]; !dup {
			index[p.ID] = i
		}
	}

	uc.mu.Lock()
	uc.items = append([]domain.Product{}, items...)
	uc.byID = index
	uc.lastError = ""
	uc.refreshedAt = uc.now()
	uc.mu.Unlock()

	uc.logger.Info("catalog refreshed", zap.Int("products", len(items)))
	uc.publish(ctx)
	return nil
}

// Items returns a copy of the cached products.
func (uc *UseCase) Items() []domain.Product {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return append([]domain.Product{}, uc.items...)
}

// LastError is the message of the last failed refresh, or "" after a success.
func (uc *UseCase) LastError() string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.lastError
}

// Product looks up a cached product by id.
func (uc *UseCase) Product(id int64) (domain.Product, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	idx, ok := uc.byID[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return uc.items[idx], nil
}

func (uc *UseCase) Snapshot() Snapshot {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return Snapshot{
		Items:       append([]domain.Product{}, uc.items...),
		LastError:   uc.lastError,
		RefreshedAt: uc.refreshedAt,
	}
}

func (uc *UseCase) publish(ctx context.Context) {
	if uc.events != nil {
		uc.events.Publish(ctx, usecase.TopicCatalogRefreshed, uc.Snapshot())
	}
}

func failureMessage(err error) string {
	var respErr *repository.ResponseError
	if errors.As(err, &respErr) && respErr.Message != "" {
		return respErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "Unable to load products"
}
