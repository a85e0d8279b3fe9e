package repository

import (
	"context"

	"github.com/fastygo/storefront/domain"
)

// CatalogGateway fetches the product list from the catalog service.
type CatalogGateway interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}
