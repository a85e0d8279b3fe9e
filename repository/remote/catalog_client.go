package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/config"
	"github.com/fastygo/storefront/internal/infrastructure/httpclient"
	"github.com/fastygo/storefront/repository"
)

type catalogGateway struct {
	client   *httpclient.Client
	products string
}

// NewCatalogGateway reads GET /api/products from the backend root.
func NewCatalogGateway(client *httpclient.Client, cfg config.BackendConfig) repository.CatalogGateway {
	return &catalogGateway{
		client:   client,
		products: cfg.RootURL("api/products"),
	}
}

func (g *catalogGateway) ListProducts(ctx context.Context) ([]domain.Product, error) {
	resp, err := g.client.Do(ctx, http.MethodGet, g.products, nil)
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return nil, &repository.ResponseError{Status: resp.Status, Message: resp.Message()}
	}

	var products []domain.Product
	if err := resp.Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}
