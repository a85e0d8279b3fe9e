package metrics

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/usecase"
	catalogUC "github.com/fastygo/storefront/usecase/catalog"
)

func TestSubscribeTracksEngineState(t *testing.T) {
	m := New()
	d := usecase.NewDispatcher()
	unsubscribe := m.Subscribe(d)
	ctx := context.Background()

	cart := domain.Cart{}.
		Add(domain.Product{ID: 1, Price: decimal.NewFromInt(3)}).
		Add(domain.Product{ID: 1, Price: decimal.NewFromInt(3)}).
		Add(domain.Product{ID: 2, Price: decimal.NewFromInt(1)})
	d.Publish(ctx, usecase.TopicCartChanged, cart)
	d.Publish(ctx, usecase.TopicCatalogRefreshed, catalogUC.Snapshot{Items: make([]domain.Product, 4)})
	d.Publish(ctx, usecase.TopicCatalogRefreshed, catalogUC.Snapshot{Items: make([]domain.Product, 4), LastError: "down"})
	d.Publish(ctx, usecase.TopicSessionChanged, domain.Session{Token: "t", Identity: &domain.Identity{Subject: "a"}})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CartLines))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.CartQuantity))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CartMutations))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.CatalogProducts))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CatalogFailures))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Authenticated))

	unsubscribe()
	d.Publish(ctx, usecase.TopicSessionChanged, domain.Session{})
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Authenticated))
}

func TestObserveRequestAndHandler(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/api/cart", http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/cart", "200")))

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/metrics")
	m.Handler()(&ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "storefront_http_requests_total")
}
