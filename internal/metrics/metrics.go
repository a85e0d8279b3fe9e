package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/usecase"
	catalogUC "github.com/fastygo/storefront/usecase/catalog"
)

const namespace = "storefront"

// Metrics owns a private registry with the local API and engine collectors.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CartLines       prometheus.Gauge
	CartQuantity    prometheus.Gauge
	CartMutations   prometheus.Counter
	CatalogProducts prometheus.Gauge
	CatalogFailures prometheus.Counter
	Authenticated   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Local API requests by route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Local API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CartLines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "lines",
			Help:      "Distinct products in the cart.",
		}),
		CartQuantity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "quantity",
			Help:      "Sum of cart line quantities.",
		}),
		CartMutations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Committed cart mutations.",
		}),
		CatalogProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "products",
			Help:      "Products held by the catalog cache.",
		}),
		CatalogFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "refresh_failures_total",
			Help:      "Failed catalog refreshes.",
		}),
		Authenticated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "authenticated",
			Help:      "1 while a decodable session token is held.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CartLines,
		m.CartQuantity,
		m.CartMutations,
		m.CatalogProducts,
		m.CatalogFailures,
		m.Authenticated,
	)
	return m
}

// Registry exposes the collectors, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one local API request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Subscribe keeps the engine gauges in step with published state and returns
// a func that detaches them.
func (m *Metrics) Subscribe(d *usecase.Dispatcher) func() {
	unsubs := []func(){
		d.Subscribe(usecase.TopicCartChanged, func(_ context.Context, payload interface{}) {
			cart, ok := payload.(domain.Cart)
			if !ok {
				return
			}
			m.CartMutations.Inc()
			m.CartLines.Set(float64(len(cart)))
			m.CartQuantity.Set(float64(cart.Count()))
		}),
		d.Subscribe(usecase.TopicCatalogRefreshed, func(_ context.Context, payload interface{}) {
			snap, ok := payload.(catalogUC.Snapshot)
			if !ok {
				return
			}
			m.CatalogProducts.Set(float64(len(snap.Items)))
			if snap.LastError != "" {
				m.CatalogFailures.Inc()
			}
		}),
		d.Subscribe(usecase.TopicSessionChanged, func(_ context.Context, payload interface{}) {
			session, ok := payload.(domain.Session)
			if !ok {
				return
			}
			if session.Authenticated() {
				m.Authenticated.Set(1)
				return
			}
			m.Authenticated.Set(0)
		}),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
