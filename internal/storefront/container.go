package storefront

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/internal/config"
	"github.com/fastygo/storefront/internal/infrastructure/httpclient"
	"github.com/fastygo/storefront/internal/infrastructure/localstore"
	"github.com/fastygo/storefront/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/storefront/internal/infrastructure/redis"
	"github.com/fastygo/storefront/internal/metrics"
	"github.com/fastygo/storefront/internal/services/lifecycle"
	"github.com/fastygo/storefront/internal/services/scheduler"
	"github.com/fastygo/storefront/repository"
	"github.com/fastygo/storefront/repository/kv"
	redisRepo "github.com/fastygo/storefront/repository/redis"
	"github.com/fastygo/storefront/repository/remote"
	"github.com/fastygo/storefront/usecase"
	authUC "github.com/fastygo/storefront/usecase/auth"
	cartUC "github.com/fastygo/storefront/usecase/cart"
	catalogUC "github.com/fastygo/storefront/usecase/catalog"
)

// Container is the process-wide state: one session manager, one cart engine
// and one catalog cache, built once per run and torn down by the lifecycle
// manager.
type Container struct {
	Config  *config.Config
	Events  *usecase.Dispatcher
	Auth    *authUC.UseCase
	Flows   *authUC.Flows
	Cart    *cartUC.UseCase
	Catalog *catalogUC.UseCase
	Metrics *metrics.Metrics
	Monitor *monitor.Monitor

	lifecycle *lifecycle.Manager
	logger    *zap.Logger
}

type options struct {
	dial      fasthttp.DialFunc
	scheduler usecase.Scheduler
	now       func() time.Time
}

// Option overrides a collaborator, mostly for tests.
type Option func(*options)

// WithDial routes backend connections through dial.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(o *options) { o.dial = dial }
}

// WithScheduler replaces the cron scheduler that drives OTP countdowns.
func WithScheduler(s usecase.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithClock replaces the wall clock used for token expiry and OTP windows.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Build wires storage, gateways and engines. Every opened resource is
// registered with manager for shutdown.
func Build(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.scheduler == nil {
		o.scheduler = scheduler.NewCron(logger.Named("scheduler"))
	}

	c := &Container{
		Config:    cfg,
		Events:    usecase.NewDispatcher(),
		Metrics:   metrics.New(),
		Monitor:   monitor.New(2*time.Second, logger.Named("monitor")),
		lifecycle: manager,
		logger:    logger,
	}

	store, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}

	client := httpclient.New(c.token, httpclient.Options{
		Timeout:   cfg.Backend.Timeout,
		RateLimit: cfg.Backend.RateLimit,
		RateBurst: cfg.Backend.RateBurst,
		UserAgent: cfg.AppName,
		Dial:      o.dial,
	}, logger.Named("backend"))

	c.Auth = authUC.New(
		remote.NewIdentityGateway(client, cfg.Backend),
		kv.NewTokenRepository(store),
		authUC.NewTokenDecoder(cfg.JWT.Secret, o.now),
		c.Events,
		authUC.Options{OTPTTL: cfg.OTP.TTL, Now: o.now},
		logger.Named("session"),
	)
	c.Flows = authUC.NewFlows(c.Auth, o.scheduler, cfg.OTP.TTL)
	c.Cart = cartUC.New(kv.NewCartRepository(store), c.Events, logger.Named("cart"))
	c.Catalog = catalogUC.New(remote.NewCatalogGateway(client, cfg.Backend), c.Events, logger.Named("catalog"))

	unsubscribe := c.Metrics.Subscribe(c.Events)
	manager.Register("metrics", func(context.Context) error {
		unsubscribe()
		return nil
	})
	manager.Register("otp_flows", func(context.Context) error {
		c.Flows.End()
		return nil
	})

	c.Monitor.Register("catalog", func(context.Context) (interface{}, error) {
		snap := c.Catalog.Snapshot()
		detail := map[string]interface{}{"products": len(snap.Items), "refreshed_at": snap.RefreshedAt}
		if snap.LastError != "" {
			return detail, errors.New(snap.LastError)
		}
		return detail, nil
	})
	return c, nil
}

func (c *Container) openStore(ctx context.Context) (repository.KeyValueStore, error) {
	switch c.Config.State.Driver {
	case config.StateDriverRedis:
		client, err := redisInfra.NewClient(ctx, c.Config.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.lifecycle.Register("redis", func(context.Context) error {
			return client.Close()
		})
		store := redisRepo.NewStateRepository(client, c.Config.Redis.Prefix)
		c.Monitor.Register("state", monitor.StoreCheck(store))
		c.Monitor.Register("redis", monitor.RedisCheck(client))
		c.logger.Info("state store ready", zap.String("driver", config.StateDriverRedis))
		return store, nil
	default:
		store, err := localstore.Open(c.Config.State.Path, c.Config.State.Bucket)
		if err != nil {
			return nil, fmt.Errorf("open state store: %w", err)
		}
		c.lifecycle.Register("state_store", func(context.Context) error {
			return store.Close()
		})
		c.Monitor.Register("state", monitor.StoreCheck(store))
		c.Monitor.Register("state_size", monitor.SizeCheck(store))
		c.logger.Info("state store ready", zap.String("driver", config.StateDriverBolt), zap.String("path", c.Config.State.Path))
		return store, nil
	}
}

// Start restores the persisted session and cart, then loads the catalog. A
// failing catalog refresh is logged and left in the cache's last error.
func (c *Container) Start(ctx context.Context) error {
	if err := c.Auth.Restore(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if err := c.Cart.Rehydrate(ctx); err != nil {
		return fmt.Errorf("rehydrate cart: %w", err)
	}
	if _, err := c.Catalog.Refresh(ctx); err != nil {
		c.logger.Warn("initial catalog refresh failed", zap.Error(err))
	}
	return nil
}

// token feeds the HTTP client; it is read on every outgoing request.
func (c *Container) token() string {
	if c.Auth == nil {
		return ""
	}
	return c.Auth.Token()
}
