package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

const probeKey = "__health"

// Check probes one dependency. Detail is reported even when err is set.
type Check func(ctx context.Context) (detail interface{}, err error)

type namedCheck struct {
	name  string
	check Check
}

// Monitor runs its checks on demand. There is no background polling.
type Monitor struct {
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.RWMutex
	checks []namedCheck
}

func New(timeout time.Duration, logger *zap.Logger) *Monitor {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{timeout: timeout, logger: logger}
}

// Register adds a named check. Checks run in registration order.
func (m *Monitor) Register(name string, check Check) {
	if check == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks = append(m.checks, namedCheck{name: name, check: check})
}

// Check runs every registered check, each bounded by the monitor timeout.
func (m *Monitor) Check(ctx context.Context) Status {
	m.mu.RLock()
	checks := append([]namedCheck(nil), m.checks...)
	m.mu.RUnlock()

	status := Status{Healthy: true, CheckedAt: time.Now().UTC()}
	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
		detail, err := c.check(checkCtx)
		cancel()

		component := ComponentStatus{Name: c.name, Healthy: err == nil, Detail: detail}
		if err != nil {
			component.Error = err.Error()
			status.Healthy = false
			m.logger.Warn("health check failed", zap.String("component", c.name), zap.Error(err))
		}
		status.Components = append(status.Components, component)
	}
	return status
}

// StoreCheck reads a probe key from store; a missing key counts as reachable.
func StoreCheck(store repository.KeyValueStore) Check {
	return func(ctx context.Context) (interface{}, error) {
		_, err := store.Get(ctx, probeKey)
		if err != nil && !errors.Is(err, domain.ErrStateNotFound) {
			return nil, err
		}
		return nil, nil
	}
}

// Sizer reports how many keys a store holds.
type Sizer interface {
	Size() (int, error)
}

// SizeCheck reports the key count of a local store.
func SizeCheck(store Sizer) Check {
	return func(context.Context) (interface{}, error) {
		size, err := store.Size()
		return map[string]int{"keys": size}, err
	}
}

// RedisCheck pings the redis server.
func RedisCheck(client *goRedis.Client) Check {
	return func(ctx context.Context) (interface{}, error) {
		return nil, client.Ping(ctx).Err()
	}
}
