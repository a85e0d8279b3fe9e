package storefront

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fasthttp/router"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/fastygo/storefront/internal/config"
	"github.com/fastygo/storefront/internal/services/lifecycle"
	"github.com/fastygo/storefront/internal/services/scheduler"
	authUC "github.com/fastygo/storefront/usecase/auth"
)

func backend(t *testing.T) (fasthttp.DialFunc, *string) {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	seenAuth := new(string)
	r := router.New()
	r.POST("/user/login", func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`{"jwtToken":"` + token + `"}`)
	})
	r.GET("/api/products", func(ctx *fasthttp.RequestCtx) {
		*seenAuth = string(ctx.Request.Header.Peek("Authorization"))
		ctx.SetBodyString(`[{"id":1,"name":"Phone","price":100},{"id":2,"name":"Case","price":"9.50"}]`)
	})

	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = fasthttp.Serve(ln, r.Handler) }()
	t.Cleanup(func() { ln.Close() })
	return func(string) (net.Conn, error) { return ln.Dial() }, seenAuth
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		AppName: "storefront-test",
		Backend: config.BackendConfig{BaseURL: "http://backend.test", UserPrefix: "/user", Timeout: time.Second},
		State:   config.StateConfig{Driver: config.StateDriverBolt, Path: filepath.Join(t.TempDir(), "state.db"), Bucket: "storefront"},
		OTP:     config.OTPConfig{TTL: 120 * time.Second},
	}
}

func TestContainer_BoltStatePersistsAcrossRuns(t *testing.T) {
	dial, seenAuth := backend(t)
	cfg := testConfig(t)
	ctx := context.Background()

	manager := lifecycle.New(time.Second, nil)
	c, err := Build(ctx, cfg, manager, nil, WithDial(dial), WithScheduler(scheduler.NewManual()))
	require.NoError(t, err)
	require.NoError(t, c.Start(ctx))
	require.Len(t, c.Catalog.Items(), 2)
	assert.Empty(t, *seenAuth)

	_, err = c.Auth.Login(ctx, authUC.Credentials{Username: "alice", Password: "Secret123"})
	require.NoError(t, err)
	phone, err := c.Catalog.Product(1)
	require.NoError(t, err)
	_, err = c.Cart.Add(ctx, phone)
	require.NoError(t, err)
	_, err = c.Cart.Add(ctx, phone)
	require.NoError(t, err)

	_, err = c.Catalog.Refresh(ctx)
	require.NoError(t, err)
	assert.Contains(t, *seenAuth, "Bearer ")

	status := c.Monitor.Check(ctx)
	assert.True(t, status.Healthy)
	require.NoError(t, manager.Shutdown(ctx))

	manager = lifecycle.New(time.Second, nil)
	restarted, err := Build(ctx, cfg, manager, nil, WithDial(dial), WithScheduler(scheduler.NewManual()))
	require.NoError(t, err)
	require.NoError(t, restarted.Start(ctx))
	defer manager.Shutdown(ctx)

	session := restarted.Auth.Session(ctx)
	require.True(t, session.Authenticated())
	assert.Equal(t, "alice", session.Identity.Subject)

	items := restarted.Cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Phone", items[0].Name)
}

func TestContainer_RedisDriver(t *testing.T) {
	mr := miniredis.RunT(t)
	dial, _ := backend(t)
	cfg := testConfig(t)
	cfg.State.Driver = config.StateDriverRedis
	cfg.Redis = config.RedisConfig{URL: "redis://" + mr.Addr(), Prefix: "shop:"}
	ctx := context.Background()

	manager := lifecycle.New(time.Second, nil)
	c, err := Build(ctx, cfg, manager, nil, WithDial(dial), WithScheduler(scheduler.NewManual()))
	require.NoError(t, err)
	defer manager.Shutdown(ctx)
	require.NoError(t, c.Start(ctx))

	p, err := c.Catalog.Product(2)
	require.NoError(t, err)
	_, err = c.Cart.Add(ctx, p)
	require.NoError(t, err)

	raw, err := mr.Get("shop:cart")
	require.NoError(t, err)
	assert.Contains(t, raw, `"quantity":1`)
	assert.True(t, c.Monitor.Check(ctx).Healthy)
}

func TestContainer_CatalogFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	dial := func(string) (net.Conn, error) { return nil, assert.AnError }

	manager := lifecycle.New(time.Second, nil)
	c, err := Build(ctx, cfg, manager, nil, WithDial(dial), WithScheduler(scheduler.NewManual()))
	require.NoError(t, err)
	defer manager.Shutdown(ctx)

	require.NoError(t, c.Start(ctx))
	assert.NotEmpty(t, c.Catalog.LastError())
	assert.False(t, c.Monitor.Check(ctx).Healthy)
}
