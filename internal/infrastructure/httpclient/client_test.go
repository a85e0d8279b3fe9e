package httpclient

import (
	"context"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	appLogger "github.com/fastygo/storefront/pkg/logger"
)

type captured struct {
	mu      sync.Mutex
	auth    string
	reqID   string
	body    string
	ctype   string
	method  string
	present bool
}

func startServer(t *testing.T, status int, body string) (*captured, fasthttp.DialFunc) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	seen := &captured{}
	go func() {
		_ = fasthttp.Serve(ln, func(ctx *fasthttp.RequestCtx) {
			seen.mu.Lock()
			seen.auth = string(ctx.Request.Header.Peek("Authorization"))
			seen.present = len(ctx.Request.Header.Peek("Authorization")) > 0
			seen.reqID = string(ctx.Request.Header.Peek("X-Request-ID"))
			seen.body = string(ctx.PostBody())
			seen.ctype = string(ctx.Request.Header.ContentType())
			seen.method = string(ctx.Method())
			seen.mu.Unlock()
			ctx.SetStatusCode(status)
			ctx.SetBodyString(body)
		})
	}()
	t.Cleanup(func() { ln.Close() })
	return seen, func(string) (net.Conn, error) { return ln.Dial() }
}

func TestDo_AttachesBearerWhenTokenPresent(t *testing.T) {
	seen, dial := startServer(t, http.StatusOK, `{"ok":true}`)
	client := New(func() string { return "tok" }, Options{Dial: dial}, nil)

	resp, err := client.Do(context.Background(), http.MethodPost, "http://backend.test/login", map[string]string{"username": "u"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))

	seen.mu.Lock()
	defer seen.mu.Unlock()
	assert.Equal(t, "Bearer tok", seen.auth)
	assert.Equal(t, http.MethodPost, seen.method)
	assert.Equal(t, "application/json", seen.ctype)
	assert.JSONEq(t, `{"username":"u"}`, seen.body)
	assert.NotEmpty(t, seen.reqID)
}

func TestDo_OmitsAuthorizationWithoutToken(t *testing.T) {
	seen, dial := startServer(t, http.StatusOK, `[]`)
	client := New(nil, Options{Dial: dial}, nil)

	_, err := client.Do(context.Background(), http.MethodGet, "http://backend.test/api/products", nil)
	require.NoError(t, err)

	seen.mu.Lock()
	defer seen.mu.Unlock()
	assert.False(t, seen.present)
	assert.Empty(t, seen.body)
}

func TestDo_PropagatesRequestIDFromContext(t *testing.T) {
	seen, dial := startServer(t, http.StatusNoContent, "")
	client := New(nil, Options{Dial: dial}, nil)

	ctx := appLogger.ContextWithRequestID(context.Background(), "req-42")
	_, err := client.Do(ctx, http.MethodGet, "http://backend.test/", nil)
	require.NoError(t, err)

	seen.mu.Lock()
	defer seen.mu.Unlock()
	assert.Equal(t, "req-42", seen.reqID)
}

func TestDo_NonSuccessStatusIsNotAnError(t *testing.T) {
	_, dial := startServer(t, http.StatusUnauthorized, `{"message":"bad credentials"}`)
	client := New(nil, Options{Dial: dial}, nil)

	resp, err := client.Do(context.Background(), http.MethodPost, "http://backend.test/login", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, "bad credentials", resp.Message())
}

func TestDo_TransportFailure(t *testing.T) {
	dial := func(string) (net.Conn, error) { return nil, assert.AnError }
	client := New(nil, Options{Dial: dial, Timeout: time.Second}, nil)

	_, err := client.Do(context.Background(), http.MethodGet, "http://backend.test/", nil)
	assert.Error(t, err)
}

func TestDo_RateLimiterHonorsContext(t *testing.T) {
	_, dial := startServer(t, http.StatusOK, "")
	client := New(nil, Options{Dial: dial, RateLimit: 0.001, RateBurst: 1}, nil)

	_, err := client.Do(context.Background(), http.MethodGet, "http://backend.test/", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = client.Do(ctx, http.MethodGet, "http://backend.test/", nil)
	assert.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	cases := map[string]string{
		``:                          "",
		`{"message":"Invalid OTP"}`: "Invalid OTP",
		`{"error":"x"}`:             "",
		`"Email exists"`:            "Email exists",
		`User not found`:            "User not found",
		`[1,2]`:                     "",
		`{broken`:                   "",
	}
	for body, want := range cases {
		assert.Equal(t, want, ErrorMessage([]byte(body)), body)
	}
}
