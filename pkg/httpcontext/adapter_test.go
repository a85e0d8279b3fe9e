package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/storefront/pkg/logger"
)

func TestRequestID_ReusesIncomingHeader(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set(HeaderRequestID, "abc")

	assert.Equal(t, "abc", RequestID(&ctx))
	assert.Equal(t, "abc", string(ctx.Response.Header.Peek(HeaderRequestID)))
}

func TestRequestID_StableWithinRequest(t *testing.T) {
	var ctx fasthttp.RequestCtx
	first := RequestID(&ctx)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, RequestID(&ctx))
}

func TestAttach(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set(HeaderRequestID, "req-1")

	stdCtx, cancel := NewAdapter(time.Second).Attach(&ctx)
	defer cancel()

	assert.Equal(t, "req-1", appLogger.RequestID(stdCtx))
	deadline, ok := stdCtx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 200*time.Millisecond)
}
