package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/pkg/httpcontext"
)

// Middleware wraps a request handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// RequestObserver receives one observation per completed request.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Chain applies mws so the first one is the outermost.
func Chain(h fasthttp.RequestHandler, mws ...Middleware) fasthttp.RequestHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequestID assigns the correlation id before anything else runs.
func RequestID() Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			httpcontext.RequestID(ctx)
			next(ctx)
		}
	}
}

// AccessLog writes one structured line per request and feeds observer, if any.
func AccessLog(logger *zap.Logger, observer RequestObserver) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			started := time.Now()
			next(ctx)
			elapsed := time.Since(started)

			method := string(ctx.Method())
			route := routeOf(ctx)
			status := ctx.Response.StatusCode()
			if observer != nil {
				observer.ObserveRequest(method, route, status, elapsed)
			}
			logger.Info("request",
				zap.String("request_id", httpcontext.RequestID(ctx)),
				zap.String("method", method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("elapsed", elapsed),
			)
		}
	}
}

// Recover turns a handler panic into a 500 envelope.
func Recover(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic",
						zap.String("request_id", httpcontext.RequestID(ctx)),
						zap.String("panic", fmt.Sprint(rec)),
						zap.Stack("stack"),
					)
					ctx.ResetBody()
					ctx.Response.Header.SetContentType("application/json")
					ctx.SetStatusCode(http.StatusInternalServerError)
					ctx.SetBodyString(string(transport.NewError(transport.CodeInternal, "internal error", nil).Encode()))
				}
			}()
			next(ctx)
		}
	}
}

// routeOf prefers the matched route pattern so metric labels stay bounded.
func routeOf(ctx *fasthttp.RequestCtx) string {
	if pattern, ok := ctx.UserValue(router.MatchedRoutePathParam).(string); ok && pattern != "" {
		return pattern
	}
	if ctx.Response.StatusCode() == http.StatusNotFound {
		return "unmatched"
	}
	return string(ctx.Path())
}
