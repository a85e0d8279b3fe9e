package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/httpcontext"
	appLogger "github.com/fastygo/storefront/pkg/logger"
	authUC "github.com/fastygo/storefront/usecase/auth"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	return h.adapter.Attach(ctx)
}

func (h baseHandler) log(ctx context.Context) *zap.Logger {
	return appLogger.WithRequestID(ctx, h.logger)
}

// decode reads a JSON body into out. An empty body leaves out untouched.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, out interface{}) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, out); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalidInput), "invalid payload", nil))
		return false
	}
	return true
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(payload.Encode())
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

// respondError renders err as the form banner. meta carries extra state the
// UI needs alongside the banner, such as the reset OTP screen.
func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error, meta interface{}) {
	status, code := mapError(err)
	h.respondJSON(ctx, status, transport.NewError(code, authUC.BannerFor(err), meta))
}

func mapError(err error) (int, string) {
	code := domain.CodeOf(err)
	switch code {
	case domain.ErrCodeInvalidInput, domain.ErrCodeInvalidOTP:
		return http.StatusBadRequest, string(code)
	case domain.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized, string(code)
	case domain.ErrCodeDuplicateEmail, domain.ErrCodeBusy:
		return http.StatusConflict, string(code)
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, string(code)
	case domain.ErrCodeTransient:
		return http.StatusBadGateway, string(code)
	default:
		return http.StatusInternalServerError, transport.CodeInternal
	}
}

// idParam parses the {id} route segment.
func idParam(ctx *fasthttp.RequestCtx) (int64, error) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.WrapError(domain.ErrCodeInvalidInput, "invalid product id", err)
	}
	return id, nil
}
