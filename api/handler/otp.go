package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/httpcontext"
	authUC "github.com/fastygo/storefront/usecase/auth"
)

// OTPHandler drives the open verification screen step by step.
type OTPHandler struct {
	baseHandler
	flows *authUC.Flows
}

func NewOTPHandler(flows *authUC.Flows, adapter *httpcontext.Adapter, logger *zap.Logger) *OTPHandler {
	return &OTPHandler{
		baseHandler: newBaseHandler(adapter, logger),
		flows:       flows,
	}
}

func (h *OTPHandler) current(ctx *fasthttp.RequestCtx) (*authUC.Verification, bool) {
	flow, ok := h.flows.Current()
	if !ok {
		h.respondError(ctx, domain.ErrNoPendingOTP, nil)
		return nil, false
	}
	return flow, true
}

// @Summary OTP screen state
// @Tags otp
// @Router /api/session/otp [get]
func (h *OTPHandler) Get(ctx *fasthttp.RequestCtx) {
	if flow, ok := h.current(ctx); ok {
		h.respondSuccess(ctx, http.StatusOK, flow.State())
	}
}

// @Summary Enter one digit
// @Tags otp
// @Router /api/session/otp/digit [post]
func (h *OTPHandler) Digit(ctx *fasthttp.RequestCtx) {
	flow, ok := h.current(ctx)
	if !ok {
		return
	}
	var req transport.OTPDigitRequest
	if !h.decode(ctx, &req) {
		return
	}
	var accepted bool
	if req.Slot != nil {
		accepted = flow.Enter(*req.Slot, req.Value)
	} else {
		accepted = flow.Type(req.Value)
	}
	if !accepted {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalidInput), "only single digits are accepted", flow.State()))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, flow.State())
}

// @Summary Backspace
// @Tags otp
// @Router /api/session/otp/backspace [post]
func (h *OTPHandler) Backspace(ctx *fasthttp.RequestCtx) {
	if flow, ok := h.current(ctx); ok {
		flow.Backspace()
		h.respondSuccess(ctx, http.StatusOK, flow.State())
	}
}

// @Summary Paste a full code
// @Tags otp
// @Router /api/session/otp/paste [post]
func (h *OTPHandler) Paste(ctx *fasthttp.RequestCtx) {
	flow, ok := h.current(ctx)
	if !ok {
		return
	}
	var req transport.OTPPasteRequest
	if !h.decode(ctx, &req) {
		return
	}
	if !flow.Paste(req.Text) {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalidInput), "paste must be exactly 6 digits", flow.State()))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, flow.State())
}

// @Summary Submit the entered code
// @Tags otp
// @Router /api/session/otp/submit [post]
func (h *OTPHandler) Submit(ctx *fasthttp.RequestCtx) {
	flow, ok := h.current(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := flow.Submit(stdCtx)
	if err != nil {
		h.respondError(ctx, err, flow.State())
		return
	}
	state := flow.State()
	h.flows.End()
	h.respondSuccess(ctx, http.StatusOK, transport.VerificationView{
		Verification: state,
		Session: &transport.SessionView{
			Authenticated: session.Authenticated(),
			Identity:      session.Identity,
		},
	})
}

// @Summary Restart the countdown
// @Tags otp
// @Router /api/session/otp/resend [post]
func (h *OTPHandler) Resend(ctx *fasthttp.RequestCtx) {
	flow, ok := h.current(ctx)
	if !ok {
		return
	}
	if err := flow.Resend(); err != nil {
		h.respondError(ctx, err, flow.State())
		return
	}
	h.respondSuccess(ctx, http.StatusOK, flow.State())
}

// @Summary Leave the OTP screen
// @Tags otp
// @Router /api/session/otp [delete]
func (h *OTPHandler) Close(ctx *fasthttp.RequestCtx) {
	h.flows.End()
	ctx.SetStatusCode(http.StatusNoContent)
}
