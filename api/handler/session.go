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

type SessionHandler struct {
	baseHandler
	uc    *authUC.UseCase
	flows *authUC.Flows
}

func NewSessionHandler(uc *authUC.UseCase, flows *authUC.Flows, adapter *httpcontext.Adapter, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		flows:       flows,
	}
}

// @Summary Current session
// @Tags session
// @Router /api/session [get]
func (h *SessionHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	h.respondSuccess(ctx, http.StatusOK, h.view(h.uc.Session(stdCtx), nil))
}

// @Summary Register and open the OTP screen
// @Tags session
// @Router /api/session/register [post]
func (h *SessionHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	pending, err := h.uc.Register(stdCtx, authUC.RegistrationForm{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            req.Role,
		Terms:           req.Terms,
	})
	if err != nil {
		h.respondError(ctx, err, nil)
		return
	}

	flow, err := h.flows.Begin(pending.Email)
	if err != nil {
		h.log(stdCtx).Error("failed to open verification", zap.Error(err))
		h.respondError(ctx, err, nil)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.RegisterView{
		Pending:      pending,
		Verification: flow.State(),
		Banner:       authUC.Success(authUC.MsgRegistered),
	})
}

// @Summary Log in
// @Tags session
// @Router /api/session/login [post]
func (h *SessionHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.Login(stdCtx, authUC.Credentials{
		Username: req.Username,
		Password: req.Password,
		Remember: req.Remember,
	})
	if err != nil {
		h.respondError(ctx, err, nil)
		return
	}
	if !session.Authenticated() {
		h.respondSuccess(ctx, http.StatusOK, h.view(session, nil))
		return
	}
	banner := authUC.Success(authUC.MsgLoggedIn)
	h.respondSuccess(ctx, http.StatusOK, h.view(session, &banner))
}

// @Summary Log out
// @Tags session
// @Router /api/session/logout [post]
func (h *SessionHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx); err != nil {
		h.respondError(ctx, err, nil)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.view(domain.Session{}, nil))
}

// @Summary Reset password
// @Tags session
// @Router /api/session/reset-password [post]
func (h *SessionHandler) ResetPassword(ctx *fasthttp.RequestCtx) {
	var req transport.ResetPasswordRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	err := h.uc.ResetPassword(stdCtx, authUC.ResetForm{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.respondError(ctx, err, nil)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, authUC.Success(authUC.MsgPasswordReset))
}

// @Summary Verify an OTP directly
// @Tags session
// @Router /api/session/verify [post]
func (h *SessionHandler) Verify(ctx *fasthttp.RequestCtx) {
	var req transport.VerifyOTPRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.VerifyOTP(stdCtx, req.Email, req.OTPCode)
	if err != nil {
		h.respondError(ctx, err, nil)
		return
	}
	h.flows.End()
	var banner authUC.Banner
	if session.Authenticated() {
		banner = authUC.Success(authUC.MsgOTPVerified)
	}
	h.respondSuccess(ctx, http.StatusOK, h.view(session, &banner))
}

func (h *SessionHandler) view(session domain.Session, banner *authUC.Banner) transport.SessionView {
	if banner != nil && !banner.Visible() {
		banner = nil
	}
	return transport.SessionView{
		Authenticated: session.Authenticated(),
		Identity:      session.Identity,
		Pending:       h.uc.Pending(),
		Banner:        banner,
	}
}
