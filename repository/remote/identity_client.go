package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fastygo/storefront/internal/config"
	"github.com/fastygo/storefront/internal/infrastructure/httpclient"
	"github.com/fastygo/storefront/repository"
)

type tokenResponse struct {
	JWTToken string `json:"jwtToken"`
}

type identityGateway struct {
	client    *httpclient.Client
	register  string
	login     string
	verifyOTP string
	reset     string
}

// NewIdentityGateway talks to the identity service. Register, login and
// forgot-password live under the user prefix; verify-otp lives at the root.
func NewIdentityGateway(client *httpclient.Client, cfg config.BackendConfig) repository.IdentityGateway {
	return &identityGateway{
		client:    client,
		register:  cfg.UserURL("register"),
		login:     cfg.UserURL("login"),
		verifyOTP: cfg.RootURL("verify-otp"),
		reset:     cfg.UserURL("forgot-password"),
	}
}

func (g *identityGateway) Register(ctx context.Context, req repository.RegisterRequest) error {
	_, err := g.post(ctx, g.register, req)
	return err
}

func (g *identityGateway) Login(ctx context.Context, req repository.LoginRequest) (string, error) {
	resp, err := g.post(ctx, g.login, req)
	if err != nil {
		return "", err
	}
	return decodeToken(resp)
}

func (g *identityGateway) VerifyOTP(ctx context.Context, req repository.VerifyOTPRequest) (string, error) {
	resp, err := g.post(ctx, g.verifyOTP, req)
	if err != nil {
		return "", err
	}
	return decodeToken(resp)
}

func (g *identityGateway) ResetPassword(ctx context.Context, req repository.ResetPasswordRequest) error {
	_, err := g.post(ctx, g.reset, req)
	return err
}

// post succeeds only on 200; every other status, 2xx included, is a ResponseError.
func (g *identityGateway) post(ctx context.Context, url string, payload interface{}) (*httpclient.Response, error) {
	resp, err := g.client.Do(ctx, http.MethodPost, url, payload)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, &repository.ResponseError{Status: resp.Status, Message: resp.Message()}
	}
	return resp, nil
}

func decodeToken(resp *httpclient.Response) (string, error) {
	var body tokenResponse
	if err := resp.Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrNoToken, err)
	}
	token := strings.TrimSpace(body.JWTToken)
	if token == "" {
		return "", repository.ErrNoToken
	}
	return token, nil
}
