package repository

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoToken reports a success reply that carried no usable token. It is not
// a ResponseError: the service accepted the request.
var ErrNoToken = errors.New("identity reply carried no token")

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
	Terms           bool   `json:"terms"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type VerifyOTPRequest struct {
	Email   string `json:"email"`
	OTPCode string `json:"otpCode"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// IdentityGateway talks to the remote identity service. Every non-success
// reply is reported as *ResponseError; transport failures are returned as is.
type IdentityGateway interface {
	Register(ctx context.Context, req RegisterRequest) error
	Login(ctx context.Context, req LoginRequest) (string, error)
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (string, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

// ResponseError reports a reply whose status is not the operation's success status.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote status %d", e.Status)
	}
	return fmt.Sprintf("remote status %d: %s", e.Status, e.Message)
}
