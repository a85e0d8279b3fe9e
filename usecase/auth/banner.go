package auth

import (
	"errors"
	"sync"

	"github.com/fastygo/storefront/domain"
)

const (
	MsgGenericFailure     = "Something went wrong. Please try again later."
	MsgInvalidDetails     = "Invalid details. Please check your input and try again."
	MsgInvalidCredentials = "Invalid username or password. Please try again."
	MsgDuplicateEmail     = "This email is already registered. Try logging in instead."
	MsgEmailInUse         = "Email already in use"
	MsgInvalidOTP         = "Invalid OTP. Please try again."
	MsgCheckFields        = "Please fix the highlighted fields and try again."
	MsgBusy               = "Please wait for the current request to finish."

	MsgRegistered    = "Account created! Redirecting to verify your email..."
	MsgLoggedIn      = "Login successful! Redirecting..."
	MsgOTPVerified   = "OTP verified successfully! Redirecting..."
	MsgPasswordReset = "Password reset successful, Login with your new password"
)

type BannerKind string

const (
	BannerNone    BannerKind = ""
	BannerError   BannerKind = "error"
	BannerSuccess BannerKind = "success"
)

// Banner is the single status message a form shows.
type Banner struct {
	Kind BannerKind `json:"kind,omitempty"`
	Text string     `json:"text,omitempty"`
	// Fields carries per-field messages for validation and duplicate email.
	Fields map[string]string `json:"fields,omitempty"`
	// LoginShortcut offers a jump to the login flow for Email.
	LoginShortcut bool   `json:"login_shortcut,omitempty"`
	Email         string `json:"email,omitempty"`
}

func (b Banner) Visible() bool {
	return b.Kind != BannerNone
}

// Success builds a success banner.
func Success(text string) Banner {
	return Banner{Kind: BannerSuccess, Text: text}
}

// Message returns the user-visible text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if domain.FieldErrors(err) != nil {
		return MsgCheckFields
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		switch dErr.Code {
		case domain.ErrCodeDuplicateEmail:
			return MsgDuplicateEmail
		case domain.ErrCodeBusy:
			return MsgBusy
		case domain.ErrCodeMalformedState, domain.ErrCodeNotFound:
			return MsgGenericFailure
		}
		return dErr.Message
	}
	return MsgGenericFailure
}

// BannerFor builds the error banner for err.
func BannerFor(err error) Banner {
	if err == nil {
		return Banner{}
	}
	b := Banner{Kind: BannerError, Text: Message(err)}
	if fields := domain.FieldErrors(err); fields != nil {
		b.Fields = make(map[string]string, len(fields))
		for k, v := range fields {
			b.Fields[k] = v
		}
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) && dErr.Code == domain.ErrCodeDuplicateEmail {
		b.Fields = map[string]string{"email": MsgEmailInUse}
		b.LoginShortcut = true
		b.Email = dErr.Email
	}
	return b
}

// Status holds the banner of one form. Any edit clears it.
type Status struct {
	mu     sync.Mutex
	banner Banner
}

func (s *Status) Fail(err error) {
	s.set(BannerFor(err))
}

func (s *Status) Succeed(text string) {
	s.set(Success(text))
}

// Edit clears the banner.
func (s *Status) Edit() {
	s.set(Banner{})
}

func (s *Status) Banner() Banner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.banner
}

func (s *Status) set(b Banner) {
	s.mu.Lock()
	s.banner = b
	s.mu.Unlock()
}
