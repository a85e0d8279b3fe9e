package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/usecase"
)

var errResendUnavailable = domain.NewError(domain.ErrCodeInvalidInput, "A new code can be requested once the timer runs out.")

// Verifier is the part of the session manager an OTP screen needs.
type Verifier interface {
	VerifyOTP(ctx context.Context, email, code string) (domain.Session, error)
	RenewPending(email string)
	DiscardPending(email string)
}

// VerificationState is a snapshot of the OTP screen.
type VerificationState struct {
	Email     string   `json:"email"`
	Slots     []string `json:"slots"`
	Focus     int      `json:"focus"`
	Entry     string   `json:"entry"`
	CanSubmit bool     `json:"can_submit"`
	TimeLeft  int      `json:"time_left"`
	Clock     string   `json:"clock"`
	CanResend bool     `json:"can_resend"`
	Banner    Banner   `json:"banner"`
	Verified  bool     `json:"verified"`
	Closed    bool     `json:"closed"`
}

// Verification drives one OTP screen: the digit entry, the resend countdown
// and the banner. Close it when the user navigates away.
type Verification struct {
	verifier  Verifier
	email     string
	countdown *Countdown
	status    Status

	mu       sync.Mutex
	entry    *OTPEntry
	verified bool
	closed   bool
}

// NewVerification opens the OTP screen for email and starts the countdown.
func NewVerification(verifier Verifier, scheduler usecase.Scheduler, email string, ttl time.Duration) (*Verification, error) {
	v := &Verification{
		verifier:  verifier,
		email:     email,
		countdown: NewCountdown(scheduler, ttl),
		entry:     NewOTPEntry(),
	}
	if err := v.countdown.Start(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Verification) Email() string {
	return v.email
}

// Enter sets a slot. Any edit clears the banner.
func (v *Verification) Enter(slot int, value string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}
	ok := v.entry.Enter(slot, value)
	if ok {
		v.status.Edit()
	}
	return ok
}

// Type enters value into the focused slot.
func (v *Verification) Type(value string) bool {
	v.mu.Lock()
	slot := v.entry.Focus()
	v.mu.Unlock()
	return v.Enter(slot, value)
}

func (v *Verification) Backspace() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.entry.Backspace()
	v.status.Edit()
}

func (v *Verification) Paste(text string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}
	ok := v.entry.Paste(text)
	if ok {
		v.status.Edit()
	}
	return ok
}

// Submit sends the entered code. On failure the entry resets to empty with
// focus on the first slot and the error banner is shown.
func (v *Verification) Submit(ctx context.Context) (domain.Session, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return domain.Session{}, domain.ErrNoPendingOTP
	}
	code := v.entry.Code()
	v.mu.Unlock()

	session, err := v.verifier.VerifyOTP(ctx, v.email, code)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeBusy) {
			v.entry.Reset()
		}
		v.status.Fail(err)
		return domain.Session{}, err
	}
	if !session.Authenticated() {
		// Accepted code but unusable token: signed out without a banner.
		v.entry.Reset()
		v.status.Edit()
		return session, nil
	}
	v.verified = true
	v.countdown.Stop()
	v.status.Succeed(MsgOTPVerified)
	return session, nil
}

// Resend restarts the countdown once it has run out. No request is sent; the
// identity service has no re-issue endpoint.
func (v *Verification) Resend() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return domain.ErrNoPendingOTP
	}
	if !v.countdown.CanResend() {
		return errResendUnavailable
	}
	if err := v.countdown.Start(); err != nil {
		return err
	}
	v.entry.Reset()
	v.status.Edit()
	v.verifier.RenewPending(v.email)
	return nil
}

// Close stops the countdown and discards the pending registration.
func (v *Verification) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.countdown.Stop()
	if !v.verified {
		v.verifier.DiscardPending(v.email)
	}
}

func (v *Verification) State() VerificationState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return VerificationState{
		Email:     v.email,
		Slots:     v.entry.Slots(),
		Focus:     v.entry.Focus(),
		Entry:     v.entry.State().String(),
		CanSubmit: v.entry.Complete() && !v.closed && !v.verified,
		TimeLeft:  v.countdown.Remaining(),
		Clock:     v.countdown.Format(),
		CanResend: v.countdown.CanResend(),
		Banner:    v.status.Banner(),
		Verified:  v.verified,
		Closed:    v.closed,
	}
}
