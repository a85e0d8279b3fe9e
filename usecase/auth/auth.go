package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
	"github.com/fastygo/storefront/usecase"
)

// DefaultOTPTTL is the validity window of a freshly issued passcode.
const DefaultOTPTTL = 120 * time.Second

type operation string

const (
	opRegister operation = "register"
	opLogin    operation = "login"
	opVerify   operation = "verify_otp"
	opReset    operation = "reset_password"
)

// Options tune the session manager.
type Options struct {
	OTPTTL time.Duration
	Now    func() time.Time
}

// UseCase is the session manager. It owns the bearer token, the identity
// decoded from it and the pending OTP registration.
type UseCase struct {
	identity repository.IdentityGateway
	tokens   repository.TokenRepository
	decoder  *TokenDecoder
	events   usecase.Publisher
	otpTTL   time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu      sync.RWMutex
	session domain.Session
	pending *domain.PendingRegistration

	flightMu sync.Mutex
	inflight map[operation]bool
}

func New(identity repository.IdentityGateway, tokens repository.TokenRepository, decoder *TokenDecoder, events usecase.Publisher, opts Options, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = DefaultOTPTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if decoder == nil {
		decoder = NewTokenDecoder("", opts.Now)
	}
	return &UseCase{
		identity: identity,
		tokens:   tokens,
		decoder:  decoder,
		events:   events,
		otpTTL:   opts.OTPTTL,
		now:      opts.Now,
		logger:   logger,
		inflight: make(map[operation]bool),
	}
}

// Restore loads the persisted token at startup. A token that cannot be decoded
// is deleted and the manager starts signed out.
func (uc *UseCase) Restore(ctx context.Context) error {
	token, err := uc.tokens.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrStateNotFound) {
			return nil
		}
		return err
	}
	if token == "" {
		return nil
	}

	identity, err := uc.decoder.Decode(token)
	if err != nil {
		uc.logger.Warn("discarding persisted token", zap.Error(err))
		if delErr := uc.tokens.Delete(ctx); delErr != nil {
			uc.logger.Warn("failed to delete persisted token", zap.Error(delErr))
		}
		return nil
	}

	uc.commit(ctx, domain.Session{Token: token, Identity: identity})
	uc.logger.Info("session restored", zap.String("subject", identity.Subject))
	return nil
}

// Register submits form and, on success, opens a pending registration awaiting OTP.
func (uc *UseCase) Register(ctx context.Context, form RegistrationForm) (*domain.PendingRegistration, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	done, err := uc.begin(opRegister)
	if err != nil {
		return nil, err
	}
	defer done()

	if err := uc.identity.Register(ctx, form.request()); err != nil {
		uc.logger.Info("registration rejected", zap.Error(err))
		return nil, registerError(form.Email, err)
	}

	pending := &domain.PendingRegistration{
		Email:     form.Email,
		ExpiresAt: uc.now().Add(uc.otpTTL),
	}
	uc.mu.Lock()
	uc.pending = pending
	uc.mu.Unlock()

	uc.logger.Info("registration pending verification")
	clone := *pending
	return &clone, nil
}

// VerifyOTP confirms the pending registration for email with code. An empty
// email falls back to the pending one.
func (uc *UseCase) VerifyOTP(ctx context.Context, email, code string) (domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		uc.mu.RLock()
		if uc.pending != nil {
			email = uc.pending.Email
		}
		uc.mu.RUnlock()
	}
	if email == "" {
		return domain.Session{}, domain.ErrNoPendingOTP
	}

	done, err := uc.begin(opVerify)
	if err != nil {
		return domain.Session{}, err
	}
	defer done()

	if !ValidOTP(code) {
		uc.recordFailure(email, false)
		return domain.Session{}, domain.WrapError(domain.ErrCodeInvalidOTP, MsgInvalidOTP, errors.New("passcode must be 6 digits"))
	}

	token, err := uc.identity.VerifyOTP(ctx, repository.VerifyOTPRequest{Email: email, OTPCode: code})
	if err != nil {
		var respErr *repository.ResponseError
		if errors.As(err, &respErr) {
			uc.recordFailure(email, true)
			return domain.Session{}, domain.WrapError(domain.ErrCodeInvalidOTP, MsgInvalidOTP, err)
		}
		uc.recordFailure(email, false)
		return domain.Session{}, domain.WrapError(domain.ErrCodeTransient, MsgGenericFailure, err)
	}

	session, err := uc.establish(ctx, token)
	if err != nil {
		return domain.Session{}, err
	}
	uc.DiscardPending(email)
	return session, nil
}

// Login authenticates credentials and persists the returned token.
func (uc *UseCase) Login(ctx context.Context, creds Credentials) (domain.Session, error) {
	if err := creds.Validate(); err != nil {
		return domain.Session{}, err
	}
	done, err := uc.begin(opLogin)
	if err != nil {
		return domain.Session{}, err
	}
	defer done()

	token, err := uc.identity.Login(ctx, creds.request())
	if err != nil {
		uc.logger.Info("login rejected", zap.Error(err))
		return domain.Session{}, loginError(err)
	}
	return uc.establish(ctx, token)
}

// ResetPassword submits a new password for the account behind form.Email.
func (uc *UseCase) ResetPassword(ctx context.Context, form ResetForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	done, err := uc.begin(opReset)
	if err != nil {
		return err
	}
	defer done()

	if err := uc.identity.ResetPassword(ctx, form.request()); err != nil {
		uc.logger.Info("password reset rejected", zap.Error(err))
		return resetError(err)
	}
	return nil
}

// Logout clears the session and its persisted token. Calling it while signed
// out is a no-op.
func (uc *UseCase) Logout(ctx context.Context) error {
	if err := uc.tokens.Delete(ctx); err != nil && !errors.Is(err, domain.ErrStateNotFound) {
		return domain.WrapError(domain.ErrCodeTransient, MsgGenericFailure, err)
	}
	uc.mu.RLock()
	wasSet := uc.session.Token != ""
	uc.mu.RUnlock()
	if wasSet {
		uc.commit(ctx, domain.Session{})
	}
	return nil
}

// Session returns the current session. An identity that expired since it was
// decoded is dropped before returning.
func (uc *UseCase) Session(ctx context.Context) domain.Session {
	uc.mu.RLock()
	session := uc.session
	uc.mu.RUnlock()

	if session.Identity != nil && session.Identity.IsExpired(uc.now()) {
		uc.logger.Info("session expired", zap.String("subject", session.Identity.Subject))
		if err := uc.tokens.Delete(ctx); err != nil {
			uc.logger.Warn("failed to delete expired token", zap.Error(err))
		}
		uc.commit(ctx, domain.Session{})
		return domain.Session{}
	}
	return copySession(session)
}

// Token returns the bearer token to attach to outgoing requests, or "".
func (uc *UseCase) Token() string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if uc.session.Identity == nil || uc.session.Identity.IsExpired(uc.now()) {
		return ""
	}
	return uc.session.Token
}

// Pending returns a copy of the pending registration, or nil.
func (uc *UseCase) Pending() *domain.PendingRegistration {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if uc.pending == nil {
		return nil
	}
	clone := *uc.pending
	return &clone
}

// RenewPending restarts the validity window of the pending registration for email.
func (uc *UseCase) RenewPending(email string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.pending != nil && strings.EqualFold(uc.pending.Email, email) {
		uc.pending.ExpiresAt = uc.now().Add(uc.otpTTL)
		uc.pending.AttemptsExhausted = false
	}
}

// DiscardPending drops the pending registration for email.
func (uc *UseCase) DiscardPending(email string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.pending != nil && strings.EqualFold(uc.pending.Email, email) {
		uc.pending = nil
	}
}

// establish decodes token, persists it and commits the session. A token that
// cannot be decoded leaves the manager signed out without an error.
func (uc *UseCase) establish(ctx context.Context, token string) (domain.Session, error) {
	identity, err := uc.decoder.Decode(token)
	if err != nil {
		uc.logger.Warn("received token could not be decoded", zap.Error(err))
		if delErr := uc.tokens.Delete(ctx); delErr != nil {
			uc.logger.Warn("failed to delete persisted token", zap.Error(delErr))
		}
		uc.commit(ctx, domain.Session{})
		return domain.Session{}, nil
	}

	if err := uc.tokens.Save(ctx, token); err != nil {
		uc.logger.Error("failed to persist token", zap.Error(err))
		return domain.Session{}, domain.WrapError(domain.ErrCodeTransient, MsgGenericFailure, err)
	}

	session := domain.Session{Token: token, Identity: identity}
	uc.commit(ctx, session)
	uc.logger.Info("session established", zap.String("subject", identity.Subject), zap.String("role", identity.Role))
	return copySession(session), nil
}

func (uc *UseCase) commit(ctx context.Context, session domain.Session) {
	uc.mu.Lock()
	uc.session = session
	uc.mu.Unlock()
	if uc.events != nil {
		uc.events.Publish(ctx, usecase.TopicSessionChanged, copySession(session))
	}
}

func (uc *UseCase) recordFailure(email string, complete bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.pending == nil || !strings.EqualFold(uc.pending.Email, email) {
		return
	}
	uc.pending.FailedAttempts++
	if complete {
		uc.pending.AttemptsExhausted = true
	}
}

// begin marks op as in flight. A second call before done fails with BUSY.
func (uc *UseCase) begin(op operation) (func(), error) {
	uc.flightMu.Lock()
	defer uc.flightMu.Unlock()
	if uc.inflight[op] {
		return nil, domain.ErrBusy
	}
	uc.inflight[op] = true
	return func() {
		uc.flightMu.Lock()
		delete(uc.inflight, op)
		uc.flightMu.Unlock()
	}, nil
}

func copySession(s domain.Session) domain.Session {
	if s.Identity != nil {
		identity := *s.Identity
		s.Identity = &identity
	}
	return s
}

func registerError(email string, err error) error {
	var respErr *repository.ResponseError
	if !errors.As(err, &respErr) {
		return domain.WrapError(domain.ErrCodeTransient, MsgGenericFailure, err)
	}
	switch respErr.Status {
	case http.StatusIMUsed:
		dErr := domain.NewDuplicateEmail(email)
		dErr.Err = err
		return dErr
	case http.StatusBadRequest:
		return domain.WrapError(domain.ErrCodeInvalidInput, messageOr(respErr, MsgInvalidDetails), err)
	default:
		return domain.WrapError(domain.ErrCodeTransient, messageOr(respErr, MsgGenericFailure), err)
	}
}

func loginError(err error) error {
	var respErr *repository.ResponseError
	if !errors.As(err, &respErr) {
		return domain.WrapError(domain.ErrCodeTransient, MsgGenericFailure, err)
	}
	if respErr.Status == http.StatusUnauthorized {
		return domain.WrapError(domain.ErrCodeInvalidCredentials, MsgInvalidCredentials, err)
	}
	return domain.WrapError(domain.ErrCodeTransient, messageOr(respErr, MsgGenericFailure), err)
}

func resetError(err error) error {
	var respErr *repository.ResponseError
	if !errors.As(err, &respErr) {
		return domain.WrapError(domain.ErrCodeTransient, MsgGenericFailure, err)
	}
	if respErr.Status == http.StatusBadRequest {
		return domain.WrapError(domain.ErrCodeInvalidInput, messageOr(respErr, MsgInvalidDetails), err)
	}
	return domain.WrapError(domain.ErrCodeTransient, messageOr(respErr, MsgGenericFailure), err)
}

func messageOr(respErr *repository.ResponseError, fallback string) string {
	if msg := strings.TrimSpace(respErr.Message); msg != "" {
		return msg
	}
	return fallback
}
