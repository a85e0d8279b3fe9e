package auth

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/storefront/repository"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func signToken(subject string, expires time.Time) string {
	c := claims{
		Role:  "user",
		Email: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(fixedNow.Add(-time.Minute)),
		},
	}
	if !expires.IsZero() {
		c.ExpiresAt = jwt.NewNumericDate(expires)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return token
}

type fakeGateway struct {
	mu sync.Mutex

	registerErr error
	loginToken  string
	loginErr    error
	verifyToken string
	verifyErr   error
	resetErr    error

	registered []repository.RegisterRequest
	logins     []repository.LoginRequest
	verifies   []repository.VerifyOTPRequest
	resets     []repository.ResetPasswordRequest

	block chan struct{}
}

func (g *fakeGateway) wait() {
	if g.block != nil {
		<-g.block
	}
}

func (g *fakeGateway) Register(_ context.Context, req repository.RegisterRequest) error {
	g.wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.registered = append(g.registered, req)
	return g.registerErr
}

func (g *fakeGateway) Login(_ context.Context, req repository.LoginRequest) (string, error) {
	g.wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.logins = append(g.logins, req)
	return g.loginToken, g.loginErr
}

func (g *fakeGateway) VerifyOTP(_ context.Context, req repository.VerifyOTPRequest) (string, error) {
	g.wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifies = append(g.verifies, req)
	return g.verifyToken, g.verifyErr
}

func (g *fakeGateway) ResetPassword(_ context.Context, req repository.ResetPasswordRequest) error {
	g.wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resets = append(g.resets, req)
	return g.resetErr
}

func (g *fakeGateway) verifyCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.verifies)
}

type fakeTokens struct {
	mu      sync.Mutex
	token   string
	saveErr error
	deletes int
}

func (r *fakeTokens) Load(context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token, nil
}

func (r *fakeTokens) Save(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.token = token
	return nil
}

func (r *fakeTokens) Delete(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = ""
	r.deletes++
	return nil
}

func (r *fakeTokens) stored() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

type recorder struct {
	mu     sync.Mutex
	topics []string
	last   interface{}
}

func (r *recorder) Publish(_ context.Context, topic string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.last = payload
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.topics)
}

func newUseCase(gw *fakeGateway, tokens *fakeTokens, events *recorder) *UseCase {
	if events == nil {
		events = &recorder{}
	}
	return New(gw, tokens, NewTokenDecoder("", clock), events, Options{Now: clock}, nil)
}

var _ repository.IdentityGateway = (*fakeGateway)(nil)
var _ repository.TokenRepository = (*fakeTokens)(nil)
