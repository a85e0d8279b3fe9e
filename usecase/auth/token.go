package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/storefront/domain"
)

var (
	errTokenEmpty     = errors.New("token is empty")
	errTokenNoSubject = errors.New("token has no subject")
	errTokenExpired   = errors.New("token is expired")
)

type claims struct {
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenDecoder turns a bearer token into an Identity. Without a secret the
// payload is decoded unverified, which matches a client that cannot know the
// signing key. With a secret, HMAC signatures are checked as well.
type TokenDecoder struct {
	secret []byte
	now    func() time.Time
}

func NewTokenDecoder(secret string, now func() time.Time) *TokenDecoder {
	if now == nil {
		now = time.Now
	}
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &TokenDecoder{secret: key, now: now}
}

// Decode parses token and checks its expiry. Any failure means "no identity".
func (d *TokenDecoder) Decode(token string) (*domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errTokenEmpty
	}

	var c claims
	if err := d.parse(token, &c); err != nil {
		return nil, err
	}
	if c.Subject == "" {
		return nil, errTokenNoSubject
	}

	identity := &domain.Identity{
		Subject: c.Subject,
		Role:    c.Role,
		Email:   c.Email,
	}
	if c.ExpiresAt != nil {
		identity.ExpiresAt = c.ExpiresAt.Time
	}
	if c.IssuedAt != nil {
		identity.IssuedAt = c.IssuedAt.Time
	}
	if identity.IsExpired(d.now()) {
		return nil, errTokenExpired
	}
	return identity, nil
}

func (d *TokenDecoder) parse(token string, c *claims) error {
	if d.secret == nil {
		parser := jwt.NewParser()
		if _, _, err := parser.ParseUnverified(token, c); err != nil {
			return fmt.Errorf("decode token: %w", err)
		}
		return nil
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(token, c, func(*jwt.Token) (interface{}, error) {
		return d.secret, nil
	})
	if err != nil {
		return fmt.Errorf("verify token: %w", err)
	}
	return nil
}
