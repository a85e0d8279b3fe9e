package domain

import "time"

// Identity holds the claims decoded from a bearer token. It is derived state and
// is never mutated independently of the token it came from.
type Identity struct {
	Subject   string    `json:"sub"`
	Role      string    `json:"role,omitempty"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitempty"`
}

// IsExpired reports whether the identity is no longer usable at reference.
// A zero ExpiresAt means the token carries no expiry.
func (i *Identity) IsExpired(reference time.Time) bool {
	if i == nil {
		return true
	}
	if i.ExpiresAt.IsZero() {
		return false
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !i.ExpiresAt.After(reference)
}

// Session is the authenticated runtime state derived from a bearer token.
// Identity is non-nil iff Token is set and decoded successfully.
type Session struct {
	Token    string    `json:"-"`
	Identity *Identity `json:"identity,omitempty"`
}

// Authenticated reports whether the session can authorize requests.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.Identity != nil
}

// PendingRegistration tracks an email awaiting OTP confirmation. It lives in
// memory only and is dropped on successful verification or navigation away.
type PendingRegistration struct {
	Email             string    `json:"email"`
	ExpiresAt         time.Time `json:"expires_at"`
	AttemptsExhausted bool      `json:"attempts_exhausted"`
	FailedAttempts    int       `json:"failed_attempts"`
}
