package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/fastygo/storefront/usecase"
)

// Flows keeps the single OTP screen a process shows at a time.
type Flows struct {
	verifier  Verifier
	scheduler usecase.Scheduler
	ttl       time.Duration

	mu      sync.Mutex
	current *Verification
}

func NewFlows(verifier Verifier, scheduler usecase.Scheduler, ttl time.Duration) *Flows {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &Flows{verifier: verifier, scheduler: scheduler, ttl: ttl}
}

// Begin opens a screen for email, closing any previous one for another address.
func (f *Flows) Begin(email string) (*Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.current != nil {
		if strings.EqualFold(f.current.Email(), email) {
			f.current.countdown.Stop()
		} else {
			f.current.Close()
		}
		f.current = nil
	}
	v, err := NewVerification(f.verifier, f.scheduler, email, f.ttl)
	if err != nil {
		return nil, err
	}
	f.current = v
	return v, nil
}

// Current returns the open screen.
func (f *Flows) Current() (*Verification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return nil, false
	}
	return f.current, true
}

// End closes the open screen, if any.
func (f *Flows) End() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current != nil {
		f.current.Close()
		f.current = nil
	}
}
