package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/fastygo/storefront/usecase"
)

// Countdown decrements once per second from its start value to zero. Reaching
// zero stops the schedule and enables resend until the next Start.
type Countdown struct {
	scheduler usecase.Scheduler
	seconds   int

	mu        sync.Mutex
	left      int
	canResend bool
	job       usecase.Job
	// generation changes on every Start and Stop; callbacks of an older
	// schedule that were already dispatched see a mismatch and do nothing.
	generation uint64
}

func NewCountdown(scheduler usecase.Scheduler, ttl time.Duration) *Countdown {
	seconds := int(ttl / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	return &Countdown{scheduler: scheduler, seconds: seconds, left: seconds}
}

// Start resets the countdown and schedules the ticks, replacing any running schedule.
func (c *Countdown) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.left = c.seconds
	c.canResend = false

	gen := c.generation
	job, err := c.scheduler.Every(time.Second, func() { c.tick(gen) })
	if err != nil {
		return fmt.Errorf("start countdown: %w", err)
	}
	c.job = job
	return nil
}

// Tick advances the countdown by one second.
func (c *Countdown) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advanceLocked()
}

func (c *Countdown) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.advanceLocked()
}

func (c *Countdown) advanceLocked() {
	if c.left <= 0 {
		return
	}
	c.left--
	if c.left == 0 {
		c.canResend = true
		c.stopLocked()
	}
}

// Stop cancels the schedule and keeps the remaining time.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Countdown) stopLocked() {
	c.generation++
	if c.job != nil {
		c.job.Stop()
		c.job = nil
	}
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left
}

func (c *Countdown) CanResend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canResend
}

// Format renders the remaining time as mm:ss.
func (c *Countdown) Format() string {
	left := c.Remaining()
	return fmt.Sprintf("%02d:%02d", left/60, left%60)
}
