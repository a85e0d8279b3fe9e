package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/fastygo/storefront/usecase"
)

// Manual is a Scheduler driven by explicit Tick calls. The OTP flow uses it in
// tests and headless runs where ticks come from the caller rather than the clock.
type Manual struct {
	mu   sync.Mutex
	jobs []*manualJob
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Every(_ time.Duration, fn func()) (usecase.Job, error) {
	if fn == nil {
		return nil, fmt.Errorf("scheduler: nil callback")
	}
	job := &manualJob{fn: fn}
	m.mu.Lock()
	m.jobs = append(m.jobs, job)
	m.mu.Unlock()
	return job, nil
}

// Tick invokes every running job once.
func (m *Manual) Tick() {
	m.mu.Lock()
	jobs := append([]*manualJob(nil), m.jobs...)
	m.mu.Unlock()
	for _, job := range jobs {
		job.run()
	}
}

// Active returns the number of jobs not yet stopped.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for _, job := range m.jobs {
		if !job.isStopped() {
			n++
		}
	}
	return n
}

type manualJob struct {
	mu      sync.Mutex
	fn      func()
	stopped bool
}

func (j *manualJob) run() {
	if j.isStopped() {
		return
	}
	j.fn()
}

func (j *manualJob) isStopped() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stopped
}

func (j *manualJob) Stop() {
	j.mu.Lock()
	j.stopped = true
	j.mu.Unlock()
}

var _ usecase.Scheduler = (*Manual)(nil)
