package usecase

import "time"

// Job is a running periodic callback. Stop prevents further invocations once
// it returns and is safe to call more than once, including from the callback.
type Job interface {
	Stop()
}

// Scheduler runs fn every interval until the returned Job is stopped.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (Job, error)
}
