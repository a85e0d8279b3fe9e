package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/usecase"
)

// Cron schedules periodic callbacks on robfig/cron, one cron instance per job
// so stopping a job never affects another.
type Cron struct {
	logger *zap.Logger
}

func NewCron(logger *zap.Logger) *Cron {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cron{logger: logger}
}

// Every starts fn on a fixed interval. Intervals are rounded to whole seconds.
func (s *Cron) Every(interval time.Duration, fn func()) (usecase.Job, error) {
	if fn == nil {
		return nil, fmt.Errorf("scheduler: nil callback")
	}
	if interval < time.Second {
		interval = time.Second
	}

	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cronLogger{s.logger})))
	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := c.AddFunc(schedule, fn); err != nil {
		return nil, err
	}
	c.Start()
	return &cronJob{cron: c}, nil
}

type cronJob struct {
	cron *cron.Cron
	once sync.Once
}

// Stop halts the schedule without waiting for an in-flight callback, which
// keeps it safe to call from inside that callback.
func (j *cronJob) Stop() {
	j.once.Do(func() { j.cron.Stop() })
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

var _ usecase.Scheduler = (*Cron)(nil)
