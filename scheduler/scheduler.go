package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"apartment-watcher/utils"
)

// Job is one unit of scheduled work. It must handle its own errors.
type Job func(ctx context.Context)

// Scheduler runs a job once at start and then every interval. A run that
// comes due while the previous one is still going is skipped rather than
// overlapped.
type Scheduler struct {
	interval time.Duration
	cron     *cron.Cron
	logger   *utils.Logger
	job      Job
	wrapped  cron.Job

	// direct counts runs started outside cron's runner, which cron.Stop
	// does not wait for.
	direct sync.WaitGroup
}

// New creates a Scheduler for job. Nothing runs until Start is called.
func New(interval time.Duration, job Job, logger *utils.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		cron:     cron.New(cron.WithLogger(cronLogger{logger})),
		logger:   logger,
		job:      job,
	}
}

// Start registers the job, kicks off the first run without waiting for it,
// and starts the interval timer. ctx is handed to every run.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval < time.Second {
		return fmt.Errorf("scheduler: interval %s is shorter than one second", s.interval)
	}

	cl := cronLogger{s.logger}
	s.wrapped = cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).
		Then(cron.FuncJob(func() { s.job(ctx) }))

	s.cron.Schedule(cron.Every(s.interval), s.wrapped)
	s.logger.Info("[scheduler] Polling every %s", s.interval)

	s.direct.Add(1)
	go func() {
		defer s.direct.Done()
		s.wrapped.Run()
	}()
	s.cron.Start()
	return nil
}

// runNow runs the job synchronously through the same overlap guard as the
// timer. It returns at once if a run is already in progress.
func (s *Scheduler) runNow() {
	if s.wrapped == nil {
		return
	}
	s.direct.Add(1)
	defer s.direct.Done()
	s.wrapped.Run()
}

// Stop halts the timer and waits up to timeout for any running job to
// finish, including the first run kicked off by Start. It reports whether
// every run finished in time.
func (s *Scheduler) Stop(timeout time.Duration) bool {
	cronDone := s.cron.Stop()
	idle := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.direct.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		return true
	case <-time.After(timeout):
		return false
	}
}

// cronLogger adapts utils.Logger to cron.Logger.
type cronLogger struct {
	l *utils.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "skip" {
		c.l.Warn("[scheduler] Previous cycle still running, skipping this tick")
		return
	}
	c.l.Debug("[scheduler] %s %v", msg, keysAndValues)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("[scheduler] %s: %v %v", msg, err, keysAndValues)
}
