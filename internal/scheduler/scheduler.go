// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// TaskFn is the body of a scheduled job.
type TaskFn func(ctx context.Context) error

// Scheduler wraps a cron runner. Jobs receive a context that is cancelled by Stop.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Scheduler. A job whose previous run is still going is skipped.
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits up to timeout for them to return.
func (s *Scheduler) Stop(timeout time.Duration) {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(timeout):
		log.Warn().Dur("timeout", timeout).Msg("scheduler stop timed out")
	}
}

// AddJob registers fn under a standard cron spec or a descriptor such as "@every 5m".
// An empty spec disables the job.
func (s *Scheduler) AddJob(name, spec string, fn TaskFn) error {
	if spec == "" {
		log.Info().Str("job", name).Msg("job disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.taskWithRecover(name, fn)); err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	log.Info().Str("job", name).Str("schedule", spec).Msg("job scheduled")
	return nil
}

// RunNow executes a job synchronously with the same recovery and logging as a scheduled run.
func (s *Scheduler) RunNow(name string, fn TaskFn) {
	s.taskWithRecover(name, fn)()
}

func (s *Scheduler) taskWithRecover(name string, fn TaskFn) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("job", name).
					Interface("panic", r).
					Str("stacktrace", string(debug.Stack())).
					Msg("panic recovered in scheduler job")
			}
		}()

		start := time.Now()
		log.Debug().Str("job", name).Msg("job start")

		if err := fn(s.ctx); err != nil {
			log.Error().Err(err).Str("job", name).Msg("job failed")
			return
		}
		log.Debug().Str("job", name).Dur("duration", time.Since(start)).Msg("job completed")
	}
}
