// Package scheduler triggers synchronization runs on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/chess-roundrobin/internal/processor"
)

// Runner is the synchronization entry point driven by the scheduler.
type Runner interface {
	Synchronize(ctx context.Context, dryRun bool) (processor.Report, error)
}

// Scheduler invokes its Runner every interval while enabled.
type Scheduler struct {
	runner   Runner
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// New creates a disabled Scheduler.
func New(runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{runner: runner, interval: interval}
}

// Interval returns the time between two scheduled runs.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Enabled reports whether scheduled runs are active.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// Enable starts the ticker loop. Runs use ctx, so cancelling it stops the
// loop and aborts a run in progress. It returns false if already enabled.
func (s *Scheduler) Enable(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return false
	}
	stop, done := make(chan struct{}), make(chan struct{})
	s.stop, s.done = stop, done
	go s.loop(ctx, stop, done)
	log.Info("Scheduled synchronization enabled", "interval", s.interval)
	return true
}

// Disable stops future scheduled runs. A run already started is left to finish.
func (s *Scheduler) Disable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return false
	}
	close(s.stop)
	s.stop = nil
	log.Info("Scheduled synchronization disabled")
	return true
}

// Stop disables the scheduler and waits for its loop to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	s.Disable()
	if done != nil {
		<-done
	}
}

// RunOnce triggers a single run outside the schedule, whether or not the
// schedule is enabled.
func (s *Scheduler) RunOnce(ctx context.Context, dryRun bool) (processor.Report, error) {
	log.Debug("On-demand synchronization requested", "dryRun", dryRun)
	return s.runner.Synchronize(ctx, dryRun)
}

func (s *Scheduler) loop(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			s.mu.Lock()
			if s.stop == stop {
				s.stop = nil
			}
			s.mu.Unlock()
			return
		case <-ticker.C:
			// A tick can be pending while Disable closes stop.
			select {
			case <-stop:
				return
			default:
			}
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	_, err := s.runner.Synchronize(ctx, false)
	switch {
	case err == nil:
	case errors.Is(err, processor.ErrSyncInProgress):
		log.Debug("Scheduled run skipped, another run is active")
	default:
		log.Error("Scheduled synchronization failed", "error", err)
	}
}
