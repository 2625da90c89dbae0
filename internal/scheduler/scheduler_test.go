package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mauv0809/chess-roundrobin/internal/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls  atomic.Int32
	dryRun atomic.Bool
	run    func(ctx context.Context)
}

func (f *fakeRunner) Synchronize(ctx context.Context, dryRun bool) (processor.Report, error) {
	f.calls.Add(1)
	f.dryRun.Store(dryRun)
	if f.run != nil {
		f.run(ctx)
	}
	return processor.Report{}, nil
}

func TestScheduler_EnableDisable(t *testing.T) {
	runner := &fakeRunner{}
	s := New(runner, 5*time.Millisecond)
	assert.False(t, s.Enabled())

	require.True(t, s.Enable(context.Background()))
	assert.False(t, s.Enable(context.Background()), "enabling twice is a no-op")
	assert.True(t, s.Enabled())

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 2 }, time.Second, time.Millisecond)

	require.True(t, s.Disable())
	assert.False(t, s.Disable())
	assert.False(t, s.Enabled())
	s.Stop()

	after := runner.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runner.calls.Load(), "no runs after disable")
}

func TestScheduler_DisableLeavesRunningRunAlone(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var runErr error
	finished := make(chan struct{})
	runner := &fakeRunner{run: func(ctx context.Context) {
		first := false
		once.Do(func() { first = true })
		if !first {
			return
		}
		close(started)
		<-release
		runErr = ctx.Err()
		close(finished)
	}}
	s := New(runner, 5*time.Millisecond)
	s.Enable(context.Background())

	<-started
	s.Disable()
	close(release)
	<-finished
	assert.NoError(t, runErr, "the run in progress must not be cancelled")
	s.Stop()
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestScheduler_NoRunAfterDisableWhenRunOutlastsInterval(t *testing.T) {
	for trial := 0; trial < 20; trial++ {
		started := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		runner := &fakeRunner{run: func(ctx context.Context) {
			first := false
			once.Do(func() { first = true })
			if !first {
				return
			}
			close(started)
			<-release
		}}
		s := New(runner, 2*time.Millisecond)
		s.Enable(context.Background())

		<-started
		// Let the ticker fire while the first run is still blocked.
		time.Sleep(10 * time.Millisecond)
		s.Disable()
		close(release)
		s.Stop()

		require.Equal(t, int32(1), runner.calls.Load(), "trial %d started a run after Disable", trial)
	}
}

func TestScheduler_ContextCancelStopsLoop(t *testing.T) {
	runner := &fakeRunner{}
	s := New(runner, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	s.Enable(ctx)
	cancel()

	assert.Eventually(t, func() bool { return !s.Enabled() }, time.Second, time.Millisecond)
	s.Stop()
	assert.Zero(t, runner.calls.Load())
}

func TestScheduler_RunOnce(t *testing.T) {
	runner := &fakeRunner{}
	s := New(runner, time.Hour)

	_, err := s.RunOnce(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, int32(1), runner.calls.Load())
	assert.True(t, runner.dryRun.Load())
	assert.False(t, s.Enabled(), "an on-demand run does not enable the schedule")
}
