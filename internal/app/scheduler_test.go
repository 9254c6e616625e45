package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm2x/neos-backups/internal/metrics"
)

func TestSchedulerBackupOnStartup(t *testing.T) {
	f := newFixture(t, nil)
	o := f.orchestrator()

	s := NewScheduler(o,
		WithInterval(time.Hour),
		WithBackupOnStartup(true),
	)

	done := make(chan error, 1)
	go func() {
		done <- s.Start(context.Background())
	}()

	// Wait for the startup backup to land in the index.
	require.Eventually(t, func() bool {
		n, err := f.index.Count()
		return err == nil && n == 1
	}, 5*time.Second, 10*time.Millisecond)

	s.Stop()
	assert.NoError(t, <-done)
	assert.False(t, s.IsRunning())
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	f := newFixture(t, nil)
	s := NewScheduler(f.orchestrator())

	// Must not block or panic.
	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestSchedulerContextCancellation(t *testing.T) {
	f := newFixture(t, nil)
	s := NewScheduler(f.orchestrator(), WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	require.Eventually(t, s.IsRunning, time.Second, 5*time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestSchedulerPushesShutdownMetrics(t *testing.T) {
	f := newFixture(t, nil)
	pusher := &metrics.MockPusher{}
	o := f.orchestrator(WithMetricsPusher(pusher))

	s := NewScheduler(o, WithInterval(time.Hour))

	done := make(chan error, 1)
	go func() {
		done <- s.Start(context.Background())
	}()

	require.Eventually(t, s.IsRunning, time.Second, 5*time.Millisecond)
	s.Stop()
	require.NoError(t, <-done)

	require.NotEmpty(t, pusher.PushedMetrics)
	last := pusher.PushedMetrics[len(pusher.PushedMetrics)-1]
	assert.False(t, last.ServiceUp)
}
