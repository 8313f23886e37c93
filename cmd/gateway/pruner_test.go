package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/relaydocs/relaygw/internal/lockout"
	"github.com/relaydocs/relaygw/internal/ratelimit"
)

func TestPruner_Sweep(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return start }

	windows := ratelimit.NewLocalWindows()
	entries := lockout.NewLocalEntries()

	limiter := ratelimit.NewFixedWindowLimiter(nil, windows,
		ratelimit.Config{MaxRequests: 5, Window: time.Minute}, ratelimit.WithClock(clock))
	tracker := lockout.NewTracker(nil, entries,
		lockout.Config{Threshold: 5, Window: time.Minute, Duration: time.Minute}, lockout.WithClock(clock))

	_, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	tracker.RecordFailure(context.Background(), "alice", "10.0.0.1")
	require.Equal(t, 1, windows.Len())
	require.Equal(t, 1, entries.Len())

	core, logs := observer.New(zap.DebugLevel)
	p := newPruner(time.Second, windows, entries, zap.New(core))

	p.now = func() time.Time { return start.Add(30 * time.Second) }
	p.sweep()
	assert.Equal(t, 1, windows.Len())
	assert.Equal(t, 1, entries.Len())
	assert.Zero(t, logs.Len())

	p.now = func() time.Time { return start.Add(2 * time.Minute) }
	p.sweep()
	assert.Zero(t, windows.Len())
	assert.Zero(t, entries.Len())
	assert.Equal(t, 1, logs.FilterMessage("pruned local fallback state").Len())
}

func TestPruner_RunStops(t *testing.T) {
	p := newPruner(time.Millisecond, ratelimit.NewLocalWindows(), lockout.NewLocalEntries(), zap.NewNop())

	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	p.Stop()
	p.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop")
	}
}

func TestPruner_RunHonoursContext(t *testing.T) {
	p := newPruner(time.Hour, ratelimit.NewLocalWindows(), lockout.NewLocalEntries(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner ignored context cancellation")
	}
}
