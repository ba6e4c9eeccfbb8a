package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestIntervalRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	runs := make(chan time.Time, 8)
	s := NewInterval(5 * time.Millisecond)

	ctx := context.Background()
	if err := s.Start(ctx, func(now time.Time) { runs <- now }); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer func() { _ = s.Stop(ctx) }()

	deadline := time.After(2 * time.Second)
	for i := 0; i < 3; i++ {
		select {
		case <-runs:
		case <-deadline:
			t.Fatalf("expected 3 runs, saw %d before the deadline", i)
		}
	}
}

func TestIntervalRunsNeverOverlap(t *testing.T) {
	t.Parallel()

	var inFlight atomic.Int32
	var overlapped atomic.Bool
	done := make(chan struct{}, 8)

	s := NewInterval(time.Millisecond)
	ctx := context.Background()

	err := s.Start(ctx, func(time.Time) {
		if inFlight.Add(1) > 1 {
			overlapped.Store(true)
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		done <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer func() { _ = s.Stop(ctx) }()

	deadline := time.After(2 * time.Second)
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-deadline:
			t.Fatalf("expected 3 runs, saw %d before the deadline", i)
		}
	}

	if overlapped.Load() {
		t.Fatalf("runs overlapped despite the delay-after-completion loop")
	}
}

func TestIntervalStopHaltsLoop(t *testing.T) {
	t.Parallel()

	var runs atomic.Int64
	first := make(chan struct{}, 1)

	s := NewInterval(5 * time.Millisecond)
	ctx := context.Background()

	err := s.Start(ctx, func(time.Time) {
		if runs.Add(1) == 1 {
			first <- struct{}{}
		}
	})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}

	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatalf("first run never happened")
	}

	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if got := runs.Load(); got != after {
		t.Fatalf("job ran after Stop returned: %d -> %d", after, got)
	}
}

func TestCronRejectsBadExpression(t *testing.T) {
	t.Parallel()

	c := NewCron("not a cron line", nil)
	if err := c.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatalf("expected error for invalid expression")
	}
}

func TestCronStartAndStop(t *testing.T) {
	t.Parallel()

	c := NewCron("*/5 * * * *", nil)
	ctx := context.Background()

	if err := c.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
}
