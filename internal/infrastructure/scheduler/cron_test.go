package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestNextRun(t *testing.T) {
	t.Parallel()

	c := NewCronScheduler("30 6 * * *", time.UTC)

	before := time.Date(2024, time.March, 14, 5, 0, 0, 0, time.UTC)
	if got := c.nextRun(before); !got.Equal(time.Date(2024, time.March, 14, 6, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected same-day run, got %v", got)
	}

	after := time.Date(2024, time.March, 14, 7, 0, 0, 0, time.UTC)
	if got := c.nextRun(after); !got.Equal(time.Date(2024, time.March, 15, 6, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected next-day run, got %v", got)
	}
}

func TestNewCronSchedulerIgnoresBadFields(t *testing.T) {
	t.Parallel()

	c := NewCronScheduler("not a cron line", time.UTC)
	if c.minute != 0 || c.hour != 0 {
		t.Fatalf("expected midnight fallback, got %d:%d", c.hour, c.minute)
	}
}

func TestStartRunsImmediatelyAndStopIsSafe(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	ran := make(chan struct{}, 1)

	c := NewCronScheduler("0 0 * * *", time.UTC)
	err := c.Start(context.Background(), func(time.Time) {
		runs.Add(1)
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("immediate run never happened")
	}

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// A second Stop must be a no-op, not a double close.
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}

	if runs.Load() < 1 {
		t.Fatalf("expected at least one run, got %d", runs.Load())
	}
}
