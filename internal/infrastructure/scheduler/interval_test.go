package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestIntervalSchedulerRunsImmediately(t *testing.T) {
	runs := make(chan time.Time, 1)
	s := NewIntervalScheduler(time.Hour)

	ctx := context.Background()
	if err := s.Start(ctx, func(tm time.Time) { runs <- tm }); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop(ctx)

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run on start")
	}
}

func TestIntervalSchedulerStopIsIdempotent(t *testing.T) {
	s := NewIntervalScheduler(time.Hour)
	ctx := context.Background()

	// Stop before Start is a no-op.
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop before start: %v", err)
	}

	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
