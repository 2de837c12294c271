package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/ports"
)

// IntervalScheduler runs the job immediately and then on a fixed ticker.
// Monitoring passes run back-to-back on one goroutine; overlapping runs are
// not possible by construction. A scheduler is single-use: once stopped it
// stays stopped.
type IntervalScheduler struct {
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler with the given period.
func NewIntervalScheduler(interval time.Duration) *IntervalScheduler {
	return &IntervalScheduler{interval: interval}
}

// Start begins ticking. A second Start is a no-op.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil || s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	stop := s.stop
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine. Safe to call more than once.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}
