package scheduler

import (
	"context"
	"time"

	"KeywordWatcher/internal/ports"
)

// Interval runs the job, waits the configured delay after it returns, and
// runs it again. The delay starts when a run finishes, so two runs never
// overlap regardless of how long one takes.
type Interval struct {
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

var _ ports.Scheduler = (*Interval)(nil)

// NewInterval builds a delay-after-completion scheduler.
func NewInterval(interval time.Duration) *Interval {
	return &Interval{interval: interval}
}

// Start launches the loop; the first run happens immediately.
func (s *Interval) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func(stop chan struct{}) {
		defer close(s.done)
		for {
			job(time.Now())

			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-time.After(s.interval):
			}
		}
	}(s.stop)

	return nil
}

// Stop halts the loop and waits for an in-flight run to return.
func (s *Interval) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
