package application

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Ppatel122/AirQualityDashboard/internal/observability/metrics"
)

// Scheduler fires one ingestion tick per hour at a fixed minute offset.
// Ticks run off the wall clock, not off job completion, so a reentrancy
// guard skips a fire while the previous tick is still in flight.
type Scheduler struct {
	runner         *Runner
	hourlyAtMinute int
	logger         *log.Logger
	mu             sync.Mutex
}

// NewScheduler constructs a Scheduler.
func NewScheduler(runner *Runner, hourlyAtMinute int, logger *log.Logger) *Scheduler {
	return &Scheduler{
		runner:         runner,
		hourlyAtMinute: hourlyAtMinute,
		logger:         logger,
	}
}

// Start begins the scheduler loop and blocks until the context is done.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.runner == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !s.shouldRun(now.UTC()) {
				continue
			}
			go s.runOnce(ctx, now.UTC())
		}
	}
}

func (s *Scheduler) shouldRun(now time.Time) bool {
	return now.Minute() == s.hourlyAtMinute
}

func (s *Scheduler) runOnce(ctx context.Context, now time.Time) {
	if !s.mu.TryLock() {
		metrics.IncTick("skipped")
		if s.logger != nil {
			s.logger.Printf("tick %s skipped: previous tick still running", now.Format(time.RFC3339))
		}
		return
	}
	defer s.mu.Unlock()

	if err := s.runner.RunOnce(ctx, now); err != nil {
		if s.logger != nil {
			s.logger.Printf("tick %s failed: %v", now.Format(time.RFC3339), err)
		}
	}
}
