package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler fires the daily digest cycle at a fixed wall-clock time.
type Scheduler struct {
	pipeline *Pipeline
	hour     int
	minute   int
	log      *slog.Logger
	now      func() time.Time
}

// NewScheduler creates a Scheduler firing daily at hour:minute local time.
func NewScheduler(p *Pipeline, hour, minute int, log *slog.Logger) *Scheduler {
	return &Scheduler{
		pipeline: p,
		hour:     hour,
		minute:   minute,
		log:      log,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled, sleeping to the next fire time, running
// one cycle, and rescheduling for the next day. A failed cycle is logged
// inside the pipeline and never stops the loop.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := nextRun(s.now(), s.hour, s.minute)
		s.log.Info("next daily cycle", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.pipeline.RunCycle(ctx)
		}
	}
}

// nextRun returns the next occurrence of hour:minute strictly after now.
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
