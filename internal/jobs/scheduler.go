// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"karmafeed/internal/metrics"
)

// Warmer precomputes closed leaderboard buckets.
type Warmer interface {
	Warm(ctx context.Context, now time.Time, window time.Duration) (int, error)
}

// Scheduler owns the cron runner. Jobs only write the bucket cache, never the ledger.
type Scheduler struct {
	cron     *cron.Cron
	warmer   Warmer
	window   time.Duration
	schedule string
	now      func() time.Time
}

// NewScheduler creates a scheduler evaluating schedule in UTC, matching the bucket boundaries.
func NewScheduler(warmer Warmer, schedule string, window time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		warmer:   warmer,
		window:   window,
		schedule: schedule,
		now:      time.Now,
	}
}

// Start registers the jobs, warms once immediately and starts the runner.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.WarmOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule leaderboard warm-up %q: %w", s.schedule, err)
	}

	go s.WarmOnce(ctx)

	s.cron.Start()
	log.WithField("schedule", s.schedule).Info("[CRON] Scheduler started (UTC)")
	return nil
}

// WarmOnce fills any closed bucket of the current window missing from the cache.
func (s *Scheduler) WarmOnce(ctx context.Context) {
	start := time.Now()
	computed, err := s.warmer.Warm(ctx, s.now(), s.window)
	metrics.AddBucketsWarmed(computed)
	if err != nil {
		log.WithError(err).WithField("computed", computed).Error("[CRON] Leaderboard warm-up failed")
		return
	}
	log.WithFields(log.Fields{"computed": computed, "duration": time.Since(start)}).Debug("[CRON] Leaderboard warm-up done")
}

// Stop stops the runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("[CRON] Scheduler stopped")
}
