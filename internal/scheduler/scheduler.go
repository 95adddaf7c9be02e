// Package scheduler runs the background day-rollover loop: it polls the
// wall clock and, on a calendar-day change, deletes trackers past the
// retention window and sweeps inactive users. It never creates trackers;
// those are created lazily by the tracker service.
package scheduler

import (
	"context"
	"time"

	"github.com/catelog/catetube-backend/internal/clock"
	"github.com/catelog/catetube-backend/internal/logging"
	"github.com/catelog/catetube-backend/internal/service"
)

type TrackerMaintenance interface {
	CleanupOld(ctx context.Context, daysToKeep int) (int64, error)
}

type UserSweeper interface {
	Sweep(ctx context.Context) (service.SweepResult, error)
}

type Scheduler struct {
	clock         clock.Clock
	log           logging.Logger
	interval      time.Duration
	retentionDays int
	trackers      TrackerMaintenance
	sweeper       UserSweeper

	lastSeen time.Time
}

func New(clk clock.Clock, log logging.Logger, interval time.Duration, retentionDays int, trackers TrackerMaintenance, sweeper UserSweeper) *Scheduler {
	return &Scheduler{
		clock:         clk,
		log:           log.With("component", "scheduler"),
		interval:      interval,
		retentionDays: retentionDays,
		trackers:      trackers,
		sweeper:       sweeper,
	}
}

// Run blocks until ctx is canceled. An in-flight tick always finishes
// before the loop exits.
func (s *Scheduler) Run(ctx context.Context) {
	s.lastSeen = s.clock.Today()
	s.log.Info(ctx, "scheduler started", "interval", s.interval.String(), "last_seen_date", s.lastSeen.Format("2006-01-02"))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info(ctx, "scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick compares the cached date with today and triggers rollover on a
// mismatch. lastSeen only advances when the rollover succeeds, so a failed
// rollover is retried on the next tick instead of waiting for the next
// date change.
func (s *Scheduler) tick(ctx context.Context) {
	today := s.clock.Today()
	if today.Equal(s.lastSeen) {
		return
	}
	s.log.Info(ctx, "date changed", "from", s.lastSeen.Format("2006-01-02"), "to", today.Format("2006-01-02"))
	if err := s.rollover(ctx); err != nil {
		s.log.Error(ctx, "rollover failed, retrying next tick", "error", err.Error())
		return
	}
	s.lastSeen = today
}

func (s *Scheduler) rollover(ctx context.Context) error {
	deleted, err := s.trackers.CleanupOld(ctx, s.retentionDays)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.log.Info(ctx, "cleaned up old trackers", "deleted", deleted, "retention_days", s.retentionDays)
	}

	res, err := s.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}
	if res.Deactivated > 0 || res.Deleted > 0 {
		s.log.Info(ctx, "user cleanup", "deactivated", res.Deactivated, "deleted", res.Deleted)
	}
	return nil
}
