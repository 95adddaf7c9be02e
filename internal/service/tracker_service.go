package service

import (
	"context"
	"errors"
	"math"

	"github.com/catelog/catetube-backend/internal/cache"
	"github.com/catelog/catetube-backend/internal/clock"
	"github.com/catelog/catetube-backend/internal/model"
	"github.com/catelog/catetube-backend/internal/repository"
	"gorm.io/gorm"
)

type TrackerStats struct {
	TotalDays             int     `json:"total_days"`
	CompletedDays         int     `json:"completed_days"`
	CompletionRate        float64 `json:"completion_rate"`
	AverageDailyIntake    float64 `json:"average_daily_intake"`
	AverageFeedingsPerDay float64 `json:"average_feedings_per_day"`
}

type ResetResult struct {
	DeletedFeedings int64
	Tracker         *model.DailyFeedingTracker
}

type TrackerService interface {
	// GetOrCreateToday resolves the user's tracker for the current day,
	// creating or self-healing it as needed. The returned tracker's date
	// always matches today.
	GetOrCreateToday(ctx context.Context, userID string) (*model.DailyFeedingTracker, error)
	UpdateTarget(ctx context.Context, userID string, targetML float64) (*model.DailyFeedingTracker, bool, error)
	Reset(ctx context.Context, userID string, newTarget *float64) (*ResetResult, error)
	History(ctx context.Context, userID string, days int) ([]model.DailyFeedingTracker, error)
	Stats(ctx context.Context, userID string) (*TrackerStats, error)
	CleanupOld(ctx context.Context, daysToKeep int) (int64, error)
}

type trackerService struct {
	repos         repository.Registry
	cache         *cache.Cache
	clock         clock.Clock
	defaultTarget float64
}

func NewTrackerService(repos repository.Registry, c *cache.Cache, clk clock.Clock, defaultTarget float64) TrackerService {
	return &trackerService{repos: repos, cache: c, clock: clk, defaultTarget: defaultTarget}
}

// resolveTodayTracker is the shared get-or-create path, run against whatever
// registry the caller supplies so the feeding write can use it inside its
// own transaction. A read of "today's tracker" never returns a row whose
// date is not today: the lookup matches on today's date exactly, a missing
// row is created seeded from the user's daily target, and a duplicate-key
// race on create falls back to a locking re-read of the winner (a plain
// re-read inside a repeatable-read transaction would still see the
// pre-insert snapshot and miss it).
func resolveTodayTracker(ctx context.Context, r repository.Registry, clk clock.Clock, userID string, defaultTarget float64) (*model.DailyFeedingTracker, error) {
	today := clk.Today()

	t, err := r.Trackers().FindByUserAndDate(ctx, userID, today)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	target := defaultTarget
	user, err := r.Users().FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else if user.DailyTargetML > 0 {
		target = user.DailyTargetML
	}

	t = model.NewTracker(userID, target, today)
	t.LastUpdated = clk.Now()
	if err := r.Trackers().Create(ctx, t); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.Trackers().FindByUserAndDateLocked(ctx, userID, today)
		}
		return nil, err
	}
	return t, nil
}

func (s *trackerService) GetOrCreateToday(ctx context.Context, userID string) (*model.DailyFeedingTracker, error) {
	var out *model.DailyFeedingTracker
	err := s.repos.Transaction(ctx, func(r repository.Registry) error {
		t, err := resolveTodayTracker(ctx, r, s.clock, userID, s.defaultTarget)
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *trackerService) UpdateTarget(ctx context.Context, userID string, targetML float64) (*model.DailyFeedingTracker, bool, error) {
	if targetML <= 0 {
		return nil, false, ErrInvalidTarget
	}
	var (
		out     *model.DailyFeedingTracker
		created bool
	)
	err := s.repos.Transaction(ctx, func(r repository.Registry) error {
		today := s.clock.Today()
		t, err := r.Trackers().FindByUserAndDate(ctx, userID, today)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			t = model.NewTracker(userID, targetML, today)
			t.LastUpdated = s.clock.Now()
			if err := r.Trackers().Create(ctx, t); err != nil {
				return err
			}
			created = true
			out = t
			return nil
		}
		t.SetTarget(targetML, s.clock.Now())
		if err := r.Trackers().Save(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	s.cache.Delete(cache.TrackerTodayKey(userID, s.clock.Today()))
	return out, created, nil
}

func (s *trackerService) Reset(ctx context.Context, userID string, newTarget *float64) (*ResetResult, error) {
	if newTarget != nil && *newTarget <= 0 {
		return nil, ErrInvalidTarget
	}
	res := &ResetResult{}
	err := s.repos.Transaction(ctx, func(r repository.Registry) error {
		today := s.clock.Today()
		deleted, err := r.Feedings().DeleteForDay(ctx, userID, today)
		if err != nil {
			return err
		}
		res.DeletedFeedings = deleted

		t, err := resolveTodayTracker(ctx, r, s.clock, userID, s.defaultTarget)
		if err != nil {
			return err
		}
		t.ResetForNewDay(newTarget, today, s.clock.Now())
		if err := r.Trackers().Save(ctx, t); err != nil {
			return err
		}
		res.Tracker = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Delete(cache.TrackerTodayKey(userID, s.clock.Today()))
	return res, nil
}

func (s *trackerService) History(ctx context.Context, userID string, days int) ([]model.DailyFeedingTracker, error) {
	if days <= 0 {
		days = 7
	}
	return s.repos.Trackers().ListRecent(ctx, userID, days)
}

func (s *trackerService) Stats(ctx context.Context, userID string) (*TrackerStats, error) {
	trackers, err := s.repos.Trackers().ListRecent(ctx, userID, 30)
	if err != nil {
		return nil, err
	}
	stats := &TrackerStats{}
	if len(trackers) == 0 {
		return stats, nil
	}

	var totalIntake float64
	var totalFeedings int
	for _, t := range trackers {
		if t.IsCompleted() {
			stats.CompletedDays++
		}
		totalIntake += t.TotalFedML
		totalFeedings += t.FeedingCount
	}
	n := float64(len(trackers))
	stats.TotalDays = len(trackers)
	stats.CompletionRate = round1(float64(stats.CompletedDays) / n * 100)
	stats.AverageDailyIntake = round1(totalIntake / n)
	stats.AverageFeedingsPerDay = round1(float64(totalFeedings) / n)
	return stats, nil
}

func (s *trackerService) CleanupOld(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep <= 0 {
		daysToKeep = 30
	}
	cutoff := s.clock.Today().AddDate(0, 0, -daysToKeep)
	return s.repos.Trackers().DeleteOlderThan(ctx, cutoff)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
