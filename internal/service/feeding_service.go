package service

import (
	"context"
	"errors"

	"github.com/catelog/catetube-backend/internal/cache"
	"github.com/catelog/catetube-backend/internal/clock"
	"github.com/catelog/catetube-backend/internal/model"
	"github.com/catelog/catetube-backend/internal/repository"
	"gorm.io/gorm"
)

type FeedingInput struct {
	AmountML      float64
	FlushedBefore bool
	FlushedAfter  bool
}

type FeedingResult struct {
	Log     *model.FeedingLog
	Tracker *model.DailyFeedingTracker
}

type FeedingService interface {
	// LogFeeding appends a feeding log and applies it to today's tracker in
	// one transaction: either both persist or neither does.
	LogFeeding(ctx context.Context, userID string, in FeedingInput) (*FeedingResult, error)
	ListFeedings(ctx context.Context, userID string, limit, offset int) ([]model.FeedingLog, int64, error)
}

type feedingService struct {
	repos         repository.Registry
	cache         *cache.Cache
	clock         clock.Clock
	defaultTarget float64
}

func NewFeedingService(repos repository.Registry, c *cache.Cache, clk clock.Clock, defaultTarget float64) FeedingService {
	return &feedingService{repos: repos, cache: c, clock: clk, defaultTarget: defaultTarget}
}

func (s *feedingService) LogFeeding(ctx context.Context, userID string, in FeedingInput) (*FeedingResult, error) {
	if in.AmountML <= 0 {
		return nil, ErrInvalidAmount
	}
	res := &FeedingResult{}
	err := s.repos.Transaction(ctx, func(r repository.Registry) error {
		t, err := resolveTodayTracker(ctx, r, s.clock, userID, s.defaultTarget)
		if err != nil {
			return err
		}

		log := &model.FeedingLog{
			UserID:        userID,
			AmountML:      in.AmountML,
			FlushedBefore: in.FlushedBefore,
			FlushedAfter:  in.FlushedAfter,
			TimeGiven:     s.clock.Now(),
		}
		if err := r.Feedings().Create(ctx, log); err != nil {
			return err
		}

		// Storage-level increment: two concurrent feedings both land in the
		// final totals instead of the last writer winning.
		n, err := r.Trackers().ApplyFeeding(ctx, t.ID, in.AmountML, s.clock.Now())
		if err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}

		updated, err := r.Trackers().FindByID(ctx, t.ID)
		if err != nil {
			return err
		}
		res.Log = log
		res.Tracker = updated
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.cache.Delete(cache.TrackerTodayKey(userID, s.clock.Today()))
	return res, nil
}

func (s *feedingService) ListFeedings(ctx context.Context, userID string, limit, offset int) ([]model.FeedingLog, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repos.Feedings().ListByUser(ctx, userID, limit, offset)
}
