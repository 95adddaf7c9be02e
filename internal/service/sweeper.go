package service

import (
	"context"

	"github.com/catelog/catetube-backend/internal/clock"
	"github.com/catelog/catetube-backend/internal/repository"
)

type SweepResult struct {
	Deactivated int `json:"deactivated"`
	Deleted     int `json:"deleted"`
}

// Sweeper walks user accounts and applies the inactivity lifecycle:
// deactivation after DeactivateAfter days without a login, hard deletion
// (cascading to all owned rows) after DeleteAfter days. Users who never
// logged in are exempt.
type Sweeper struct {
	repos           repository.Registry
	clock           clock.Clock
	deactivateAfter int
	deleteAfter     int
}

func NewSweeper(repos repository.Registry, clk clock.Clock, deactivateAfter, deleteAfter int) *Sweeper {
	return &Sweeper{repos: repos, clock: clk, deactivateAfter: deactivateAfter, deleteAfter: deleteAfter}
}

// Sweep commits all deactivations and deletions of one pass as a single
// batch. An empty pass performs no write.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	users, err := s.repos.Users().List(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	now := s.clock.Now()
	var toDeactivate, toDelete []string
	for _, u := range users {
		days := u.DaysInactive(now)
		if days < 0 {
			continue
		}
		switch {
		case days >= s.deleteAfter:
			// Delete applies regardless of a deactivation in an earlier pass.
			toDelete = append(toDelete, u.ID)
		case days >= s.deactivateAfter && u.IsActive:
			toDeactivate = append(toDeactivate, u.ID)
		}
	}

	if len(toDeactivate) == 0 && len(toDelete) == 0 {
		return SweepResult{}, nil
	}

	err = s.repos.Transaction(ctx, func(r repository.Registry) error {
		if err := r.Users().Deactivate(ctx, toDeactivate); err != nil {
			return err
		}
		return r.Users().DeleteCascade(ctx, toDelete)
	})
	if err != nil {
		return SweepResult{}, err
	}
	return SweepResult{Deactivated: len(toDeactivate), Deleted: len(toDelete)}, nil
}
