package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/catelog/catetube-backend/internal/model"
	"github.com/catelog/catetube-backend/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createUserWithLastLogin(t *testing.T, repos repository.Registry, email string, lastLogin *time.Time, active bool) *model.User {
	t.Helper()
	u := &model.User{
		Email:         email,
		PasswordHash:  "x",
		FirstName:     "Test",
		DailyTargetML: 210,
		IsActive:      active,
		LastLogin:     lastLogin,
	}
	require.NoError(t, repos.Users().Create(context.Background(), u))
	if !active {
		// Create applies the column default; force the stored flag.
		u.IsActive = false
		require.NoError(t, repos.Users().Update(context.Background(), u))
	}
	return u
}

func daysAgo(clkNow time.Time, days int) *time.Time {
	ts := clkNow.AddDate(0, 0, -days)
	return &ts
}

func TestSweep_DeactivatesAfterThreshold(t *testing.T) {
	repos := newTestRegistry(t)
	clk := testClock()
	now := clk.Now()

	stale := createUserWithLastLogin(t, repos, "stale@example.com", daysAgo(now, 61), true)
	fresh := createUserWithLastLogin(t, repos, "fresh@example.com", daysAgo(now, 5), true)

	sweeper := NewSweeper(repos, clk, 60, 120)
	res, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, SweepResult{Deactivated: 1, Deleted: 0}, res)

	u, err := repos.Users().FindByID(context.Background(), stale.ID)
	require.NoError(t, err)
	require.False(t, u.IsActive)

	u, err = repos.Users().FindByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	require.True(t, u.IsActive)
}

func TestSweep_DeletesAfterThreshold(t *testing.T) {
	repos := newTestRegistry(t)
	clk := testClock()
	now := clk.Now()

	// Deletion applies whether or not an earlier pass already deactivated.
	goneActive := createUserWithLastLogin(t, repos, "gone1@example.com", daysAgo(now, 121), true)
	goneInactive := createUserWithLastLogin(t, repos, "gone2@example.com", daysAgo(now, 200), false)

	// Deleted users take their data with them.
	require.NoError(t, repos.Feedings().Create(context.Background(), &model.FeedingLog{
		UserID: goneActive.ID, AmountML: 70, TimeGiven: now,
	}))
	require.NoError(t, repos.Trackers().Create(context.Background(),
		model.NewTracker(goneActive.ID, 210, clk.Today())))

	sweeper := NewSweeper(repos, clk, 60, 120)
	res, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, SweepResult{Deactivated: 0, Deleted: 2}, res)

	_, err = repos.Users().FindByID(context.Background(), goneActive.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	_, err = repos.Users().FindByID(context.Background(), goneInactive.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	logs, total, err := repos.Feedings().ListByUser(context.Background(), goneActive.ID, 10, 0)
	require.NoError(t, err)
	require.Empty(t, logs)
	require.Equal(t, int64(0), total)
	_, err = repos.Trackers().FindByUserAndDate(context.Background(), goneActive.ID, clk.Today())
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestSweep_SkipsUsersWhoNeverLoggedIn(t *testing.T) {
	repos := newTestRegistry(t)
	clk := testClock()

	u := createUserWithLastLogin(t, repos, "new@example.com", nil, true)

	sweeper := NewSweeper(repos, clk, 60, 120)
	res, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, SweepResult{}, res)

	got, err := repos.Users().FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.True(t, got.IsActive)
}

func TestSweep_AlreadyInactiveNotRecounted(t *testing.T) {
	repos := newTestRegistry(t)
	clk := testClock()
	now := clk.Now()

	createUserWithLastLogin(t, repos, "dormant@example.com", daysAgo(now, 90), false)

	sweeper := NewSweeper(repos, clk, 60, 120)
	res, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, SweepResult{}, res)
}
