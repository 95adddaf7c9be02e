package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogFeeding(t *testing.T) {
	repos := newTestRegistry(t)
	clk := testClock()
	user := createTestUser(t, repos, "a@example.com", 210)
	svc := NewFeedingService(repos, testCache(), clk, testDefaultTarget)

	res, err := svc.LogFeeding(context.Background(), user.ID, FeedingInput{
		AmountML:      70,
		FlushedBefore: true,
		FlushedAfter:  true,
	})
	require.NoError(t, err)
	require.NotZero(t, res.Log.ID)
	require.Equal(t, 70.0, res.Log.AmountML)
	require.True(t, res.Log.FlushedBefore)
	require.Equal(t, 70.0, res.Tracker.TotalFedML)
	require.Equal(t, 140.0, res.Tracker.RemainingML)
	require.Equal(t, 1, res.Tracker.FeedingCount)
}

func TestLogFeeding_InvalidAmount(t *testing.T) {
	repos := newTestRegistry(t)
	svc := NewFeedingService(repos, testCache(), testClock(), testDefaultTarget)

	_, err := svc.LogFeeding(context.Background(), "u1", FeedingInput{AmountML: 0})
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.LogFeeding(context.Background(), "u1", FeedingInput{AmountML: -20})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestLogFeeding_OvershootClampsRemaining(t *testing.T) {
	repos := newTestRegistry(t)
	clk := testClock()
	user := createTestUser(t, repos, "a@example.com", 100)
	svc := NewFeedingService(repos, testCache(), clk, testDefaultTarget)

	res, err := svc.LogFeeding(context.Background(), user.ID, FeedingInput{AmountML: 150})
	require.NoError(t, err)
	require.Equal(t, 150.0, res.Tracker.TotalFedML)
	require.Equal(t, 0.0, res.Tracker.RemainingML)
}

func TestLogFeeding_Concurrent(t *testing.T) {
	repos := newTestRegistry(t)
	clk := testClock()
	user := createTestUser(t, repos, "a@example.com", 210)
	svc := NewFeedingService(repos, testCache(), clk, testDefaultTarget)

	// Seed the tracker so every goroutine hits the increment path.
	_, err := svc.LogFeeding(context.Background(), user.ID, FeedingInput{AmountML: 10})
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.LogFeeding(context.Background(), user.ID, FeedingInput{AmountML: 10})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	tracker := NewTrackerService(repos, testCache(), clk, testDefaultTarget)
	tr, err := tracker.GetOrCreateToday(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, float64((n+1)*10), tr.TotalFedML, "no feeding may be lost to a concurrent write")
	require.Equal(t, n+1, tr.FeedingCount)
	require.Equal(t, 0.0, tr.RemainingML)

	_, total, err := svc.ListFeedings(context.Background(), user.ID, 100, 0)
	require.NoError(t, err)
	require.Equal(t, int64(n+1), total)
}

func TestListFeedings_Pagination(t *testing.T) {
	repos := newTestRegistry(t)
	clk := testClock()
	user := createTestUser(t, repos, "a@example.com", 210)
	svc := NewFeedingService(repos, testCache(), clk, testDefaultTarget)

	for i := 0; i < 5; i++ {
		_, err := svc.LogFeeding(context.Background(), user.ID, FeedingInput{AmountML: 10})
		require.NoError(t, err)
	}

	logs, total, err := svc.ListFeedings(context.Background(), user.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, int64(5), total)

	logs, _, err = svc.ListFeedings(context.Background(), user.ID, 2, 4)
	require.NoError(t, err)
	require.Len(t, logs, 1)
}
