package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/catelog/catetube-backend/internal/cache"
	"github.com/catelog/catetube-backend/internal/clock"
	"github.com/catelog/catetube-backend/internal/model"
	"github.com/catelog/catetube-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// trackerServiceStub always resolves a fresh tracker for the fake clock's
// current day, like the real service does.
type trackerServiceStub struct {
	clk   *clock.Fake
	calls int
}

func (s *trackerServiceStub) GetOrCreateToday(ctx context.Context, userID string) (*model.DailyFeedingTracker, error) {
	s.calls++
	t := model.NewTracker(userID, 210, s.clk.Today())
	t.LastUpdated = s.clk.Now()
	return t, nil
}

func (s *trackerServiceStub) UpdateTarget(ctx context.Context, userID string, targetML float64) (*model.DailyFeedingTracker, bool, error) {
	return nil, false, nil
}

func (s *trackerServiceStub) Reset(ctx context.Context, userID string, newTarget *float64) (*service.ResetResult, error) {
	return nil, nil
}

func (s *trackerServiceStub) History(ctx context.Context, userID string, days int) ([]model.DailyFeedingTracker, error) {
	return nil, nil
}

func (s *trackerServiceStub) Stats(ctx context.Context, userID string) (*service.TrackerStats, error) {
	return nil, nil
}

func (s *trackerServiceStub) CleanupOld(ctx context.Context, daysToKeep int) (int64, error) {
	return 0, nil
}

func getToday(t *testing.T, h *TrackerHandler) TrackerResponse {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/tracker/today", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("uid", "user-1")

	require.NoError(t, h.GetToday(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TrackerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGetToday_CacheDoesNotOutliveTheDay(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 3, 10, 23, 58, 0, 0, time.UTC))
	trackerCache := cache.New(5 * time.Minute)
	svc := &trackerServiceStub{clk: clk}
	h := NewTrackerHandler(svc, trackerCache, clk)

	resp := getToday(t, h)
	require.Equal(t, "2025-03-10", resp.TargetDate)

	// Second read inside the TTL is served from the cache.
	resp = getToday(t, h)
	require.Equal(t, "2025-03-10", resp.TargetDate)
	require.Equal(t, 1, svc.calls)

	// Crossing midnight within the TTL must not serve yesterday's entry.
	clk.Advance(4 * time.Minute)
	resp = getToday(t, h)
	require.Equal(t, "2025-03-11", resp.TargetDate)
	require.Equal(t, 2, svc.calls)
}
