package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/catelog/catetube-backend/internal/cache"
	"github.com/catelog/catetube-backend/internal/clock"
	"github.com/catelog/catetube-backend/internal/model"
	"github.com/catelog/catetube-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type TrackerHandler struct {
	svc   service.TrackerService
	cache *cache.Cache
	clock clock.Clock
}

func NewTrackerHandler(svc service.TrackerService, c *cache.Cache, clk clock.Clock) *TrackerHandler {
	return &TrackerHandler{svc: svc, cache: c, clock: clk}
}

type TrackerResponse struct {
	ID                 uint64  `json:"id"`
	TargetDate         string  `json:"target_date"`
	DailyTargetML      float64 `json:"daily_target_ml"`
	RemainingML        float64 `json:"remaining_ml"`
	TotalFedML         float64 `json:"total_fed_ml"`
	FeedingCount       int     `json:"feeding_count"`
	ProgressPercentage float64 `json:"progress_percentage"`
	IsCompleted        bool    `json:"is_completed"`
	IsOverdue          bool    `json:"is_overdue"`
	LastUpdated        string  `json:"last_updated"`
	CreatedAt          string  `json:"created_at"`
}

func toTrackerResponse(t *model.DailyFeedingTracker, today time.Time) TrackerResponse {
	return TrackerResponse{
		ID:                 t.ID,
		TargetDate:         t.TargetDate.Format("2006-01-02"),
		DailyTargetML:      t.DailyTargetML,
		RemainingML:        t.RemainingML,
		TotalFedML:         t.TotalFedML,
		FeedingCount:       t.FeedingCount,
		ProgressPercentage: t.ProgressPercentage(),
		IsCompleted:        t.IsCompleted(),
		IsOverdue:          t.IsOverdue(today),
		LastUpdated:        t.LastUpdated.Format(time.RFC3339),
		CreatedAt:          t.CreatedAt.Format(time.RFC3339),
	}
}

// GetToday serves the self-healing "today" read. Responses are cached per
// user; every tracker mutation invalidates the entry.
func (h *TrackerHandler) GetToday(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}

	key := cache.TrackerTodayKey(uid, h.clock.Today())
	if cached, ok := h.cache.Get(key); ok {
		return c.JSONBlob(http.StatusOK, cached)
	}

	t, err := h.svc.GetOrCreateToday(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "failed to resolve today's tracker"))
	}
	resp := toTrackerResponse(t, h.clock.Today())
	if b, err := json.Marshal(resp); err == nil {
		h.cache.Set(key, b)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *TrackerHandler) UpdateToday(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body struct {
		DailyTargetML float64 `json:"daily_target_ml"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	t, created, err := h.svc.UpdateTarget(c.Request().Context(), uid, body.DailyTargetML)
	if err != nil {
		if err == service.ErrInvalidTarget {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "failed to update tracker"))
	}
	message := "Updated daily target"
	if created {
		message = "Created new tracker"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": message,
		"tracker": toTrackerResponse(t, h.clock.Today()),
	})
}

func (h *TrackerHandler) Reset(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body struct {
		DailyTargetML *float64 `json:"daily_target_ml"`
	}
	_ = c.Bind(&body)
	res, err := h.svc.Reset(c.Request().Context(), uid, body.DailyTargetML)
	if err != nil {
		if err == service.ErrInvalidTarget {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "failed to reset tracker"))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":          "Tracker reset successfully",
		"deleted_feedings": res.DeletedFeedings,
		"tracker":          toTrackerResponse(res.Tracker, h.clock.Today()),
	})
}

func (h *TrackerHandler) History(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	days, _ := strconv.Atoi(c.QueryParam("days"))
	if days <= 0 {
		days = 7
	}
	trackers, err := h.svc.History(c.Request().Context(), uid, days)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "failed to load history"))
	}
	today := h.clock.Today()
	out := make([]TrackerResponse, 0, len(trackers))
	for i := range trackers {
		out = append(out, toTrackerResponse(&trackers[i], today))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"trackers":    out,
		"total_count": len(out),
	})
}

func (h *TrackerHandler) Stats(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	stats, err := h.svc.Stats(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "failed to compute stats"))
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *TrackerHandler) CleanupOld(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	days, _ := strconv.Atoi(c.QueryParam("days"))
	if days <= 0 {
		days = 30
	}
	deleted, err := h.svc.CleanupOld(c.Request().Context(), days)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "failed to clean up trackers"))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":       "Old trackers deleted",
		"deleted_count": deleted,
	})
}
