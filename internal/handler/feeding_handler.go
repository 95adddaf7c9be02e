package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/catelog/catetube-backend/internal/clock"
	"github.com/catelog/catetube-backend/internal/model"
	"github.com/catelog/catetube-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type FeedingHandler struct {
	svc   service.FeedingService
	clock clock.Clock
}

func NewFeedingHandler(svc service.FeedingService, clk clock.Clock) *FeedingHandler {
	return &FeedingHandler{svc: svc, clock: clk}
}

type FeedingLogResponse struct {
	ID            uint64  `json:"id"`
	AmountML      float64 `json:"amount_ml"`
	FlushedBefore bool    `json:"flushed_before"`
	FlushedAfter  bool    `json:"flushed_after"`
	TimeGiven     string  `json:"time_given"`
}

func toFeedingLogResponse(l *model.FeedingLog) FeedingLogResponse {
	return FeedingLogResponse{
		ID:            l.ID,
		AmountML:      l.AmountML,
		FlushedBefore: l.FlushedBefore,
		FlushedAfter:  l.FlushedAfter,
		TimeGiven:     l.TimeGiven.Format(time.RFC3339),
	}
}

func (h *FeedingHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	body := struct {
		AmountML      float64 `json:"amount_ml"`
		FlushedBefore *bool   `json:"flushed_before"`
		FlushedAfter  *bool   `json:"flushed_after"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	in := service.FeedingInput{
		AmountML:      body.AmountML,
		FlushedBefore: true,
		FlushedAfter:  true,
	}
	if body.FlushedBefore != nil {
		in.FlushedBefore = *body.FlushedBefore
	}
	if body.FlushedAfter != nil {
		in.FlushedAfter = *body.FlushedAfter
	}

	res, err := h.svc.LogFeeding(c.Request().Context(), uid, in)
	if err != nil {
		switch err {
		case service.ErrInvalidAmount:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "tracker not found"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "failed to log feeding"))
		}
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Feeding logged successfully",
		"data":    toFeedingLogResponse(res.Log),
		"tracker": toTrackerResponse(res.Tracker, h.clock.Today()),
	})
}

func (h *FeedingHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("per_page"))
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	logs, total, err := h.svc.ListFeedings(c.Request().Context(), uid, limit, (page-1)*limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "failed to load feedings"))
	}
	out := make([]FeedingLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, toFeedingLogResponse(&logs[i]))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"logs": out,
		"pagination": map[string]any{
			"page":     page,
			"per_page": limit,
			"total":    total,
		},
	})
}
