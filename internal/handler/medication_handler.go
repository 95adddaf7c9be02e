package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/catelog/catetube-backend/internal/model"
	"github.com/catelog/catetube-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type MedicationHandler struct {
	svc service.MedicationService
}

func NewMedicationHandler(svc service.MedicationService) *MedicationHandler {
	return &MedicationHandler{svc: svc}
}

type MedicationLogResponse struct {
	ID             uint64  `json:"id"`
	MedicationName string  `json:"medication_name"`
	Dosage         string  `json:"dosage"`
	AmountML       float64 `json:"amount_ml"`
	Route          string  `json:"route"`
	Notes          string  `json:"notes"`
	FlushedBefore  bool    `json:"flushed_before"`
	FlushedAfter   bool    `json:"flushed_after"`
	TimeGiven      string  `json:"time_given"`
}

func toMedicationLogResponse(l *model.MedicationLog) MedicationLogResponse {
	return MedicationLogResponse{
		ID:             l.ID,
		MedicationName: l.MedicationName,
		Dosage:         l.Dosage,
		AmountML:       l.AmountML,
		Route:          l.Route,
		Notes:          l.Notes,
		FlushedBefore:  l.FlushedBefore,
		FlushedAfter:   l.FlushedAfter,
		TimeGiven:      l.TimeGiven.Format(time.RFC3339),
	}
}

func (h *MedicationHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	body := struct {
		MedicationName string  `json:"medication_name"`
		Dosage         string  `json:"dosage"`
		AmountML       float64 `json:"amount_ml"`
		Route          string  `json:"route"`
		Notes          string  `json:"notes"`
		FlushedBefore  *bool   `json:"flushed_before"`
		FlushedAfter   *bool   `json:"flushed_after"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	in := service.MedicationInput{
		MedicationName: body.MedicationName,
		Dosage:         body.Dosage,
		AmountML:       body.AmountML,
		Route:          body.Route,
		Notes:          body.Notes,
		FlushedBefore:  true,
		FlushedAfter:   true,
	}
	if body.FlushedBefore != nil {
		in.FlushedBefore = *body.FlushedBefore
	}
	if body.FlushedAfter != nil {
		in.FlushedAfter = *body.FlushedAfter
	}

	log, err := h.svc.LogMedication(c.Request().Context(), uid, in)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Medication logged successfully",
		"data":    toMedicationLogResponse(log),
	})
}

func (h *MedicationHandler) List(c echo.Context) error {
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
	logs, total, err := h.svc.ListMedications(c.Request().Context(), uid, limit, (page-1)*limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "failed to load medication logs"))
	}
	out := make([]MedicationLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, toMedicationLogResponse(&logs[i]))
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
