package handler

import (
	"net/http"
	"time"

	"github.com/catelog/catetube-backend/internal/report"
	"github.com/labstack/echo/v4"
)

type ReportHandler struct {
	manager *report.Manager
}

func NewReportHandler(manager *report.Manager) *ReportHandler {
	return &ReportHandler{manager: manager}
}

func (h *ReportHandler) submit(c echo.Context, kind report.Kind) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	body := struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Format    string `json:"format"`
	}{}
	_ = c.Bind(&body)

	if body.Format == "" {
		body.Format = "csv"
	}
	format, err := report.ParseFormat(body.Format)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}

	var from, to *time.Time
	if body.StartDate != "" {
		t, err := time.Parse(time.RFC3339, body.StartDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid start_date"))
		}
		from = &t
	}
	if body.EndDate != "" {
		t, err := time.Parse(time.RFC3339, body.EndDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid end_date"))
		}
		to = &t
	}

	id, err := h.manager.Submit(report.Request{
		UserID: uid,
		Kind:   kind,
		Format: format,
		From:   from,
		To:     to,
	})
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("busy", err.Error()))
	}
	return c.JSON(http.StatusAccepted, map[string]any{
		"report_id": id,
		"status":    "processing",
		"message":   "Report generation started",
	})
}

func (h *ReportHandler) SubmitFeeding(c echo.Context) error {
	return h.submit(c, report.KindFeeding)
}

func (h *ReportHandler) SubmitMedication(c echo.Context) error {
	return h.submit(c, report.KindMedication)
}

func (h *ReportHandler) SubmitCombined(c echo.Context) error {
	return h.submit(c, report.KindCombined)
}

func (h *ReportHandler) Status(c echo.Context) error {
	status, err := h.manager.Status(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "report not found"))
	}
	if status.Status == report.StateError {
		return c.JSON(http.StatusInternalServerError, status)
	}
	return c.JSON(http.StatusOK, status)
}

func (h *ReportHandler) Download(c echo.Context) error {
	artifact, err := h.manager.Take(c.Param("id"))
	if err != nil {
		switch err {
		case report.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "report not found"))
		case report.ErrNotReady:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "report not ready for download"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "failed to download report"))
		}
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+artifact.Filename()+`"`)
	return c.Blob(http.StatusOK, artifact.MIMEType(), artifact.Data)
}

func (h *ReportHandler) Cleanup(c echo.Context) error {
	h.manager.Cleanup(c.Param("id"))
	return c.JSON(http.StatusOK, map[string]string{"message": "Report data cleaned up"})
}

func (h *ReportHandler) Active(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"active_reports": h.manager.Active(),
	})
}
