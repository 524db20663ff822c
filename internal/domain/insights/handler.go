package insights

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthlens/healthlens/internal/analytics"
	"github.com/healthlens/healthlens/internal/platform/auth"
	"github.com/healthlens/healthlens/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "clinician", "patient"))
	readGroup.GET("/analysis/trends", h.Trends)
	readGroup.GET("/analysis/risks", h.Risks)
	readGroup.GET("/analysis/insights", h.Insights)
	readGroup.GET("/analysis/predict", h.Predict)

	writeGroup := api.Group("", auth.RequireRole("admin", "clinician"))
	writeGroup.POST("/analysis/refresh", h.Refresh)
}

func patientParam(c echo.Context) (uuid.UUID, error) {
	pid, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	return pid, nil
}

// analysisError maps the engine's sentinel errors onto HTTP status codes.
func analysisError(err error) error {
	switch {
	case errors.Is(err, analytics.ErrUnknownMetric), errors.Is(err, analytics.ErrInvalidHorizon):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, analytics.ErrInsufficientData):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) Refresh(c echo.Context) error {
	pid, err := patientParam(c)
	if err != nil {
		return err
	}
	summary, err := h.svc.Refresh(c.Request().Context(), pid)
	if err != nil {
		return analysisError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) Trends(c echo.Context) error {
	pid, err := patientParam(c)
	if err != nil {
		return err
	}
	trends, err := h.svc.Trends(c.Request().Context(), pid, c.QueryParam("metric"))
	if err != nil {
		return analysisError(err)
	}
	if trends == nil {
		trends = []*StoredTrend{}
	}
	return c.JSON(http.StatusOK, trends)
}

func (h *Handler) Risks(c echo.Context) error {
	pid, err := patientParam(c)
	if err != nil {
		return err
	}
	risks, err := h.svc.Risks(c.Request().Context(), pid)
	if err != nil {
		return analysisError(err)
	}
	if risks == nil {
		risks = []*StoredRisk{}
	}
	return c.JSON(http.StatusOK, risks)
}

func (h *Handler) Insights(c echo.Context) error {
	pid, err := patientParam(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Insights(c.Request().Context(), pid, pg.Limit, pg.Offset)
	if err != nil {
		return analysisError(err)
	}
	if items == nil {
		items = []*StoredInsight{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Predict(c echo.Context) error {
	pid, err := patientParam(c)
	if err != nil {
		return err
	}
	metric := c.QueryParam("metric")
	if metric == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "metric is required")
	}
	daysAhead := 30
	if raw := c.QueryParam("days_ahead"); raw != "" {
		daysAhead, err = strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid days_ahead")
		}
	}
	pred, err := h.svc.Predict(c.Request().Context(), pid, metric, daysAhead)
	if err != nil {
		return analysisError(err)
	}
	return c.JSON(http.StatusOK, pred)
}
