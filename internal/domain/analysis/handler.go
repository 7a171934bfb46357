package analysis

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vitalytics/vitalytics/internal/domain/dataset"
	"github.com/vitalytics/vitalytics/internal/domain/metrics"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the analysis API on the group. narrativeMW applies
// only to the analysis route, which is the one slow external call.
func (h *Handler) RegisterRoutes(api *echo.Group, narrativeMW ...echo.MiddlewareFunc) {
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:id", h.GetPatient)
	api.GET("/patients/:id/metrics", h.GetPatientMetrics)
	api.POST("/patients/:id/analysis", h.AnalyzePatient, narrativeMW...)
	api.GET("/dataset", h.DatasetSummary)
}

func (h *Handler) ListPatients(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ListPatients())
}

func (h *Handler) GetPatient(c echo.Context) error {
	rec, err := h.svc.GetPatient(c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) GetPatientMetrics(c echo.Context) error {
	pm, err := h.svc.Metrics(c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, pm)
}

func (h *Handler) AnalyzePatient(c echo.Context) error {
	res, err := h.svc.Analyze(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) DatasetSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.DatasetSummary())
}

func errorJSON(c echo.Context, err error) error {
	return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dataset.ErrPatientNotFound):
		return http.StatusNotFound
	case errors.Is(err, metrics.ErrInvalidMetric), errors.Is(err, metrics.ErrDivisionUndefined):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dataset.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
