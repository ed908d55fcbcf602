package handlers

import (
	"net/http"

	"metaladmin/internal/services"

	"github.com/labstack/echo/v4"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Charts godoc
// @Summary Sales chart series
// @Tags dashboard
// @Produce json
// @Param period query string false "day, week, month or year" default(month)
// @Success 200 {array} models.ChartSeries
// @Failure 400 {object} ErrorResponse
// @Router /dashboard/charts [get]
// @Security BearerAuth
func (h *DashboardHandler) Charts(c echo.Context) error {
	series, err := h.dashboardService.Charts(c.Request().Context(), c.QueryParam("period"))
	if err != nil {
		return respondError(c, err, "failed to fetch chart data")
	}
	return c.JSON(http.StatusOK, series)
}

// Summary godoc
// @Summary Dashboard counters
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.DashboardSummary
// @Router /dashboard/summary [get]
// @Security BearerAuth
func (h *DashboardHandler) Summary(c echo.Context) error {
	summary, err := h.dashboardService.Summary(c.Request().Context())
	if err != nil {
		return respondError(c, err, "failed to fetch dashboard summary")
	}
	return c.JSON(http.StatusOK, summary)
}
