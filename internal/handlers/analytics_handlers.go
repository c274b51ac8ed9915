package handlers

import (
	"net/http"

	"vatrentals/internal/analytics"
	"vatrentals/internal/common"

	"github.com/labstack/echo/v4"
)

// AnalyticsHandlers handles HTTP requests for the owner dashboard
type AnalyticsHandlers struct {
	analyticsService analytics.Service
}

// NewAnalyticsHandlers creates a new analytics handlers instance
func NewAnalyticsHandlers(analyticsService analytics.Service) *AnalyticsHandlers {
	return &AnalyticsHandlers{analyticsService: analyticsService}
}

// GetDashboard handles GET /analytics/dashboard
func (h *AnalyticsHandlers) GetDashboard(c echo.Context) error {
	ctx := c.Request().Context()

	dashboard, err := h.analyticsService.Dashboard(ctx)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dashboard)
}

// RefreshDashboard handles POST /analytics/dashboard/refresh
// Forces a recompute, bypassing the cache.
func (h *AnalyticsHandlers) RefreshDashboard(c echo.Context) error {
	ctx := c.Request().Context()

	dashboard, err := h.analyticsService.RefreshDashboard(ctx)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dashboard)
}
