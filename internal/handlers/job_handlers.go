package handlers

import (
	"net/http"

	"vatrentals/internal/jobs/background"

	"github.com/labstack/echo/v4"
)

// JobHandlers exposes the background scheduler status
type JobHandlers struct {
	scheduler *background.JobScheduler
}

// NewJobHandlers creates a new job handlers instance
func NewJobHandlers(scheduler *background.JobScheduler) *JobHandlers {
	return &JobHandlers{scheduler: scheduler}
}

// GetJobStatus handles GET /jobs
func (h *JobHandlers) GetJobStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.GetJobStatus())
}
