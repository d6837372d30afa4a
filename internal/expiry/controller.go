package expiry

import (
	"net/http"
	"time"

	"turfbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	sweeper Sweeper
	jobs    *JobProcessor
	now     func() time.Time
}

// NewController exposes the sweeper to admins. jobs may be nil when the
// background loop is disabled.
func NewController(sweeper Sweeper, jobs *JobProcessor) *Controller {
	return &Controller{sweeper: sweeper, jobs: jobs, now: time.Now}
}

// SweepResponse lists the bookings cancelled by one run.
type SweepResponse struct {
	CancelledIDs []int64 `json:"cancelled_ids"`
	Count        int     `json:"count"`
}

// RunSweep godoc
// @Summary      Run one expiry sweep now
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SweepResponse
// @Failure      409  {object}  response.StandardApiResponse
// @Router       /admin/sweeps [post]
func (c *Controller) RunSweep(ctx *gin.Context) {
	cancelled, err := c.sweeper.Sweep(ctx.Request.Context(), c.now())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Sweep completed",
		SweepResponse{CancelledIDs: cancelled, Count: len(cancelled)}, nil)
}

// GetStatus handles GET /api/v1/admin/sweeps/status
func (c *Controller) GetStatus(ctx *gin.Context) {
	if c.jobs == nil {
		response.RespondJSON(ctx, "success", http.StatusOK, "Background sweeper disabled", gin.H{"status": "disabled"}, nil)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Sweeper status", c.jobs.GetJobStatus(), nil)
}
