package ratings

import (
	"net/http"
	"strconv"

	"turfbook/internal/shared/apperror"
	"turfbook/internal/shared/middleware"
	"turfbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Rate godoc
// @Summary      Rate a turf after a paid booking
// @Tags         ratings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int          true  "Turf ID"
// @Param        request  body  RateRequest  true  "Rating"
// @Success      200  {object}  Rating
// @Failure      400  {object}  response.StandardApiResponse
// @Router       /turfs/{id}/ratings [put]
func (c *Controller) Rate(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}
	turfID, ok := parseTurfID(ctx)
	if !ok {
		return
	}

	var req RateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	rating, err := c.service.Rate(ctx.Request.Context(), caller, turfID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Rating saved", rating, nil)
}

// GetSummary handles GET /api/v1/turfs/:id/ratings/summary
func (c *Controller) GetSummary(ctx *gin.Context) {
	turfID, ok := parseTurfID(ctx)
	if !ok {
		return
	}

	summary, err := c.service.Summary(ctx.Request.Context(), turfID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Rating summary retrieved successfully", summary, nil)
}

// List handles GET /api/v1/turfs/:id/ratings
func (c *Controller) List(ctx *gin.Context) {
	turfID, ok := parseTurfID(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	list, err := c.service.ListForTurf(ctx.Request.Context(), turfID, limit)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ratings retrieved successfully", list, nil)
}

func parseTurfID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(ctx, apperror.New(apperror.KindInvalidInput, "Invalid turf id"))
		return 0, false
	}
	return id, true
}
