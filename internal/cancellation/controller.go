package cancellation

import (
	"net/http"
	"strconv"

	"turfbook/internal/shared/apperror"
	"turfbook/internal/shared/middleware"
	"turfbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// Controller handles HTTP requests for booking cancellations
type Controller struct {
	service Service
}

// NewController creates a new cancellation controller
func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CancelBooking godoc
// @Summary      Cancel a booking on one of your turfs
// @Tags         owner
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int            true  "Booking ID"
// @Param        request  body  CancelRequest  true  "Cancellation reason"
// @Success      200  {object}  Result
// @Failure      400  {object}  response.StandardApiResponse
// @Failure      409  {object}  response.StandardApiResponse
// @Failure      422  {object}  response.StandardApiResponse
// @Router       /owner/bookings/{id}/cancel [post]
func (c *Controller) CancelBooking(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}
	bookingID, ok := parseBookingID(ctx)
	if !ok {
		return
	}

	// An empty body is answered with MissingReason by the service.
	var req CancelRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
			return
		}
	}

	result, err := c.service.CancelByOwner(ctx.Request.Context(), caller, bookingID, req.Reason)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	message := "Booking cancelled"
	if !result.EmailSent {
		message = "Booking cancelled, but the organizer could not be emailed"
	}
	response.RespondJSON(ctx, "success", http.StatusOK, message, result, nil)
}

// GetCancellation handles GET /api/v1/bookings/:id/cancellation
func (c *Controller) GetCancellation(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}
	bookingID, ok := parseBookingID(ctx)
	if !ok {
		return
	}

	cancellation, err := c.service.GetCancellation(ctx.Request.Context(), caller, bookingID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Cancellation retrieved successfully", cancellation, nil)
}

// ListOwnerCancellations handles GET /api/v1/owner/cancellations
func (c *Controller) ListOwnerCancellations(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	list, err := c.service.ListOwnerCancellations(ctx.Request.Context(), caller, limit)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Cancellations retrieved successfully", list, nil)
}

func parseBookingID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(ctx, apperror.New(apperror.KindInvalidInput, "Invalid booking id"))
		return 0, false
	}
	return id, true
}
