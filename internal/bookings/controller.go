package bookings

import (
	"net/http"
	"strconv"

	"turfbook/internal/shared/apperror"
	"turfbook/internal/shared/identity"
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

// GetAvailability godoc
// @Summary      Slot availability for a turf
// @Tags         bookings
// @Produce      json
// @Param        id    path   int     true  "Turf ID"
// @Param        date  query  string  true  "Date (YYYY-MM-DD)"
// @Success      200  {object}  Availability
// @Router       /turfs/{id}/availability [get]
func (c *Controller) GetAvailability(ctx *gin.Context) {
	turfID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		response.RespondError(ctx, apperror.New(apperror.KindInvalidInput, "Invalid turf id"))
		return
	}

	var query AvailabilityQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	availability, err := c.service.GetAvailability(ctx.Request.Context(), turfID, query.Date)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Availability retrieved successfully", availability, nil)
}

// CreateBooking godoc
// @Summary      Request a booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  CreateBookingRequest  true  "Booking request"
// @Success      201  {object}  Booking
// @Failure      409  {object}  response.StandardApiResponse
// @Router       /bookings [post]
func (c *Controller) CreateBooking(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	booking, err := c.service.CreateBooking(ctx.Request.Context(), caller, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking request sent to the turf owner", booking, nil)
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	caller, bookingID, ok := bookingCall(ctx)
	if !ok {
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), caller, bookingID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

// ListMyBookings handles GET /api/v1/bookings
func (c *Controller) ListMyBookings(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := c.service.ListMyBookings(ctx.Request.Context(), caller, query)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", result, nil)
}

// ListOwnerBookings handles GET /api/v1/owner/bookings
func (c *Controller) ListOwnerBookings(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := c.service.ListOwnerBookings(ctx.Request.Context(), caller, query)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", result, nil)
}

// ApproveBooking godoc
// @Summary      Approve a pending booking
// @Tags         owner
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Router       /owner/bookings/{id}/approve [post]
func (c *Controller) ApproveBooking(ctx *gin.Context) {
	caller, bookingID, ok := bookingCall(ctx)
	if !ok {
		return
	}

	booking, err := c.service.ApproveBooking(ctx.Request.Context(), caller, bookingID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking approved", booking, nil)
}

// RejectBooking handles POST /api/v1/owner/bookings/:id/reject
func (c *Controller) RejectBooking(ctx *gin.Context) {
	caller, bookingID, ok := bookingCall(ctx)
	if !ok {
		return
	}

	var req RejectBookingRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
			return
		}
	}

	booking, err := c.service.RejectBooking(ctx.Request.Context(), caller, bookingID, req.Reason)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking rejected", booking, nil)
}

// AcceptCashPayment godoc
// @Summary      Confirm an approved booking with cash at the venue
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      409  {object}  response.StandardApiResponse
// @Router       /bookings/{id}/cash [post]
func (c *Controller) AcceptCashPayment(ctx *gin.Context) {
	caller, bookingID, ok := bookingCall(ctx)
	if !ok {
		return
	}

	booking, err := c.service.AcceptCashPayment(ctx.Request.Context(), caller, bookingID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking confirmed, please pay at the venue", booking, nil)
}

// bookingCall extracts the caller and the :id path parameter, writing the
// error response itself when either is missing.
func bookingCall(ctx *gin.Context) (caller identity.Identity, bookingID int64, ok bool) {
	caller, ok = middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return caller, 0, false
	}

	bookingID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || bookingID <= 0 {
		response.RespondError(ctx, apperror.New(apperror.KindInvalidInput, "Invalid booking id"))
		return caller, 0, false
	}
	return caller, bookingID, true
}
