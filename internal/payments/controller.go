package payments

import (
	"fmt"
	"net/http"
	"strconv"

	"turfbook/internal/shared/apperror"
	"turfbook/internal/shared/middleware"
	"turfbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// IdempotencyHeader lets clients retry a reconciliation safely.
const (
	IdempotencyHeader       = "Idempotency-Key"
	MaxIdempotencyKeyLength = 100
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Reconcile godoc
// @Summary      Verify a gateway payment and confirm the booking
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id               path    int               true   "Booking ID"
// @Param        Idempotency-Key  header  string            false  "Client idempotency key"
// @Param        request          body    ReconcileRequest  true   "Gateway reference"
// @Success      200  {object}  Receipt
// @Failure      400  {object}  response.StandardApiResponse
// @Failure      409  {object}  response.StandardApiResponse
// @Failure      402  {object}  response.StandardApiResponse
// @Router       /bookings/{id}/payments [post]
func (c *Controller) Reconcile(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	bookingID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || bookingID <= 0 {
		response.RespondError(ctx, apperror.New(apperror.KindInvalidInput, "Invalid booking id"))
		return
	}

	var req ReconcileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}
	req.IdempotencyKey = ctx.GetHeader(IdempotencyHeader)
	if len(req.IdempotencyKey) > MaxIdempotencyKeyLength {
		response.RespondError(ctx, apperror.New(apperror.KindInvalidInput,
			fmt.Sprintf("%s must be at most %d characters", IdempotencyHeader, MaxIdempotencyKeyLength)))
		return
	}

	receipt, err := c.service.Reconcile(ctx.Request.Context(), caller, bookingID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment verified, booking confirmed", receipt, nil)
}
