package notifications

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

func (c *Controller) ListMine(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	unreadOnly := ctx.Query("unread") == "true"
	inbox, err := c.service.ListMine(ctx.Request.Context(), caller, unreadOnly)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Notifications retrieved successfully", inbox, nil)
}

func (c *Controller) MarkRead(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		response.RespondError(ctx, apperror.New(apperror.KindInvalidInput, "Invalid notification id"))
		return
	}

	if err := c.service.MarkRead(ctx.Request.Context(), caller, id); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Notification marked as read", nil, nil)
}
