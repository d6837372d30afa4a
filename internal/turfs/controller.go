package turfs

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

func (c *Controller) CreateTurf(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreateTurfRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	turf, err := c.service.CreateTurf(ctx.Request.Context(), caller, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Turf created successfully", turf, nil)
}

func (c *Controller) UpdateTurf(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	turfID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		response.RespondError(ctx, apperror.New(apperror.KindInvalidInput, "Invalid turf id"))
		return
	}

	var req UpdateTurfRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	turf, err := c.service.UpdateTurf(ctx.Request.Context(), caller, turfID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Turf updated successfully", turf, nil)
}

func (c *Controller) GetTurf(ctx *gin.Context) {
	turfID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		response.RespondError(ctx, apperror.New(apperror.KindInvalidInput, "Invalid turf id"))
		return
	}

	turf, err := c.service.GetTurf(ctx.Request.Context(), turfID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Turf retrieved successfully", turf, nil)
}

func (c *Controller) ListTurfs(ctx *gin.Context) {
	var filters TurfFilters
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := c.service.ListTurfs(ctx.Request.Context(), filters)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Turfs retrieved successfully", result, nil)
}

func (c *Controller) ListMyTurfs(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	list, err := c.service.ListOwnerTurfs(ctx.Request.Context(), caller)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Turfs retrieved successfully", list, nil)
}
