package ratings

import (
	"turfbook/internal/shared/middleware"
	"turfbook/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupRatingRoutes configures turf rating routes
func SetupRatingRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	rg.GET("/turfs/:id/ratings", controller.List)               // GET /api/v1/turfs/:id/ratings?limit=
	rg.GET("/turfs/:id/ratings/summary", controller.GetSummary) // GET /api/v1/turfs/:id/ratings/summary

	rate := rg.Group("/turfs")
	rate.Use(auth, middleware.RequireRoles(users.RoleOrganizer))
	{
		rate.PUT("/:id/ratings", controller.Rate) // PUT /api/v1/turfs/:id/ratings
	}
}
