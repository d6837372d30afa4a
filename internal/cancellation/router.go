package cancellation

import (
	"turfbook/internal/shared/middleware"
	"turfbook/internal/users"

	"github.com/gin-gonic/gin"
)

func SetupCancellationRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	// Owner cancellation (turf owners only)
	owner := rg.Group("/owner")
	owner.Use(auth, middleware.RequireRoles(users.RoleTurfOwner))
	{
		owner.POST("/bookings/:id/cancel", controller.CancelBooking)   // POST /api/v1/owner/bookings/:id/cancel
		owner.GET("/cancellations", controller.ListOwnerCancellations) // GET  /api/v1/owner/cancellations?limit=
	}

	// Audit record, visible to the organizer and the turf owner
	bookings := rg.Group("/bookings")
	bookings.Use(auth)
	{
		bookings.GET("/:id/cancellation", controller.GetCancellation) // GET /api/v1/bookings/:id/cancellation
	}
}
