package payments

import (
	"turfbook/internal/shared/middleware"
	"turfbook/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes configures payment reconciliation routes
func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	payments := rg.Group("/bookings")
	payments.Use(auth, middleware.RequireRoles(users.RoleOrganizer))
	{
		payments.POST("/:id/payments", controller.Reconcile) // POST /api/v1/bookings/:id/payments
	}
}
