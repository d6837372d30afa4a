package expiry

import (
	"turfbook/internal/shared/middleware"
	"turfbook/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupExpiryRoutes configures admin routes for the expiry sweeper
func SetupExpiryRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	admin := rg.Group("/admin/sweeps")
	admin.Use(auth, middleware.RequireRoles(users.RoleAdmin))
	{
		admin.POST("", controller.RunSweep)        // POST /api/v1/admin/sweeps
		admin.GET("/status", controller.GetStatus) // GET  /api/v1/admin/sweeps/status
	}
}
