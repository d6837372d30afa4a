package turfs

import (
	"turfbook/internal/shared/middleware"
	"turfbook/internal/users"

	"github.com/gin-gonic/gin"
)

func SetupTurfRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	// Public browsing
	public := rg.Group("/turfs")
	{
		public.GET("", controller.ListTurfs)   // GET /api/v1/turfs
		public.GET("/:id", controller.GetTurf) // GET /api/v1/turfs/:id
	}

	owner := rg.Group("/owner/turfs")
	owner.Use(auth, middleware.RequireRoles(users.RoleTurfOwner, users.RoleAdmin))
	{
		owner.POST("", controller.CreateTurf)    // POST /api/v1/owner/turfs
		owner.GET("", controller.ListMyTurfs)    // GET /api/v1/owner/turfs
		owner.PUT("/:id", controller.UpdateTurf) // PUT /api/v1/owner/turfs/:id
	}
}
