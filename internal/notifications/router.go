package notifications

import (
	"github.com/gin-gonic/gin"
)

func SetupNotificationRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	inbox := rg.Group("/notifications")
	inbox.Use(auth)
	{
		inbox.GET("", controller.ListMine)            // GET /api/v1/notifications?unread=true
		inbox.PATCH("/:id/read", controller.MarkRead) // PATCH /api/v1/notifications/:id/read
	}
}
