package bookings

import (
	"turfbook/internal/shared/middleware"
	"turfbook/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	// Public slot grid
	rg.GET("/turfs/:id/availability", controller.GetAvailability) // GET /api/v1/turfs/:id/availability?date=YYYY-MM-DD

	bookings := rg.Group("/bookings")
	bookings.Use(auth)
	{
		bookings.GET("/:id", controller.GetBooking) // GET /api/v1/bookings/:id (organizer, turf owner or admin)

		organizer := bookings.Group("")
		organizer.Use(middleware.RequireRoles(users.RoleOrganizer))
		{
			organizer.POST("", controller.CreateBooking)              // POST /api/v1/bookings
			organizer.GET("", controller.ListMyBookings)              // GET  /api/v1/bookings?status=&date=&page=
			organizer.POST("/:id/cash", controller.AcceptCashPayment) // POST /api/v1/bookings/:id/cash
		}
	}

	owner := rg.Group("/owner/bookings")
	owner.Use(auth, middleware.RequireRoles(users.RoleTurfOwner))
	{
		owner.GET("", controller.ListOwnerBookings)           // GET  /api/v1/owner/bookings?turf_id=&status=&date=
		owner.POST("/:id/approve", controller.ApproveBooking) // POST /api/v1/owner/bookings/:id/approve
		owner.POST("/:id/reject", controller.RejectBooking)   // POST /api/v1/owner/bookings/:id/reject
	}
}

// Route definitions for reference:
//
// Booking lifecycle
// 1. Organizer checks GET /turfs/:id/availability and requests POST /bookings (pending)
// 2. Owner approves (approved, payment due) or rejects (rejected, terminal)
// 3. Organizer pays online POST /bookings/:id/payments or chooses cash POST /bookings/:id/cash (confirmed)
// 4. Unpaid approved bookings are cancelled by the expiry sweeper at min(start, created + 24h)
// 5. Owner may cancel before start with POST /owner/bookings/:id/cancel
