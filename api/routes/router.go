// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"turfbook/internal/auth"
	"turfbook/internal/bookings"
	"turfbook/internal/cancellation"
	"turfbook/internal/expiry"
	"turfbook/internal/notifications"
	"turfbook/internal/payments"
	"turfbook/internal/ratings"
	"turfbook/internal/shared/config"
	"turfbook/internal/shared/database"
	"turfbook/internal/shared/middleware"
	"turfbook/internal/turfs"
	"turfbook/pkg/cache"
	"turfbook/pkg/lock"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Infrastructure is built by the server and shared by every module
type Infrastructure struct {
	Cache   cache.Service
	Locker  lock.Locker
	Outbox  notifications.Outbox
	Gateway payments.Gateway
}

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	infra  Infrastructure

	auth         gin.HandlerFunc
	mailer       *notifications.Mailer
	availability *bookings.AvailabilityCache
	turfRepo     turfs.Repository
	bookingRepo  bookings.Repository
	uow          bookings.UnitOfWork
	sweeper      expiry.Sweeper
	jobs         *expiry.JobProcessor
}

// NewRouter creates a new router instance and wires the shared services
func NewRouter(cfg *config.Config, db *database.DB, infra Infrastructure) *Router {
	if infra.Cache == nil {
		infra.Cache = cache.Nop{}
	}
	if infra.Locker == nil {
		infra.Locker = lock.NewMemoryLocker()
	}

	pg := db.GetPostgreSQL()
	authRepo := auth.NewRepository(pg)

	r := &Router{
		config:       cfg,
		db:           db,
		infra:        infra,
		auth:         middleware.JWTAuthWithConfig(cfg),
		mailer:       notifications.NewMailer(auth.NewUserDirectory(authRepo), infra.Outbox),
		availability: bookings.NewAvailabilityCache(infra.Cache, cfg.Redis.AvailabilityTTL, cfg.Location()),
		turfRepo:     turfs.NewRepository(pg),
		bookingRepo:  bookings.NewRepository(pg),
		uow:          bookings.NewUnitOfWork(pg),
	}

	r.sweeper = expiry.NewSweeper(r.uow, r.bookingRepo, infra.Locker, r.mailer, r.availability, expiry.Options{
		PaymentWindow: cfg.Booking.PaymentWindow,
		BatchSize:     cfg.Sweeper.BatchSize,
		LockTTL:       cfg.Sweeper.LockTTL,
		Location:      cfg.Location(),
	})
	r.jobs = expiry.NewJobProcessor(r.sweeper, &expiry.JobConfig{
		Interval:   cfg.Sweeper.Interval,
		RunOnStart: true,
	})

	return r
}

// Jobs returns the expiry job processor so the server can start and stop it
func (r *Router) Jobs() *expiry.JobProcessor {
	return r.jobs
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupTurfRoutes(api)
		r.setupBookingRoutes(api)
		r.setupPaymentRoutes(api)
		r.setupCancellationRoutes(api)
		r.setupRatingRoutes(api)
		r.setupNotificationRoutes(api)
		r.setupExpiryRoutes(api)
	}
}

func (r *Router) rules() bookings.Rules {
	return bookings.Rules{
		Location:      r.config.Location(),
		PaymentWindow: r.config.Booking.PaymentWindow,
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "turfbook-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "turfbook-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
			"sweeper":     r.jobs.GetJobStatus(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	auth.NewRouter(authController, r.auth).SetupRoutes(rg)
}

// setupTurfRoutes configures turf listing and owner management routes
func (r *Router) setupTurfRoutes(rg *gin.RouterGroup) {
	turfService := turfs.NewService(r.turfRepo)
	turfs.SetupTurfRoutes(rg, turfs.NewController(turfService), r.auth)
}

// setupBookingRoutes configures the booking lifecycle routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingService := bookings.NewService(r.uow, r.bookingRepo, r.turfRepo, r.mailer, r.availability, r.rules())
	bookings.SetupBookingRoutes(rg, bookings.NewController(bookingService), r.auth)
}

// setupPaymentRoutes configures online payment reconciliation
func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	paymentService := payments.NewService(r.uow, r.bookingRepo, r.infra.Gateway, r.infra.Locker, r.mailer, r.availability,
		payments.Options{
			Location:       r.config.Location(),
			IdempotencyTTL: r.config.Redis.IdempotencyTTL,
		})
	payments.SetupPaymentRoutes(rg, payments.NewController(paymentService), r.auth)
}

// setupCancellationRoutes configures owner cancellation routes
func (r *Router) setupCancellationRoutes(rg *gin.RouterGroup) {
	cancellationRepo := cancellation.NewRepository(r.db.GetPostgreSQL())
	cancellationService := cancellation.NewService(r.uow, r.bookingRepo, cancellationRepo, r.turfRepo,
		r.mailer, r.availability, r.rules())
	cancellation.SetupCancellationRoutes(rg, cancellation.NewController(cancellationService), r.auth)
}

// setupRatingRoutes configures the turf rating ledger
func (r *Router) setupRatingRoutes(rg *gin.RouterGroup) {
	ratingRepo := ratings.NewRepository(r.db.GetPostgreSQL())
	ratingService := ratings.NewService(ratingRepo, r.turfRepo, r.bookingRepo, r.mailer)
	ratings.SetupRatingRoutes(rg, ratings.NewController(ratingService), r.auth)
}

// setupNotificationRoutes configures the in-app inbox
func (r *Router) setupNotificationRoutes(rg *gin.RouterGroup) {
	notificationRepo := notifications.NewRepository(r.db.GetPostgreSQL())
	notificationService := notifications.NewService(notificationRepo)
	notifications.SetupNotificationRoutes(rg, notifications.NewController(notificationService), r.auth)
}

// setupExpiryRoutes configures admin control of the expiry sweeper
func (r *Router) setupExpiryRoutes(rg *gin.RouterGroup) {
	expiry.SetupExpiryRoutes(rg, expiry.NewController(r.sweeper, r.jobs), r.auth)
}
