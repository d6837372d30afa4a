package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"turfbook/api/routes"
	_ "turfbook/docs"
	"turfbook/internal/notifications"
	"turfbook/internal/payments"
	"turfbook/internal/shared/config"
	"turfbook/internal/shared/database"
	"turfbook/internal/shared/middleware"
	"turfbook/pkg/cache"
	"turfbook/pkg/lock"
	"turfbook/pkg/logger"
	"turfbook/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// @title        Turfbook API
// @version      1.0
// @BasePath     /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Redis backs the availability cache, the locks and the rate limiter.
	// Without it a single instance still works on in-process fallbacks.
	var (
		cacheService cache.Service = cache.Nop{}
		locker       lock.Locker   = lock.NewMemoryLocker()
	)
	if db.Redis != nil {
		cacheService = cache.NewService(db.Redis)
		locker = lock.NewRedisLocker(db.Redis)
	} else {
		appLogger.Warn("Redis disabled: using in-memory locks, availability cache off")
	}

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, ratelimit.ConfigFrom(cfg.RateLimit))
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	sender, err := newEmailSender(cfg)
	if err != nil {
		appLogger.Error("Failed to configure email transport", slog.Any("error", err))
		os.Exit(1)
	}

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	defer backgroundCancel()

	outbox, stopOutbox := newOutbox(backgroundCtx, cfg, sender)
	defer stopOutbox()

	appRouter := routes.NewRouter(cfg, db, routes.Infrastructure{
		Cache:   cacheService,
		Locker:  locker,
		Outbox:  outbox,
		Gateway: newGateway(cfg),
	})

	if cfg.Sweeper.Enabled {
		appRouter.Jobs().Start(backgroundCtx)
		defer appRouter.Jobs().Stop()
	} else {
		appLogger.Info("Expiry sweeper disabled, use POST /admin/sweeps to run it")
	}

	router := setupRouter(cfg, appRouter, rateLimiter)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Port)),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.String("built", BuildTime),
			slog.Bool("redis", db.Redis != nil),
			slog.Bool("kafka", cfg.Kafka.Enabled),
			slog.String("gateway", cfg.Gateway.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func newEmailSender(cfg *config.Config) (notifications.EmailSender, error) {
	if cfg.Email.Transport != "smtp" {
		return notifications.NewMockEmailSender(), nil
	}
	return notifications.NewSMTPEmailSender(&notifications.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	})
}

// newOutbox publishes emails to Kafka when a broker is configured and
// starts the consumer that delivers them. Otherwise emails are sent inline.
func newOutbox(ctx context.Context, cfg *config.Config, sender notifications.EmailSender) (notifications.Outbox, func()) {
	appLogger := logger.GetDefault()
	direct := notifications.NewDirectOutbox(sender, notifications.DefaultRetryPolicy())
	if !cfg.Kafka.Enabled {
		return direct, func() {}
	}

	producer, err := notifications.NewKafkaNotificationProducer(
		notifications.DefaultKafkaProducerConfig(cfg.Kafka.Brokers, cfg.Kafka.Topic))
	if err != nil {
		appLogger.Error("Kafka producer unavailable, sending emails inline", slog.Any("error", err))
		return direct, func() {}
	}

	consumer, err := notifications.NewKafkaNotificationConsumer(
		notifications.DefaultConsumerConfig(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.Topic), sender)
	if err != nil {
		appLogger.Error("Kafka consumer unavailable, sending emails inline", slog.Any("error", err))
		_ = producer.Close()
		return direct, func() {}
	}
	consumer.Start(ctx)
	appLogger.Info("Notification outbox on Kafka", slog.String("topic", cfg.Kafka.Topic))

	return producer, func() {
		if err := consumer.Stop(); err != nil {
			appLogger.Error("Error stopping notification consumer", slog.Any("error", err))
		}
		if err := producer.Close(); err != nil {
			appLogger.Error("Error closing notification producer", slog.Any("error", err))
		}
	}
}

func newGateway(cfg *config.Config) payments.Gateway {
	if cfg.Gateway.Provider == "midtrans" && cfg.Gateway.ServerKey != "" {
		return payments.NewMidtransGateway(cfg.Gateway.ServerKey, cfg.Gateway.IsProduction)
	}
	logger.GetDefault().Warn("Using static payment gateway: every reference is unknown until registered")
	return payments.NewStaticGateway()
}

func setupRouter(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	// Logs requests with a request id and recovers from panics
	engine.Use(middleware.RequestLogger(), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Idempotency-Key", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	appRouter.SetupRoutes(engine)

	return engine
}
