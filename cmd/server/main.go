package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"courier/internal/app"
	"courier/internal/config"
	"courier/internal/fare"
	"courier/internal/handler"
	internalRedis "courier/internal/redis"
	"courier/internal/repository/postgres"
	"courier/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, notifier := wireServer(db, redisClient, nrApp, cfg)
	defer notifier.Close()

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server along
// with the notification service, which owns a Kafka writer to close.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.NotificationService) {
	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	driverRepo := postgres.NewDriverRepository(db)
	deliveryRepo := postgres.NewDeliveryRepository(db)
	trackingRepo := postgres.NewTrackingRepository(db)

	// Fee schedule from configuration.
	schedule := fare.Schedule{
		BaseFee:        cfg.Fare.BaseFee,
		BaseDistanceKm: cfg.Fare.BaseDistanceKm,
		PerKmFee:       cfg.Fare.PerKmFee,
		PlatformRate:   cfg.Fare.PlatformRate,
	}

	// Initialize services.
	notificationService := service.NewNotificationService(cfg.Kafka)
	locatorService := service.NewLocatorService(locationStore, cacheStore, driverRepo, deliveryRepo, cfg.Dispatch)
	dispatchService := service.NewDispatchService(deliveryRepo, driverRepo, lockStore, locatorService, notificationService, schedule, cfg.Dispatch)
	lifecycleService := service.NewLifecycleService(db, deliveryRepo, driverRepo, notificationService)
	trackingService := service.NewTrackingService(deliveryRepo, trackingRepo, driverRepo, locationStore, cacheStore)
	driverService := service.NewDriverService(locationStore, cacheStore, driverRepo)

	// Initialize handlers.
	deliveryHandler := handler.NewDeliveryHandler(dispatchService, lifecycleService, locatorService, trackingService, deliveryRepo)
	driverHandler := handler.NewDriverHandler(driverService, locatorService, driverRepo, deliveryRepo)
	quoteHandler := handler.NewQuoteHandler(schedule)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		DeliveryHandler: deliveryHandler,
		DriverHandler:   driverHandler,
		QuoteHandler:    quoteHandler,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, notificationService
}
