package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"courier/internal/handler"
	"courier/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	DeliveryHandler *handler.DeliveryHandler
	DriverHandler   *handler.DriverHandler
	QuoteHandler    *handler.QuoteHandler
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check and metrics.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Quote routes.
		v1.POST("/quotes", deps.QuoteHandler.Quote)

		// Delivery routes.
		deliveries := v1.Group("/deliveries")
		{
			deliveries.POST("", deps.DeliveryHandler.Create)
			deliveries.GET("", deps.DeliveryHandler.GetAll)
			deliveries.GET("/available", deps.DeliveryHandler.GetAvailable)
			deliveries.GET("/:id", deps.DeliveryHandler.Get)
			deliveries.POST("/:id/claim", deps.DeliveryHandler.Claim)
			deliveries.POST("/:id/pickup", deps.DeliveryHandler.Pickup)
			deliveries.POST("/:id/transit", deps.DeliveryHandler.Transit)
			deliveries.POST("/:id/complete", deps.DeliveryHandler.Complete)
			deliveries.POST("/:id/cancel", deps.DeliveryHandler.Cancel)
			deliveries.POST("/:id/rating", deps.DeliveryHandler.Rate)
			deliveries.POST("/:id/tracking", deps.DeliveryHandler.AppendTracking)
			deliveries.GET("/:id/tracking", deps.DeliveryHandler.GetTracking)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/nearby", deps.DriverHandler.Nearby)
			drivers.GET("/:id", deps.DriverHandler.Get)
			drivers.POST("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.POST("/:id/availability", deps.DriverHandler.SetAvailability)
			drivers.GET("/:id/deliveries", deps.DriverHandler.ActiveDeliveries)
			drivers.GET("/:id/history", deps.DriverHandler.History)
		}
	}

	return router
}
