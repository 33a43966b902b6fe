package router

import (
	"net/http"
	"time"

	"wabalerts/internal/common"
	"wabalerts/internal/config"
	"wabalerts/internal/domain/notification"
	"wabalerts/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// New creates and configures the Gin router with all middleware and routes.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	notificationHandler *notification.Handler,
) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()

	// Global middleware stack (order matters)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(cfg.CORS))

	rateLimiter := middleware.NewRateLimiter(
		cfg.RateLimit.RequestsPerSecond,
		cfg.RateLimit.Burst,
		time.Duration(cfg.RateLimit.IdleTTLSec)*time.Second,
	)
	r.Use(rateLimiter.Middleware())
	r.Use(middleware.Logger(logger))

	// Public routes
	r.GET("/health", healthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected API routes (API key required)
	protectedAPI := r.Group("/api/v1")
	protectedAPI.Use(middleware.Auth(cfg.Auth.APIKeys))
	{
		notificationHandler.RegisterRoutes(protectedAPI)
	}

	return r
}

// healthCheck handles GET /health
func healthCheck(c *gin.Context) {
	common.Success(c, http.StatusOK, gin.H{
		"status":  "ok",
		"service": "wabalerts",
	})
}
