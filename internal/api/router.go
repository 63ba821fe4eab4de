package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/grocerylab/grocery-api/internal/app"
	iauth "github.com/grocerylab/grocery-api/internal/auth"
	"github.com/grocerylab/grocery-api/internal/cache"
	"github.com/grocerylab/grocery-api/internal/handlers"
	"github.com/grocerylab/grocery-api/internal/middleware"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, store cache.Store, cfg *app.Config, jwt *iauth.JWTService, authSvc *iauth.AuthService) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if authSvc == nil {
		return nil, fmt.Errorf("auth service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(store, 100, time.Minute))

	r.NoRoute(middleware.NotFoundHandler)

	if cfg.Monitoring.Health.Enabled {
		healthHandler := handlers.NewHealthHandler(db)
		r.GET("/api/health", healthHandler.Health)
	}

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(authSvc)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.POST("/otp", authHandler.SendOTP)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	requireAuth := middleware.Auth(jwt)
	r.POST("/api/auth/logout", requireAuth, authHandler.Logout)

	if err := registerEntityRoutes(r, db, store, cfg.Cache.TTL, requireAuth); err != nil {
		return nil, err
	}

	return r, nil
}
