package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pitstop/pitstop-backend/internal/handlers"
	"github.com/pitstop/pitstop-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler       *handlers.AuthHandler
	AuthMiddleware    *middleware.AuthMiddleware
	GoogleAuthHandler *handlers.GoogleAuthHandler
	SyllabusHandler   *handlers.SyllabusHandler
	RatingHandler     *handlers.RatingHandler
	ScheduleHandler   *handlers.ScheduleHandler
	SyncHandler       *handlers.SyncHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("pitstop-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/api/register", cfg.AuthHandler.Register)
	router.POST("/api/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)
	// Google redirects here after consent; authenticated by the state param.
	router.GET("/google/callback", cfg.GoogleAuthHandler.Callback)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// Google calendar consent
	protected.GET("/google/authurl", cfg.GoogleAuthHandler.AuthURL)
	protected.GET("/google/status", cfg.GoogleAuthHandler.Status)
	// Courses
	api := protected.Group("/api")
	api.POST("/courses/extract", cfg.SyllabusHandler.Extract)
	api.GET("/courses", cfg.SyllabusHandler.List)
	api.GET("/courses/:id", cfg.SyllabusHandler.Get)
	api.GET("/courses/:id/topics", cfg.SyllabusHandler.Topics)
	api.POST("/courses/:id/ratings", cfg.RatingHandler.Save)
	api.POST("/courses/:id/schedule", cfg.ScheduleHandler.Build)
	api.GET("/courses/:id/schedule", cfg.ScheduleHandler.Get)
	api.POST("/courses/:id/sync", cfg.SyncHandler.Sync)
	api.GET("/courses/:id/syncs", cfg.SyncHandler.History)

	return router
}
