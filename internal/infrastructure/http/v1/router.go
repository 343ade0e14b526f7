// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"jobdesk/internal/domain/archival"
	"jobdesk/internal/domain/numbering"
	"jobdesk/internal/domain/profile"
	"jobdesk/internal/infrastructure/http/v1/handlers"
	"jobdesk/internal/infrastructure/http/v1/middleware"
	"jobdesk/internal/infrastructure/storage/postgres"
	"jobdesk/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the connection pool (for health checks).
	Pool *postgres.Pool

	// Logger for request logging.
	Logger *logger.Logger

	// JWTValidator for token validation.
	JWTValidator middleware.JWTValidator

	// Profiles resolves caller roles for permission checks.
	Profiles profile.Repo

	// Numbering mints document numbers.
	Numbering *numbering.Service

	// Archival closes and migrates jobs.
	Archival *archival.Engine
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}
	router.GET("/healthz", healthHandler.Live)

	documentHandler := handlers.NewDocumentHandler(cfg.Numbering)
	archivalHandler := handlers.NewArchivalHandler(cfg.Archival)

	// API v1
	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.Auth(cfg.JWTValidator))
	{
		documents := apiV1.Group("/documents")
		documents.Use(middleware.RequireCloseJobs(cfg.Profiles))
		{
			documents.POST("/issue", documentHandler.Issue)
		}

		jobs := apiV1.Group("/jobs")
		jobs.Use(middleware.RequireCloseJobs(cfg.Profiles))
		{
			jobs.POST("/:id/close", archivalHandler.CloseJob)
		}

		admin := apiV1.Group("/admin")
		admin.Use(middleware.RequireMigration(cfg.Profiles))
		{
			admin.POST("/archive/migrate", archivalHandler.Migrate)
			admin.POST("/counters/reconcile", documentHandler.Reconcile)
		}
	}

	return router
}
