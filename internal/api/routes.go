package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lexdesk/training-monitor/internal/config"
	"lexdesk/training-monitor/internal/domain"
	"lexdesk/training-monitor/internal/service"
)

// Dependencies bundles what SetupRoutes wires into handlers.
type Dependencies struct {
	JWTSecret       string
	AuthService     service.AuthService
	TrainingService service.TrainingService
	Metrics         *Metrics
	RateLimit       config.RateLimitConfig
	Logger          *zap.Logger
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	authHandler := NewAuthHandler(deps.AuthService, deps.Logger)
	trainingHandler := NewTrainingHandler(deps.TrainingService, deps.Metrics, deps.Logger)

	authMiddleware := AuthMiddleware(deps.JWTSecret)
	postLimiter := RateLimiter(deps.RateLimit.Requests, deps.RateLimit.Window)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", deps.Metrics.Handler())

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		// --- Discussion and file access, for the owning attorney and assignees ---
		shared := protected.Group("")
		shared.Use(RoleMiddleware(domain.RoleAttorney, domain.RoleParalegal))
		{
			// POST /api/v1/training-documents/{id}/{kind}/{itemId}/comments
			shared.POST("/training-documents/:id/:kind/:itemId/comments", postLimiter, trainingHandler.PostComment)
			// POST /api/v1/training-documents/{id}/{kind}/{itemId}/comments/{commentId}/replies
			shared.POST("/training-documents/:id/:kind/:itemId/comments/:commentId/replies", postLimiter, trainingHandler.PostReply)
			// POST /api/v1/files/access-url
			shared.POST("/files/access-url", trainingHandler.ResolveFileAccessURL)
		}

		// --- Attorney Specific Routes ---
		attorneyGroup := protected.Group("/attorney")
		attorneyGroup.Use(RoleMiddleware(domain.RoleAttorney))
		{
			attorneyGroup.GET("/training-documents", trainingHandler.ListAttorneyDocuments)
			attorneyGroup.POST("/training-documents", trainingHandler.CreateTrainingDocument)
			attorneyGroup.POST("/uploads/url", trainingHandler.RequestUploadURL)
		}

		// --- Paralegal Specific Routes ---
		paralegalGroup := protected.Group("/paralegal")
		paralegalGroup.Use(RoleMiddleware(domain.RoleParalegal))
		{
			paralegalGroup.GET("/training-documents", trainingHandler.ListParalegalDocuments)
			paralegalGroup.PUT("/training-documents/:id/:kind/:itemId/progress", trainingHandler.RecordProgress)
		}
	}
}
