package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"lexdesk/training-monitor/internal/api"
	"lexdesk/training-monitor/internal/config"
	"lexdesk/training-monitor/internal/logger"
	"lexdesk/training-monitor/internal/repository/mongo"
	"lexdesk/training-monitor/internal/service"
	"lexdesk/training-monitor/internal/storage"
)

// @title Training Monitor API
// @version 1.0
// @description API for attorney training documents, paralegal progress, and item discussions.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	configDir := pflag.String("config", ".", "directory containing config.yaml")
	pflag.Parse()

	// --- Configuration ---
	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()
	log.Info("starting training monitor server", zap.String("address", cfg.Server.Address))

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		log.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			log.Warn("index creation failed", zap.Error(err))
			return
		}
		log.Info("index creation completed")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(context.Background(), cfg.S3, log)
	if err != nil {
		log.Fatal("failed to initialize S3 storage", zap.Error(err))
	}

	// --- Repositories and Services ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	docRepo := mongo.NewMongoTrainingDocumentRepository(appDB)

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	trainingService := service.NewTrainingService(docRepo, userRepo, fileStorage)

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := api.NewMetrics(registry)

	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(log), metrics.Middleware(), api.CORS(cfg.CORS.AllowedOrigins))

	api.SetupRoutes(router, api.Dependencies{
		JWTSecret:       cfg.JWT.Secret,
		AuthService:     authService,
		TrainingService: trainingService,
		Metrics:         metrics,
		RateLimit:       cfg.RateLimit,
		Logger:          log,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exiting")
}
