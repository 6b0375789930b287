package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/construtorcheck/construtorcheck-backend/config"
	"github.com/construtorcheck/construtorcheck-backend/internal/app/controller"
	"github.com/construtorcheck/construtorcheck-backend/internal/app/repository"
	"github.com/construtorcheck/construtorcheck-backend/internal/app/service"
	"github.com/construtorcheck/construtorcheck-backend/internal/db"
	"github.com/construtorcheck/construtorcheck-backend/internal/middleware"
	"github.com/construtorcheck/construtorcheck-backend/internal/router"
	"github.com/construtorcheck/construtorcheck-backend/internal/scheduler"
	"github.com/construtorcheck/construtorcheck-backend/internal/storage"
	"github.com/construtorcheck/construtorcheck-backend/internal/websocket"
	"github.com/construtorcheck/construtorcheck-backend/pkg/logger"
	"github.com/construtorcheck/construtorcheck-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting ConstrutorCheck API", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional; the stats cache degrades to direct queries.
	redis.Init(&cfg.Redis)
	defer redis.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	companyRepo := repository.NewCompanyRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())

	// Live feed hub
	hub := websocket.NewHub()
	go hub.Run()

	// Services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	companyService := service.NewCompanyService(companyRepo)
	reviewService := service.NewReviewService(reviewRepo, companyRepo, db.GetDB(), hub)

	// Storage
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Controllers
	authController := controller.NewAuthController(authService)
	companyController := controller.NewCompanyController(companyService)
	reviewController := controller.NewReviewController(reviewService)
	uploadController := controller.NewUploadController(s3Storage)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r := router.NewRouter(
		authController,
		companyController,
		reviewController,
		uploadController,
		authMiddleware,
		hub,
		cfg,
	)
	engine := r.Setup()

	aggregateScheduler := scheduler.NewAggregateScheduler(companyService)
	if err := aggregateScheduler.Start(); err != nil {
		logger.Fatal("Failed to start aggregate scheduler", err)
	}
	defer aggregateScheduler.Stop()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
}
