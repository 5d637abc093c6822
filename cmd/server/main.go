package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ladybird-ops/ladybird-backend/config"
	"github.com/ladybird-ops/ladybird-backend/internal/app/controller"
	"github.com/ladybird-ops/ladybird-backend/internal/app/repository"
	"github.com/ladybird-ops/ladybird-backend/internal/app/service"
	"github.com/ladybird-ops/ladybird-backend/internal/db"
	"github.com/ladybird-ops/ladybird-backend/internal/router"
	"github.com/ladybird-ops/ladybird-backend/internal/scheduler"
	"github.com/ladybird-ops/ladybird-backend/internal/ws"
	"github.com/ladybird-ops/ladybird-backend/pkg/logger"
	"github.com/ladybird-ops/ladybird-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting LadyBird Equipment Tracking Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Store directory cache (optional)
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Continuing without Redis store cache", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	}

	// Equipment event feed
	hub := ws.NewHub()
	go hub.Run()

	// Initialize repositories
	storeRepo := repository.NewStoreRepository(db.GetDB())
	equipmentRepo := repository.NewEquipmentRepository(db.GetDB())

	// Initialize services
	storeService := service.NewStoreService(storeRepo)
	equipmentService := service.NewEquipmentService(db.GetDB(), equipmentRepo, storeRepo, hub)

	// Initialize controllers
	storeController := controller.NewStoreController(storeService)
	equipmentController := controller.NewEquipmentController(equipmentService)

	// Daily downtime report
	downtimeScheduler := scheduler.NewDowntimeScheduler(
		equipmentService,
		storeService,
		cfg.Scheduler.DowntimeReportSpec,
	)
	if err := downtimeScheduler.Start(); err != nil {
		logger.Fatal("Failed to start downtime report scheduler", err)
	}
	defer downtimeScheduler.Stop()

	// Setup router
	r := router.NewRouter(storeController, equipmentController, hub, cfg)
	engine := r.Setup()

	// Start server in a goroutine
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

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
