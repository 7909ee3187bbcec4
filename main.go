// Package main is the entry point for the Stockapp API
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vinnymaker/stockapp/database"
	"github.com/vinnymaker/stockapp/internal/api"
	"github.com/vinnymaker/stockapp/internal/api/middleware"
	"github.com/vinnymaker/stockapp/internal/config"
	"github.com/vinnymaker/stockapp/internal/service"
	"github.com/vinnymaker/stockapp/pkg/utils/zaplogger"
)

func main() {
	// Setup logger
	defer zaplogger.Sync()

	// startUpMessage
	zaplogger.Info(config.SingleLine)
	zaplogger.Info("Stockapp API")

	// Load configuration
	cfg, err := config.Get()
	if err != nil {
		zaplogger.Fatal("failed to load configuration", zaplogger.Fields{"error": err})
	}
	zaplogger.Info("  * loaded")
	zaplogger.SetLogLevel(cfg.ServerLogLevel)

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Setup middleware
	middleware.SetupLoggerMiddleware(e)

	// Connect to Postgres
	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}

	// Connect Redis
	redisClient, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Tee application logs into the database
	if err := zaplogger.InitLogger(db); err != nil {
		log.Fatalf("Failed to initialize DB logger: %v", err)
	}

	// Setup routes
	api.SetupRoutes(e, db, redisClient, cacheTTL(cfg))

	// Start the server
	startServer(e, cfg)
}

// cacheTTL derives the quote cache lifetime from the updater's refresh
// interval. Cached quotes never outlive one refresh cycle.
func cacheTTL(cfg *config.Config) time.Duration {
	if d, err := time.ParseDuration(cfg.UpdaterRefreshInterval); err == nil && d > 0 {
		return d
	}
	return service.DefaultRefreshInterval
}

// startServer starts the Echo server on the specified port
func startServer(e *echo.Echo, cfg *config.Config) {
	port := cfg.ServerPort
	if port == "" {
		port = "3009"
	}
	startupMessage := fmt.Sprintf("%s %s Server [:%s] started", cfg.APIName, cfg.APIVersion, port)

	zaplogger.Info(config.SingleLine)
	zaplogger.Info(startupMessage)
	zaplogger.Info(config.SingleLine)
	e.Logger.Infof(startupMessage)
	e.Logger.Fatal(e.Start(":" + port))
}
