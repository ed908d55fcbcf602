package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "metaladmin/docs" // Import swagger docs
	"metaladmin/internal/app"
	"metaladmin/internal/config"
	"metaladmin/internal/http/handlers"
	"metaladmin/internal/http/middleware"
	"metaladmin/internal/telemetry"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// @title Metal Admin API
// @version 1.0
// @description Backend for the metal products admin dashboard

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the commerce API token.

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = time.RFC3339
	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize telemetry (optional service)
	shutdownTracing, enabled, err := telemetry.Init(context.Background(), cfg.Telemetry)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
	} else if enabled {
		log.Info().Str("endpoint", cfg.Telemetry.Endpoint).Msg("Telemetry initialized successfully")
	} else {
		log.Info().Msg("Telemetry disabled")
	}

	telemetry.RegisterMetrics()

	services := app.NewServices(cfg)
	if services.Storage == nil {
		log.Warn().Msg("Storage not configured, image previews disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go services.Cache.Start(ctx, cfg.Cache.SweepInterval)
	go services.Views.Start(ctx, cfg.Cache.SweepInterval)
	log.Info().Dur("interval", cfg.Cache.SweepInterval).Msg("Cache and view session sweepers started")

	// Setup Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.Telemetry())
	e.Use(middleware.RequestLogger())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":        "ok",
			"view_sessions": services.Views.Len(),
			"cache_entries": services.Cache.Len(),
		})
	})
	e.GET("/metrics", echo.WrapHandler(telemetry.MetricsHandler()))

	// Swagger - only enabled in development environment
	if cfg.IsDevelopment() {
		e.GET("/docs/*", echoSwagger.WrapHandler)
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// Setup routes
	api := e.Group("/api/v1")
	handlers.SetupRoutes(api, services)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Str("port", cfg.Server.Port).Str("upstream", cfg.Upstream.BaseURL).Msg("Server started")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	cancel()

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Failed to flush traces")
	}

	log.Info().Msg("Server exited")
}
