// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/kitchen-planner/internal/api"
	"github.com/andresuchdata/kitchen-planner/internal/bom"
	"github.com/andresuchdata/kitchen-planner/internal/cache"
	"github.com/andresuchdata/kitchen-planner/internal/config"
	"github.com/andresuchdata/kitchen-planner/internal/service"
	"github.com/andresuchdata/kitchen-planner/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	plannerService, closeSource, err := buildPlannerService(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize planner")
	}
	defer func() {
		if err := closeSource(); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to close BOM source")
		}
	}()

	router := api.NewRouter(&api.Services{PlannerService: plannerService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func buildPlannerService(cfg *config.Config) (*service.PlannerService, func() error, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	source, closeSource, err := bom.NewSourceFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	entries, err := source.Load(ctx)
	if err != nil {
		_ = closeSource()
		return nil, nil, err
	}
	logger.Log.Info().Str("source", source.Name()).Int("ingredients", len(entries)).Msg("Loaded bill of materials")

	base, err := cfg.Planning.Configuration()
	if err != nil {
		_ = closeSource()
		return nil, nil, err
	}

	planCache, err := cache.NewPlanCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Plan cache unavailable, continuing without cache")
		planCache = cache.NewNoopPlanCache()
	}

	svc, err := service.NewPlannerService(source.Name(), entries, base, service.InventoryDefaultsFromConfig(cfg.Planning), planCache)
	if err != nil {
		_ = closeSource()
		return nil, nil, err
	}
	return svc, closeSource, nil
}
