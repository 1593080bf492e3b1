package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ritrovo/ritrovo/internal/adapters/http/api"
	app "github.com/ritrovo/ritrovo/internal/app"
	"github.com/ritrovo/ritrovo/internal/config"
	"github.com/ritrovo/ritrovo/internal/domain/feature"
	"github.com/ritrovo/ritrovo/internal/simulation"
	"github.com/ritrovo/ritrovo/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(log),
		app.WithSeedOnStart(cfg.Seed),
		app.WithBaseThreshold(cfg.BaseThreshold),
		app.WithWorkers(cfg.RecommendWorkers),
		app.WithFallbackDistanceKM(cfg.DefaultCityDistanceKM),
		app.WithAdjusterOptions(
			feature.WithThresholdFactors(cfg.AgeThresholdFactor, cfg.CityThresholdFactor),
			feature.WithAgeDecay(cfg.AgeDecayPerYear, cfg.AgeDeltaFloor, cfg.MaxAgeGapYears),
			feature.WithCityBetaExponent(cfg.CityBetaExponent),
		),
		app.WithSimulation(simulation.Config{
			Users:              cfg.SimUsers,
			EventsPerCategory:  cfg.SimEventsPerCategory,
			AttendancesPerUser: cfg.SimAttendancesPer,
			SameCityBias:       cfg.SimSameCityBias,
			Seed:               cfg.SimSeed,
			Categories:         cfg.Categories,
			Cities:             cfg.Cities,
		}),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Router and routes.
	router := chi.NewRouter()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
