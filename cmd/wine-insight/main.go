package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/wine-insight/internal/api/http"
	"github.com/i474232898/wine-insight/internal/catalog"
	"github.com/i474232898/wine-insight/internal/config"
	"github.com/i474232898/wine-insight/internal/observability"
	"github.com/i474232898/wine-insight/internal/scheduler"
	"github.com/i474232898/wine-insight/internal/store"
	"github.com/i474232898/wine-insight/internal/weather"
	"github.com/i474232898/wine-insight/internal/weather/providers"
)

func main() {
	envErr := godotenv.Load()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg)
	if envErr != nil {
		log.Info("no .env file loaded", "reason", envErr)
	}

	metrics := observability.NewMetrics()

	// Catalog is optional; lookups simply never match without it.
	wines, err := catalog.LoadDir(cfg.CatalogDir)
	if err != nil {
		log.Error("failed to load wine catalog; continuing without it", "dir", cfg.CatalogDir, "error", err)
		wines = catalog.New(nil)
	}
	metrics.SetCatalogRecords(wines.Len())
	log.Info("wine catalog loaded", "dir", cfg.CatalogDir, "records", wines.Len())

	// Shared HTTP client for outbound archive calls.
	httpClient := &http.Client{
		Timeout: cfg.ArchiveTimeout,
	}

	var source weather.DailySource = providers.NewOpenMeteoArchiveProvider(httpClient, cfg.ArchiveBaseURL)

	// Optional series cache with periodic pruning.
	if cfg.CacheEnabled() {
		seriesCache := store.NewMemoryStore(cfg.CacheMaxEntries, cfg.CacheMaxAge, nil)
		source = store.NewCachedSource(source, seriesCache, metrics, log)

		sched := scheduler.New(seriesCache, cfg.CachePruneInterval, log)
		if err := sched.Start(); err != nil {
			log.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}
		defer sched.Stop()
	}

	climate := weather.NewService(source,
		weather.WithFetchTimeout(cfg.ArchiveTimeout),
		weather.WithLogger(log),
		weather.WithMetrics(metrics),
	)

	var geocoder weather.RegionGeocoder
	if cfg.GeocoderAPIKey != "" {
		geocoder = providers.NewGoogleRegionGeocoder(cfg.GeocoderAPIKey)
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "wine-insight",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.ArchiveTimeout + 10*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "wine-insight",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Catalog:  wines,
		Climate:  climate,
		Geocoder: geocoder,
		Metrics:  metrics,
		Logger:   log,
	})

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()
	log.Info("listening", "port", cfg.Port)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}
