package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-history/internal/api/http"
	"github.com/i474232898/weather-history/internal/chart"
	"github.com/i474232898/weather-history/internal/config"
	"github.com/i474232898/weather-history/internal/dashboard"
	"github.com/i474232898/weather-history/internal/scheduler"
	"github.com/i474232898/weather-history/internal/store"
	"github.com/i474232898/weather-history/internal/weather"
	"github.com/i474232898/weather-history/internal/weather/providers"
	"github.com/i474232898/weather-history/pkg/logger"
)

func main() {
	// Load configuration (.env, optional YAML file, environment).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("starting", "env", cfg.Env, "port", cfg.Port, "weather_api", cfg.WeatherAPIURL)

	// Shared HTTP client for outbound archive calls. Each call is bounded by
	// the archive's per-call deadline, which also covers the body read.
	httpClient := &http.Client{}

	// Archive client with circuit breaker and request logging.
	archive := providers.NewOpenMeteoArchive(providers.ArchiveConfig{
		BaseURL: cfg.WeatherAPIURL,
		Timeout: cfg.WeatherAPITimeout,
		Client:  httpClient,
		Breaker: providers.BreakerConfig{
			ConsecutiveFailures: cfg.BreakerFailures,
			OpenTimeout:         cfg.BreakerOpenTimeout,
		},
		Logger: appLogger,
	})

	service := weather.NewService(archive, appLogger)
	renderer := chart.NewRenderer(chart.Canvas{Width: cfg.ChartWidth, Height: cfg.ChartHeight}, chart.DefaultOptions())

	// Live dashboards with configured retention.
	memStore := store.NewMemoryStore(cfg.SessionMaxCount, cfg.SessionMaxAge)

	// Scheduler that closes idle dashboards.
	sched := scheduler.New(memStore, cfg.SweepInterval, appLogger)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-history",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.WeatherAPITimeout + 10*time.Second,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"service":    "weather-history",
			"dashboards": memStore.Len(),
			"charts":     renderer.Live(),
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:  service,
		Fetcher:  archive,
		Renderer: renderer,
		Store:    memStore,
		Dashboard: dashboard.Config{
			Locations:       weather.Locations,
			Ranges:          weather.Ranges,
			DefaultLocation: cfg.DefaultLocation,
			DefaultDays:     cfg.DefaultDays,
		},
		Logger: appLogger,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			appLogger.Error("fiber server stopped", "err", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("error during shutdown", "err", err)
	}

	// Tear down every dashboard so in-flight fetches are cancelled.
	dashboards := memStore.Drain()
	for _, d := range dashboards {
		d.Close()
	}
	for _, d := range dashboards {
		d.Wait()
	}
	appLogger.Info("stopped", "dashboards_closed", len(dashboards))
}
