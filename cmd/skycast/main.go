package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/adegtyarev/skycast/internal/api/http"
	"github.com/adegtyarev/skycast/internal/config"
	"github.com/adegtyarev/skycast/internal/geo"
	"github.com/adegtyarev/skycast/internal/weather"
	"github.com/adegtyarev/skycast/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls, with an explicit bound so a
	// hung upstream surfaces as a classified network error.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// One provider per deployment, selected by configuration.
	var (
		currentClient  weather.CurrentConditionsClient
		forecastClient weather.ForecastClient
	)
	switch cfg.Provider {
	case config.ProviderOpenWeather:
		p := providers.NewOpenWeatherProvider(httpClient, cfg.APIKey)
		currentClient, forecastClient = p, p
	default:
		p := providers.NewWeatherAPIProvider(httpClient, cfg.APIKey)
		currentClient, forecastClient = p, p
	}
	log.Printf("using weather provider %s", currentClient.Name())

	// Controllers owning the canonical state and the refresh timers.
	weatherCtl := weather.NewWeatherController(currentClient, cfg.RefreshInterval)
	defer weatherCtl.Close()

	forecastCtl := weather.NewForecastController(forecastClient, cfg.ForecastDays, cfg.RefreshInterval)
	defer forecastCtl.Close()

	// Geolocation provider with optional reverse geocoding.
	var resolver geo.Resolver
	if cfg.GeocoderAPIKey != "" {
		resolver = geo.NewGoogleResolver(cfg.GeocoderAPIKey)
	}
	geoOpts := geo.DefaultOptions()
	geoOpts.Timeout = cfg.GeoTimeout
	geoOpts.MaxAge = cfg.GeoMaxAge
	geoProv := geo.NewProvider(geo.NewIPAPISource(httpClient), resolver, geoOpts)

	// Acquire a fix once at session start; when it lands and no data has
	// been requested yet, seed both controllers with the coordinates. A geo
	// failure never blocks manual city search.
	go func() {
		fix, failure := geoProv.Acquire(context.Background())
		if failure != nil {
			log.Printf("geolocation failed: %s", failure.Message)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if weatherCtl.Snapshot().Data == nil {
			weatherCtl.FetchByCoords(ctx, fix.Coords.Lat, fix.Coords.Lon)
		}
		if forecastCtl.Snapshot().Data == nil {
			forecastCtl.FetchByCoords(ctx, fix.Coords.Lat, fix.Coords.Lon)
		}
	}()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "skycast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
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
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "skycast",
			"provider": currentClient.Name(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Controllers{
		Weather:  weatherCtl,
		Forecast: forecastCtl,
		Geo:      geoProv,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
