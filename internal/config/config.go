package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names selectable via WEATHER_PROVIDER.
const (
	ProviderWeatherAPI  = "weatherapi"
	ProviderOpenWeather = "openweathermap"
)

// Placeholder values that count as an unset API key. Shipping templates use
// these; treating them as configured would waste a session on guaranteed
// 401s.
var placeholderKeys = map[string]struct{}{
	"":                  {},
	"your_api_key":      {},
	"your_api_key_here": {},
	"changeme":          {},
}

// AppConfig holds all application configuration.
type AppConfig struct {
	// Provider is the single upstream this deployment binds to.
	Provider string
	// APIKey is the key for the selected provider.
	APIKey string

	// RefreshInterval controls how often a controller re-fetches its last
	// remembered location once data is present.
	RefreshInterval time.Duration

	// ForecastDays is the number of forecast days requested per fetch.
	ForecastDays int

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// Geolocation acquisition settings.
	GeoTimeout time.Duration
	GeoMaxAge  time.Duration

	// GeocoderAPIKey enables reverse geocoding of the acquired fix when set.
	GeocoderAPIKey string

	Port string
}

// Load reads configuration from environment with sensible defaults. A
// missing or placeholder API key for the selected provider is a
// configuration error surfaced to the operator, not retried.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Provider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", ProviderWeatherAPI))
	switch cfg.Provider {
	case ProviderWeatherAPI:
		cfg.APIKey = os.Getenv("WEATHERAPI_API_KEY")
	case ProviderOpenWeather:
		cfg.APIKey = os.Getenv("OPENWEATHER_API_KEY")
	default:
		return nil, fmt.Errorf("unknown WEATHER_PROVIDER %q (want %s or %s)",
			cfg.Provider, ProviderWeatherAPI, ProviderOpenWeather)
	}
	if _, bad := placeholderKeys[cfg.APIKey]; bad {
		return nil, fmt.Errorf("API key for provider %q is not configured", cfg.Provider)
	}

	// Refresh interval override in milliseconds, default 5 minutes.
	refreshMS := getenvInt("REFRESH_INTERVAL_MS", 300000)
	if refreshMS <= 0 {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL_MS: %d", refreshMS)
	}
	cfg.RefreshInterval = time.Duration(refreshMS) * time.Millisecond

	cfg.ForecastDays = getenvInt("FORECAST_DAYS", 5)
	if cfg.ForecastDays <= 0 {
		return nil, fmt.Errorf("invalid FORECAST_DAYS: %d", cfg.ForecastDays)
	}

	httpTimeout, err := getenvDuration("HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = httpTimeout

	geoTimeout, err := getenvDuration("GEO_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.GeoTimeout = geoTimeout

	geoMaxAge, err := getenvDuration("GEO_MAX_AGE", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.GeoMaxAge = geoMaxAge

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
