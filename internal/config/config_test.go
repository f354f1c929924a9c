package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WEATHERAPI_API_KEY", "real-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Provider != ProviderWeatherAPI {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.RefreshInterval != 5*time.Minute {
		t.Errorf("refresh interval = %v, want 5m", cfg.RefreshInterval)
	}
	if cfg.ForecastDays != 5 {
		t.Errorf("forecast days = %d, want 5", cfg.ForecastDays)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("http timeout = %v, want 15s", cfg.HTTPTimeout)
	}
	if cfg.GeoTimeout != 10*time.Second || cfg.GeoMaxAge != 5*time.Minute {
		t.Errorf("geo settings = %v/%v", cfg.GeoTimeout, cfg.GeoMaxAge)
	}
}

func TestLoadMissingKeyFails(t *testing.T) {
	t.Setenv("WEATHERAPI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected a configuration error for a missing API key")
	}
}

func TestLoadPlaceholderKeyFails(t *testing.T) {
	t.Setenv("WEATHERAPI_API_KEY", "your_api_key")

	if _, err := Load(); err == nil {
		t.Fatal("expected a configuration error for a placeholder API key")
	}
}

func TestLoadProviderSelection(t *testing.T) {
	t.Setenv("WEATHER_PROVIDER", "openweathermap")
	t.Setenv("OPENWEATHER_API_KEY", "real-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != ProviderOpenWeather || cfg.APIKey != "real-key" {
		t.Errorf("got %q/%q", cfg.Provider, cfg.APIKey)
	}
}

func TestLoadUnknownProviderFails(t *testing.T) {
	t.Setenv("WEATHER_PROVIDER", "acme")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}

func TestLoadRefreshOverride(t *testing.T) {
	t.Setenv("WEATHERAPI_API_KEY", "real-key")
	t.Setenv("REFRESH_INTERVAL_MS", "60000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RefreshInterval != time.Minute {
		t.Errorf("refresh interval = %v, want 1m", cfg.RefreshInterval)
	}
}
