package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/adegtyarev/skycast/internal/weather"
)

const weatherAPICurrentBody = `{
	"location": {
		"name": "London",
		"country": "United Kingdom",
		"lat": 51.52,
		"lon": -0.11,
		"localtime_epoch": 1736935200,
		"localtime": "2025-01-15 10:00"
	},
	"current": {
		"temp_c": 14.2,
		"feelslike_c": 12.6,
		"humidity": 82,
		"wind_kph": 36.0,
		"condition": {"text": "Light rain", "icon": "//cdn.weatherapi.com/64x64/day/296.png"}
	}
}`

func newTestWeatherAPI(t *testing.T, handler http.HandlerFunc) (*WeatherAPIProvider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewWeatherAPIProvider(srv.Client(), "test-key")
	p.baseURL = srv.URL
	return p, srv
}

func TestWeatherAPICurrentNormalization(t *testing.T) {
	p, _ := newTestWeatherAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "51.5074,-0.1278" {
			t.Errorf("q = %q", got)
		}
		w.Write([]byte(weatherAPICurrentBody))
	})

	got, derr := p.FetchByCoords(context.Background(), 51.5074, -0.1278)
	if derr != nil {
		t.Fatalf("unexpected error: %+v", derr)
	}

	if got.Temperature != 14 {
		t.Errorf("temperature = %d, want 14", got.Temperature)
	}
	if got.FeelsLike != 13 {
		t.Errorf("feelsLike = %d, want 13", got.FeelsLike)
	}
	if got.Condition != weather.ConditionRain {
		t.Errorf("condition = %q, want Rain", got.Condition)
	}
	if got.Description != "light rain" {
		t.Errorf("description = %q", got.Description)
	}
	// 36 km/h is exactly 10.0 m/s.
	if got.WindSpeedMS != 10.0 {
		t.Errorf("windSpeed = %v, want 10.0", got.WindSpeedMS)
	}
	if got.City != "London" || got.Country != "United Kingdom" {
		t.Errorf("place = %s, %s", got.City, got.Country)
	}
	if got.Coords.Lat != 51.52 || got.Coords.Lon != -0.11 {
		t.Errorf("coords = %+v", got.Coords)
	}

	// localtime 10:00 at epoch 1736935200 (10:00 UTC) means offset 0; the
	// astronomy placeholder is 06:00/18:00 local on the same date.
	if got.TimezoneOffset != 0 {
		t.Errorf("timezone offset = %d, want 0", got.TimezoneOffset)
	}
	wantSunrise := int64(1736935200) - 10*3600 + 6*3600
	if got.Sunrise != wantSunrise {
		t.Errorf("sunrise = %d, want %d", got.Sunrise, wantSunrise)
	}
	if got.Sunset != wantSunrise+12*3600 {
		t.Errorf("sunset = %d, want %d", got.Sunset, wantSunrise+12*3600)
	}
	if got.ObservedAt != 1736935200 {
		t.Errorf("observedAt = %d", got.ObservedAt)
	}
}

// Transforming the same payload twice yields identical canonical records.
func TestWeatherAPINormalizationIdempotent(t *testing.T) {
	p, _ := newTestWeatherAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(weatherAPICurrentBody))
	})

	first, derr := p.FetchByCity(context.Background(), "London")
	if derr != nil {
		t.Fatalf("unexpected error: %+v", derr)
	}
	second, derr := p.FetchByCity(context.Background(), "London")
	if derr != nil {
		t.Fatalf("unexpected error: %+v", derr)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalization not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestWeatherAPIStructured400(t *testing.T) {
	p, _ := newTestWeatherAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
	})

	_, derr := p.FetchByCity(context.Background(), "Unknownplace123")
	if derr == nil {
		t.Fatal("expected an error")
	}
	if derr.Message != "No matching location found." {
		t.Errorf("message = %q, want upstream text verbatim", derr.Message)
	}
}

func TestWeatherAPIStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   weather.ErrorKind
	}{
		{http.StatusUnauthorized, weather.KindInvalidAPIKey},
		{http.StatusForbidden, weather.KindInvalidAPIKey},
		{http.StatusTooManyRequests, weather.KindRateLimited},
	}

	for _, tt := range tests {
		p, _ := newTestWeatherAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{}`))
		})
		_, derr := p.FetchByCity(context.Background(), "London")
		if derr == nil || derr.Kind != tt.want {
			t.Errorf("status %d: got %+v, want kind %q", tt.status, derr, tt.want)
		}
	}
}

func TestWeatherAPINoResponse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := srv.Client()
	p := NewWeatherAPIProvider(client, "test-key")
	p.baseURL = srv.URL
	srv.Close()

	_, derr := p.FetchByCity(context.Background(), "London")
	if derr == nil || derr.Kind != weather.KindNetworkUnavailable {
		t.Errorf("got %+v, want network_unavailable", derr)
	}
}

const weatherAPIForecastBody = `{
	"location": {"name": "Paris", "country": "France", "lat": 48.87, "lon": 2.33, "localtime": "2025-01-15 11:00", "localtime_epoch": 1736938800},
	"current": {
		"temp_c": 5.4, "feelslike_c": 3.1, "humidity": 71, "wind_kph": 18.0,
		"condition": {"text": "Overcast", "icon": "//icon"},
		"air_quality": {"pm2_5": 12.1, "pm10": 20.5, "co": 300.2, "no2": 18.9, "so2": 4.1, "o3": 51.0, "us-epa-index": 2, "gb-defra-index": 3}
	},
	"forecast": {"forecastday": [{
		"date": "2025-01-15",
		"date_epoch": 1736899200,
		"day": {
			"maxtemp_c": 7.6, "mintemp_c": 1.4, "avgtemp_c": 4.5,
			"maxwind_kph": 36.0, "avghumidity": 68.0,
			"daily_chance_of_rain": 80, "daily_chance_of_snow": 0,
			"condition": {"text": "Patchy rain possible", "icon": "//day-icon"}
		},
		"astro": {"sunrise": "08:40 AM", "sunset": "05:20 PM", "moonrise": "06:10 PM", "moonset": "09:05 AM", "moon_phase": "Waning Gibbous"},
		"hour": [{
			"time": "2025-01-15 00:00", "time_epoch": 1736899200,
			"temp_c": 2.4, "wind_kph": 7.2, "humidity": 75.0,
			"chance_of_rain": 20, "chance_of_snow": 0,
			"condition": {"text": "Clear", "icon": "//night-icon"}
		}]
	}]},
	"alerts": {"alert": [{
		"headline": "Flood Warning",
		"severity": "Moderate",
		"urgency": "Expected",
		"areas": "Ile-de-France",
		"event": "Flood",
		"effective": "2025-01-15T06:00:00+01:00",
		"expires": "2025-01-16T06:00:00+01:00",
		"desc": "River levels rising.",
		"instruction": "Avoid low-lying areas."
	}]}
}`

func TestWeatherAPIForecast(t *testing.T) {
	p, _ := newTestWeatherAPI(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("days") != "5" || q.Get("aqi") != "yes" || q.Get("alerts") != "yes" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(weatherAPIForecastBody))
	})

	fc, derr := p.ForecastByCity(context.Background(), "Paris", 5)
	if derr != nil {
		t.Fatalf("unexpected error: %+v", derr)
	}

	if len(fc.Days) != 1 {
		t.Fatalf("days = %d, want 1", len(fc.Days))
	}
	day := fc.Days[0]
	if day.MaxTemp != 8 || day.MinTemp != 1 || day.AvgTemp != 5 {
		t.Errorf("temps = %d/%d/%d", day.MaxTemp, day.MinTemp, day.AvgTemp)
	}
	if day.MaxWindMS != 10.0 {
		t.Errorf("maxwind = %v m/s, want 10.0", day.MaxWindMS)
	}
	if day.ChanceOfRain != 80 {
		t.Errorf("chanceOfRain = %d", day.ChanceOfRain)
	}
	if day.Astro.Sunrise != "08:40 AM" {
		t.Errorf("astro sunrise = %q", day.Astro.Sunrise)
	}
	if len(day.Hours) != 1 || day.Hours[0].WindSpeedMS != 2.0 {
		t.Errorf("hours = %+v", day.Hours)
	}

	if fc.AirQuality == nil || fc.AirQuality.USEPAIndex != 2 || fc.AirQuality.PM25 != 12.1 {
		t.Errorf("airQuality = %+v", fc.AirQuality)
	}
	if len(fc.Alerts) != 1 || fc.Alerts[0].Headline != "Flood Warning" {
		t.Errorf("alerts = %+v", fc.Alerts)
	}
	if fc.Current.Temperature != 5 || fc.Current.WindSpeedMS != 5.0 {
		t.Errorf("current = %+v", fc.Current)
	}
}

func TestWeatherAPIForecastOptionalAbsent(t *testing.T) {
	p, _ := newTestWeatherAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"location": {"name": "Paris", "country": "France", "lat": 48.87, "lon": 2.33, "localtime": "2025-01-15 11:00", "localtime_epoch": 1736938800},
			"current": {"temp_c": 5.0, "feelslike_c": 4.0, "humidity": 70, "wind_kph": 10.0, "condition": {"text": "Sunny"}},
			"forecast": {"forecastday": []}
		}`))
	})

	fc, derr := p.ForecastByCity(context.Background(), "Paris", 5)
	if derr != nil {
		t.Fatalf("unexpected error: %+v", derr)
	}
	if fc.AirQuality != nil {
		t.Error("missing air quality must yield nil, not a zero record")
	}
	if fc.Alerts == nil || len(fc.Alerts) != 0 {
		t.Errorf("missing alerts must yield an empty slice, got %+v", fc.Alerts)
	}
}
