package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/adegtyarev/skycast/internal/weather"
)

// OpenWeatherProvider implements both client contracts against
// OpenWeatherMap. Wind arrives natively in m/s with metric units; unknown
// locations come back as HTTP 404. The forecast endpoint is 3-hourly and is
// folded into daily buckets here; it carries no air quality or alerts, so
// those stay absent.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		client:  client,
		circuit: newCircuit("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) FetchByCoords(ctx context.Context, lat, lon float64) (*weather.CurrentConditions, *weather.DomainError) {
	return p.fetchCurrent(ctx, p.coordValues(lat, lon))
}

func (p *OpenWeatherProvider) FetchByCity(ctx context.Context, city string) (*weather.CurrentConditions, *weather.DomainError) {
	return p.fetchCurrent(ctx, p.cityValues(city))
}

func (p *OpenWeatherProvider) ForecastByCoords(ctx context.Context, lat, lon float64, days int) (*weather.Forecast, *weather.DomainError) {
	return p.fetchForecast(ctx, p.coordValues(lat, lon), days)
}

func (p *OpenWeatherProvider) ForecastByCity(ctx context.Context, city string, days int) (*weather.Forecast, *weather.DomainError) {
	return p.fetchForecast(ctx, p.cityValues(city), days)
}

func (p *OpenWeatherProvider) baseValues() url.Values {
	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	return values
}

func (p *OpenWeatherProvider) coordValues(lat, lon float64) url.Values {
	values := p.baseValues()
	values.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	return values
}

func (p *OpenWeatherProvider) cityValues(city string) url.Values {
	values := p.baseValues()
	values.Set("q", city)
	return values
}

type openWeatherEntry struct {
	Main string `json:"main"`
	Desc string `json:"description"`
	Icon string `json:"icon"`
}

func conditionText(items []openWeatherEntry) string {
	if len(items) == 0 {
		return ""
	}
	if items[0].Desc != "" {
		return items[0].Desc
	}
	return items[0].Main
}

func (p *OpenWeatherProvider) fetchCurrent(ctx context.Context, values url.Values) (*weather.CurrentConditions, *weather.DomainError) {
	resp, err := fetchJSON(ctx, p.client, p.circuit, p.baseURL+"/weather?"+values.Encode())
	if err != nil {
		return nil, weather.ClassifyTransport(err)
	}
	if !resp.ok() {
		// OpenWeather reports unknown locations as 404; no verbatim
		// passthrough of its error body.
		return nil, weather.ClassifyStatus(resp.status, "")
	}

	var payload struct {
		Name  string `json:"name"`
		Dt    int64  `json:"dt"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Sys struct {
			Country string `json:"country"`
			Sunrise int64  `json:"sunrise"`
			Sunset  int64  `json:"sunset"`
		} `json:"sys"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Timezone int64              `json:"timezone"`
		Weather  []openWeatherEntry `json:"weather"`
	}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return nil, weather.ErrUnknown()
	}

	text := conditionText(payload.Weather)

	return &weather.CurrentConditions{
		City:           payload.Name,
		Country:        payload.Sys.Country,
		Temperature:    roundTemp(payload.Main.Temp),
		FeelsLike:      roundTemp(payload.Main.FeelsLike),
		Condition:      weather.MapCondition(text),
		Description:    text,
		Humidity:       int(payload.Main.Humidity),
		WindSpeedMS:    round1(payload.Wind.Speed),
		Sunrise:        payload.Sys.Sunrise,
		Sunset:         payload.Sys.Sunset,
		TimezoneOffset: payload.Timezone,
		ObservedAt:     payload.Dt,
		Coords:         weather.Coordinates{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon},
	}, nil
}

func (p *OpenWeatherProvider) fetchForecast(ctx context.Context, values url.Values, days int) (*weather.Forecast, *weather.DomainError) {
	resp, err := fetchJSON(ctx, p.client, p.circuit, p.baseURL+"/forecast?"+values.Encode())
	if err != nil {
		return nil, weather.ClassifyTransport(err)
	}
	if !resp.ok() {
		return nil, weather.ClassifyStatus(resp.status, "")
	}

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp      float64 `json:"temp"`
				FeelsLike float64 `json:"feels_like"`
				Humidity  float64 `json:"humidity"`
			} `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
			Weather []openWeatherEntry `json:"weather"`
			Pop     float64            `json:"pop"`
			Snow    struct {
				ThreeH float64 `json:"3h"`
			} `json:"snow"`
		} `json:"list"`
		City struct {
			Name  string `json:"name"`
			Coord struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"coord"`
			Country  string `json:"country"`
			Timezone int64  `json:"timezone"`
		} `json:"city"`
	}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return nil, weather.ErrUnknown()
	}
	if len(payload.List) == 0 {
		return nil, weather.ErrUnknown()
	}

	offset := payload.City.Timezone
	local := func(dt int64) time.Time {
		return time.Unix(dt+offset, 0).UTC()
	}

	// Fold 3-hourly entries into local-date buckets.
	type bucket struct {
		hours []weather.ForecastHour
		temps []float64
		// entry closest to local noon represents the day.
		bestGap  float64
		bestText string
		bestIcon string
		maxWind  float64
		sumHum   float64
		rainPct  int
		snowPct  int
	}
	buckets := make(map[string]*bucket)
	var order []string

	for _, e := range payload.List {
		lt := local(e.Dt)
		key := lt.Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{bestGap: 24}
			buckets[key] = b
			order = append(order, key)
		}

		text := conditionText(e.Weather)
		var icon string
		if len(e.Weather) > 0 && e.Weather[0].Icon != "" {
			icon = fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", e.Weather[0].Icon)
		}

		rain := int(e.Pop * 100)
		snow := 0
		if e.Snow.ThreeH > 0 {
			snow = rain
		}

		b.hours = append(b.hours, weather.ForecastHour{
			Time:          lt.Format("2006-01-02 15:04"),
			TimeEpoch:     e.Dt,
			Temperature:   roundTemp(e.Main.Temp),
			Condition:     text,
			ConditionIcon: icon,
			ChanceOfRain:  rain,
			ChanceOfSnow:  snow,
			WindSpeedMS:   round1(e.Wind.Speed),
			Humidity:      int(e.Main.Humidity),
		})
		b.temps = append(b.temps, e.Main.Temp)
		b.sumHum += e.Main.Humidity
		if e.Wind.Speed > b.maxWind {
			b.maxWind = e.Wind.Speed
		}
		if rain > b.rainPct {
			b.rainPct = rain
		}
		if snow > b.snowPct {
			b.snowPct = snow
		}
		gap := absFloat(float64(lt.Hour()) - 12)
		if gap < b.bestGap {
			b.bestGap = gap
			b.bestText = text
			b.bestIcon = icon
		}
	}

	sort.Strings(order)
	if len(order) > days {
		order = order[:days]
	}

	out := &weather.Forecast{
		Location: weather.ForecastLocation{
			Name:    payload.City.Name,
			Country: payload.City.Country,
			Lat:     payload.City.Coord.Lat,
			Lon:     payload.City.Coord.Lon,
		},
		Days: make([]weather.ForecastDay, 0, len(order)),
		// OpenWeather's forecast endpoint has no air quality or alerts;
		// their absence is not an error.
		AirQuality: nil,
		Alerts:     []weather.Alert{},
	}

	first := payload.List[0]
	out.Current = weather.ForecastCurrent{
		Temperature: roundTemp(first.Main.Temp),
		Condition:   conditionText(first.Weather),
		Humidity:    int(first.Main.Humidity),
		WindSpeedMS: round1(first.Wind.Speed),
		FeelsLike:   roundTemp(first.Main.FeelsLike),
	}

	for _, key := range order {
		b := buckets[key]
		minT, maxT, sumT := b.temps[0], b.temps[0], 0.0
		for _, t := range b.temps {
			if t < minT {
				minT = t
			}
			if t > maxT {
				maxT = t
			}
			sumT += t
		}

		date, _ := time.Parse("2006-01-02", key)
		out.Days = append(out.Days, weather.ForecastDay{
			Date:          key,
			DateEpoch:     date.Unix() - offset,
			MaxTemp:       roundTemp(maxT),
			MinTemp:       roundTemp(minT),
			AvgTemp:       roundTemp(sumT / float64(len(b.temps))),
			Condition:     b.bestText,
			ConditionIcon: b.bestIcon,
			ChanceOfRain:  b.rainPct,
			ChanceOfSnow:  b.snowPct,
			MaxWindMS:     round1(b.maxWind),
			AvgHumidity:   int(b.sumHum / float64(len(b.hours))),
			// No per-day astronomy on this endpoint; substitute the fixed
			// placeholder rather than fail.
			Astro: weather.Astro{Sunrise: "06:00 AM", Sunset: "06:00 PM"},
			Hours: b.hours,
		})
	}

	return out, nil
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
