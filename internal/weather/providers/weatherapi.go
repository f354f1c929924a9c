package providers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/adegtyarev/skycast/internal/weather"
)

// WeatherAPIProvider implements both client contracts against
// WeatherAPI.com. Unknown locations come back as HTTP 400 with a structured
// error body whose message is surfaced verbatim; current conditions carry no
// astronomy, so the fixed 06:00/18:00 local placeholder is substituted.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		client:  client,
		circuit: newCircuit("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) FetchByCoords(ctx context.Context, lat, lon float64) (*weather.CurrentConditions, *weather.DomainError) {
	return p.fetchCurrent(ctx, coordsToken(lat, lon))
}

func (p *WeatherAPIProvider) FetchByCity(ctx context.Context, city string) (*weather.CurrentConditions, *weather.DomainError) {
	return p.fetchCurrent(ctx, city)
}

func (p *WeatherAPIProvider) ForecastByCoords(ctx context.Context, lat, lon float64, days int) (*weather.Forecast, *weather.DomainError) {
	return p.fetchForecast(ctx, coordsToken(lat, lon), days)
}

func (p *WeatherAPIProvider) ForecastByCity(ctx context.Context, city string, days int) (*weather.Forecast, *weather.DomainError) {
	return p.fetchForecast(ctx, city, days)
}

func coordsToken(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', 4, 64) + "," + strconv.FormatFloat(lon, 'f', 4, 64)
}

type weatherAPICondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

type weatherAPILocation struct {
	Name           string  `json:"name"`
	Country        string  `json:"country"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Localtime      string  `json:"localtime"`
	LocaltimeEpoch int64   `json:"localtime_epoch"`
}

func (p *WeatherAPIProvider) fetchCurrent(ctx context.Context, q string) (*weather.CurrentConditions, *weather.DomainError) {
	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", q)
	values.Set("aqi", "no")

	resp, err := fetchJSON(ctx, p.client, p.circuit, p.baseURL+"/current.json?"+values.Encode())
	if err != nil {
		return nil, weather.ClassifyTransport(err)
	}
	if !resp.ok() {
		return nil, weather.ClassifyStatus(resp.status, p.structuredMessage(resp))
	}

	var payload struct {
		Location weatherAPILocation `json:"location"`
		Current  struct {
			TempC      float64             `json:"temp_c"`
			FeelslikeC float64             `json:"feelslike_c"`
			Humidity   float64             `json:"humidity"`
			WindKph    float64             `json:"wind_kph"`
			Condition  weatherAPICondition `json:"condition"`
		} `json:"current"`
	}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return nil, weather.ErrUnknown()
	}

	loc := payload.Location
	cur := payload.Current

	tzOffset := wallClockOffset(loc.Localtime, loc.LocaltimeEpoch)
	sunrise, sunset := placeholderSunTimes(loc.Localtime, tzOffset)

	return &weather.CurrentConditions{
		City:           loc.Name,
		Country:        loc.Country,
		Temperature:    roundTemp(cur.TempC),
		FeelsLike:      roundTemp(cur.FeelslikeC),
		Condition:      weather.MapCondition(cur.Condition.Text),
		Description:    strings.ToLower(cur.Condition.Text),
		Humidity:       int(cur.Humidity),
		WindSpeedMS:    kphToMS(cur.WindKph),
		Sunrise:        sunrise,
		Sunset:         sunset,
		TimezoneOffset: tzOffset,
		ObservedAt:     loc.LocaltimeEpoch,
		Coords:         weather.Coordinates{Lat: loc.Lat, Lon: loc.Lon},
	}, nil
}

func (p *WeatherAPIProvider) fetchForecast(ctx context.Context, q string, days int) (*weather.Forecast, *weather.DomainError) {
	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", q)
	values.Set("days", strconv.Itoa(days))
	values.Set("aqi", "yes")
	values.Set("alerts", "yes")

	resp, err := fetchJSON(ctx, p.client, p.circuit, p.baseURL+"/forecast.json?"+values.Encode())
	if err != nil {
		return nil, weather.ClassifyTransport(err)
	}
	if !resp.ok() {
		return nil, weather.ClassifyStatus(resp.status, p.structuredMessage(resp))
	}

	var payload struct {
		Location weatherAPILocation `json:"location"`
		Current  struct {
			TempC      float64             `json:"temp_c"`
			FeelslikeC float64             `json:"feelslike_c"`
			Humidity   float64             `json:"humidity"`
			WindKph    float64             `json:"wind_kph"`
			Condition  weatherAPICondition `json:"condition"`
			AirQuality *struct {
				PM25    float64 `json:"pm2_5"`
				PM10    float64 `json:"pm10"`
				CO      float64 `json:"co"`
				NO2     float64 `json:"no2"`
				SO2     float64 `json:"so2"`
				O3      float64 `json:"o3"`
				USEPA   int     `json:"us-epa-index"`
				GBDefra int     `json:"gb-defra-index"`
			} `json:"air_quality"`
		} `json:"current"`
		Forecast struct {
			Forecastday []struct {
				Date      string `json:"date"`
				DateEpoch int64  `json:"date_epoch"`
				Day       struct {
					MaxtempC     float64             `json:"maxtemp_c"`
					MintempC     float64             `json:"mintemp_c"`
					AvgtempC     float64             `json:"avgtemp_c"`
					MaxwindKph   float64             `json:"maxwind_kph"`
					Avghumidity  float64             `json:"avghumidity"`
					ChanceOfRain int                 `json:"daily_chance_of_rain"`
					ChanceOfSnow int                 `json:"daily_chance_of_snow"`
					Condition    weatherAPICondition `json:"condition"`
				} `json:"day"`
				Astro struct {
					Sunrise   string `json:"sunrise"`
					Sunset    string `json:"sunset"`
					Moonrise  string `json:"moonrise"`
					Moonset   string `json:"moonset"`
					MoonPhase string `json:"moon_phase"`
				} `json:"astro"`
				Hour []struct {
					Time         string              `json:"time"`
					TimeEpoch    int64               `json:"time_epoch"`
					TempC        float64             `json:"temp_c"`
					WindKph      float64             `json:"wind_kph"`
					Humidity     float64             `json:"humidity"`
					ChanceOfRain int                 `json:"chance_of_rain"`
					ChanceOfSnow int                 `json:"chance_of_snow"`
					Condition    weatherAPICondition `json:"condition"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
		Alerts struct {
			Alert []struct {
				Headline    string `json:"headline"`
				Severity    string `json:"severity"`
				Urgency     string `json:"urgency"`
				Areas       string `json:"areas"`
				Category    string `json:"category"`
				Certainty   string `json:"certainty"`
				Event       string `json:"event"`
				Note        string `json:"note"`
				Effective   string `json:"effective"`
				Expires     string `json:"expires"`
				Desc        string `json:"desc"`
				Instruction string `json:"instruction"`
			} `json:"alert"`
		} `json:"alerts"`
	}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return nil, weather.ErrUnknown()
	}

	out := &weather.Forecast{
		Location: weather.ForecastLocation{
			Name:      payload.Location.Name,
			Country:   payload.Location.Country,
			Lat:       payload.Location.Lat,
			Lon:       payload.Location.Lon,
			LocalTime: payload.Location.Localtime,
		},
		Current: weather.ForecastCurrent{
			Temperature: roundTemp(payload.Current.TempC),
			Condition:   payload.Current.Condition.Text,
			Humidity:    int(payload.Current.Humidity),
			WindSpeedMS: kphToMS(payload.Current.WindKph),
			FeelsLike:   roundTemp(payload.Current.FeelslikeC),
		},
		Days:   make([]weather.ForecastDay, 0, len(payload.Forecast.Forecastday)),
		Alerts: make([]weather.Alert, 0, len(payload.Alerts.Alert)),
	}

	if aq := payload.Current.AirQuality; aq != nil {
		out.AirQuality = &weather.AirQuality{
			PM25:         aq.PM25,
			PM10:         aq.PM10,
			CO:           aq.CO,
			NO2:          aq.NO2,
			SO2:          aq.SO2,
			O3:           aq.O3,
			USEPAIndex:   aq.USEPA,
			GBDefraIndex: aq.GBDefra,
		}
	}

	for _, d := range payload.Forecast.Forecastday {
		day := weather.ForecastDay{
			Date:          d.Date,
			DateEpoch:     d.DateEpoch,
			MaxTemp:       roundTemp(d.Day.MaxtempC),
			MinTemp:       roundTemp(d.Day.MintempC),
			AvgTemp:       roundTemp(d.Day.AvgtempC),
			Condition:     d.Day.Condition.Text,
			ConditionIcon: d.Day.Condition.Icon,
			ChanceOfRain:  d.Day.ChanceOfRain,
			ChanceOfSnow:  d.Day.ChanceOfSnow,
			MaxWindMS:     kphToMS(d.Day.MaxwindKph),
			AvgHumidity:   int(d.Day.Avghumidity),
			Astro: weather.Astro{
				Sunrise:   d.Astro.Sunrise,
				Sunset:    d.Astro.Sunset,
				Moonrise:  d.Astro.Moonrise,
				Moonset:   d.Astro.Moonset,
				MoonPhase: d.Astro.MoonPhase,
			},
			Hours: make([]weather.ForecastHour, 0, len(d.Hour)),
		}
		for _, h := range d.Hour {
			day.Hours = append(day.Hours, weather.ForecastHour{
				Time:          h.Time,
				TimeEpoch:     h.TimeEpoch,
				Temperature:   roundTemp(h.TempC),
				Condition:     h.Condition.Text,
				ConditionIcon: h.Condition.Icon,
				ChanceOfRain:  h.ChanceOfRain,
				ChanceOfSnow:  h.ChanceOfSnow,
				WindSpeedMS:   kphToMS(h.WindKph),
				Humidity:      int(h.Humidity),
			})
		}
		out.Days = append(out.Days, day)
	}

	for _, a := range payload.Alerts.Alert {
		out.Alerts = append(out.Alerts, weather.Alert{
			Headline:    a.Headline,
			Severity:    a.Severity,
			Urgency:     a.Urgency,
			Areas:       a.Areas,
			Category:    a.Category,
			Certainty:   a.Certainty,
			Event:       a.Event,
			Note:        a.Note,
			Effective:   a.Effective,
			Expires:     a.Expires,
			Description: a.Desc,
			Instruction: a.Instruction,
		})
	}

	return out, nil
}

// structuredMessage extracts WeatherAPI's error.message from a 400 response.
// WeatherAPI folds unknown locations and malformed queries into 400 with a
// structured body; other statuses keep their fixed classification.
func (p *WeatherAPIProvider) structuredMessage(resp *upstreamResponse) string {
	if resp.status != http.StatusBadRequest {
		return ""
	}
	var body struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return ""
	}
	return body.Error.Message
}

const weatherAPILocaltimeLayout = "2006-01-02 15:04"

// wallClockOffset derives the location's UTC offset in seconds from the
// wall-clock localtime string and its true epoch, rounded to the nearest
// quarter hour. Returns zero when the string cannot be parsed.
func wallClockOffset(localtime string, localtimeEpoch int64) int64 {
	t, err := time.Parse(weatherAPILocaltimeLayout, localtime)
	if err != nil || localtimeEpoch == 0 {
		return 0
	}
	diff := float64(t.Unix() - localtimeEpoch)
	return int64(math.Round(diff/900)) * 900
}

// placeholderSunTimes returns 06:00 and 18:00 local on the location's
// current date as epoch seconds. WeatherAPI's current endpoint carries no
// astronomy; substituting fixed times is a known approximation, not an
// error.
func placeholderSunTimes(localtime string, tzOffset int64) (int64, int64) {
	t, err := time.Parse(weatherAPILocaltimeLayout, localtime)
	if err != nil {
		t = time.Now().UTC()
	}
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() - tzOffset
	return midnight + 6*3600, midnight + 18*3600
}
