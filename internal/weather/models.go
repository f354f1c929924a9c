package weather

// Condition is the normalized high-level weather condition every adapter
// must map its provider's free-text description into.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionSnow         Condition = "Snow"
	ConditionMist         Condition = "Mist"
)

// Coordinates is a geographic point. Ranges (lat [-90,90], lon [-180,180])
// are enforced upstream and not re-validated here.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// QueryKind discriminates the two ways a location can be requested.
type QueryKind string

const (
	QueryCoords QueryKind = "coords"
	QueryCity   QueryKind = "city"
)

// LocationQuery describes what to fetch: a coordinate pair or a free-text
// city name. A controller retains the last one it was asked for so a refresh
// can re-issue the same request.
type LocationQuery struct {
	Kind QueryKind `json:"kind"`
	Lat  float64   `json:"lat,omitempty"`
	Lon  float64   `json:"lon,omitempty"`
	Name string    `json:"name,omitempty"`
}

// CityQuery builds a city-name query.
func CityQuery(name string) LocationQuery {
	return LocationQuery{Kind: QueryCity, Name: name}
}

// CoordsQuery builds a coordinate query.
func CoordsQuery(lat, lon float64) LocationQuery {
	return LocationQuery{Kind: QueryCoords, Lat: lat, Lon: lon}
}

// CurrentConditions is the canonical current-weather record. Every provider
// adapter produces exactly this shape: temperatures are integer-rounded
// Celsius, wind is m/s to one decimal, Condition is one of the six
// enumerated values.
type CurrentConditions struct {
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Temperature int       `json:"temperature"`
	FeelsLike   int       `json:"feelsLike"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	Humidity    int       `json:"humidity"`
	WindSpeedMS float64   `json:"windSpeed"`
	Sunrise     int64     `json:"sunrise"`
	Sunset      int64     `json:"sunset"`
	// TimezoneOffset is the location's offset from UTC in seconds, zero when
	// the upstream does not report local time.
	TimezoneOffset int64       `json:"timezone"`
	ObservedAt     int64       `json:"timestamp"`
	Coords         Coordinates `json:"coords"`
}

// ForecastLocation is the location header of a forecast response.
type ForecastLocation struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	LocalTime string  `json:"localtime,omitempty"`
}

// ForecastCurrent is the abbreviated current summary bundled with a forecast.
type ForecastCurrent struct {
	Temperature int     `json:"tempC"`
	Condition   string  `json:"condition"`
	Humidity    int     `json:"humidity"`
	WindSpeedMS float64 `json:"windSpeed"`
	FeelsLike   int     `json:"feelsLikeC"`
}

// Astro holds per-day astronomy data. Providers without astronomy substitute
// the fixed 06:00/18:00 placeholder instead of failing.
type Astro struct {
	Sunrise   string `json:"sunrise"`
	Sunset    string `json:"sunset"`
	Moonrise  string `json:"moonrise,omitempty"`
	Moonset   string `json:"moonset,omitempty"`
	MoonPhase string `json:"moonPhase,omitempty"`
}

// ForecastHour is one normalized hour within a forecast day.
type ForecastHour struct {
	Time          string  `json:"time"`
	TimeEpoch     int64   `json:"timeEpoch"`
	Temperature   int     `json:"tempC"`
	Condition     string  `json:"condition"`
	ConditionIcon string  `json:"conditionIcon,omitempty"`
	ChanceOfRain  int     `json:"chanceOfRain"`
	ChanceOfSnow  int     `json:"chanceOfSnow"`
	WindSpeedMS   float64 `json:"windSpeed"`
	Humidity      int     `json:"humidity"`
}

// ForecastDay is one normalized day of forecast, hours ordered ascending.
type ForecastDay struct {
	Date          string         `json:"date"`
	DateEpoch     int64          `json:"dateEpoch"`
	MaxTemp       int            `json:"maxtempC"`
	MinTemp       int            `json:"mintempC"`
	AvgTemp       int            `json:"avgtempC"`
	Condition     string         `json:"condition"`
	ConditionIcon string         `json:"conditionIcon,omitempty"`
	ChanceOfRain  int            `json:"chanceOfRain"`
	ChanceOfSnow  int            `json:"chanceOfSnow"`
	MaxWindMS     float64        `json:"maxwind"`
	AvgHumidity   int            `json:"avghumidity"`
	Astro         Astro          `json:"astro"`
	Hours         []ForecastHour `json:"hour"`
}

// AirQuality carries pollutant concentrations (µg/m³) and the US EPA index
// (1-6). Optional: providers without air-quality data yield nil.
type AirQuality struct {
	PM25         float64 `json:"pm2_5"`
	PM10         float64 `json:"pm10"`
	CO           float64 `json:"co"`
	NO2          float64 `json:"no2"`
	SO2          float64 `json:"so2"`
	O3           float64 `json:"o3"`
	USEPAIndex   int     `json:"usEpaIndex"`
	GBDefraIndex int     `json:"gbDefraIndex,omitempty"`
}

// Alert is one weather alert as reported by the upstream. Optional: absent
// alert data yields an empty slice, not an error.
type Alert struct {
	Headline    string `json:"headline"`
	Severity    string `json:"severity"`
	Urgency     string `json:"urgency"`
	Areas       string `json:"areas"`
	Category    string `json:"category,omitempty"`
	Certainty   string `json:"certainty,omitempty"`
	Event       string `json:"event,omitempty"`
	Note        string `json:"note,omitempty"`
	Effective   string `json:"effective"`
	Expires     string `json:"expires"`
	Description string `json:"desc,omitempty"`
	Instruction string `json:"instruction,omitempty"`
}

// Forecast is the canonical multi-day forecast record. Days are ordered by
// date ascending. Replaced wholesale on each successful fetch.
type Forecast struct {
	Location   ForecastLocation `json:"location"`
	Current    ForecastCurrent  `json:"current"`
	Days       []ForecastDay    `json:"forecast"`
	AirQuality *AirQuality      `json:"airQuality"`
	Alerts     []Alert          `json:"alerts"`
}
