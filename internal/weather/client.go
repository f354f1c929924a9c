package weather

import "context"

// CurrentConditionsClient abstracts one upstream provider's current-weather
// endpoint. Implementations issue a single request (no internal retries) and
// return either the canonical record or a classified DomainError.
type CurrentConditionsClient interface {
	Name() string
	FetchByCoords(ctx context.Context, lat, lon float64) (*CurrentConditions, *DomainError)
	FetchByCity(ctx context.Context, city string) (*CurrentConditions, *DomainError)
}

// ForecastClient abstracts one upstream provider's multi-day forecast
// endpoint, including air quality and alerts where the provider has them.
type ForecastClient interface {
	Name() string
	ForecastByCoords(ctx context.Context, lat, lon float64, days int) (*Forecast, *DomainError)
	ForecastByCity(ctx context.Context, city string, days int) (*Forecast, *DomainError)
}
