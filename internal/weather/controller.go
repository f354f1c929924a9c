package weather

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adegtyarev/skycast/internal/scheduler"
)

// Snapshot is the controller state exposed to the presentation layer:
// current data (nullable), a loading flag, and the last error (nullable).
type Snapshot[T any] struct {
	Data    *T           `json:"data"`
	Loading bool         `json:"loading"`
	Err     *DomainError `json:"error"`
}

type fetchFunc[T any] func(ctx context.Context, q LocationQuery) (*T, *DomainError)

// Controller orchestrates fetches against one provider client, tracks
// loading/error/data state, remembers the last LocationQuery, and re-issues
// it on a timer once data is present.
//
// Every fetch attempt is tagged with a fresh uuid token; a completing fetch
// commits its result only if its token is still current and the controller
// has not been closed, so a late response can never overwrite the state of a
// newer request or of a torn-down controller. The canonical record is
// swapped whole, never patched.
type Controller[T any] struct {
	mu        sync.Mutex
	fetch     fetchFunc[T]
	refresher *scheduler.Refresher

	data    *T
	err     *DomainError
	loading bool
	memory  *LocationQuery
	attempt uuid.UUID
	closed  bool
}

// NewController builds a controller around an arbitrary fetch function.
// The refresh interval applies once data first becomes present.
func NewController[T any](fetch fetchFunc[T], interval time.Duration) *Controller[T] {
	return &Controller[T]{
		fetch:     fetch,
		refresher: scheduler.New(interval),
	}
}

// NewWeatherController builds the current-conditions controller.
func NewWeatherController(client CurrentConditionsClient, interval time.Duration) *Controller[CurrentConditions] {
	return NewController(func(ctx context.Context, q LocationQuery) (*CurrentConditions, *DomainError) {
		if q.Kind == QueryCity {
			return client.FetchByCity(ctx, q.Name)
		}
		return client.FetchByCoords(ctx, q.Lat, q.Lon)
	}, interval)
}

// NewForecastController builds the forecast controller. days is the number
// of forecast days requested on every fetch.
func NewForecastController(client ForecastClient, days int, interval time.Duration) *Controller[Forecast] {
	return NewController(func(ctx context.Context, q LocationQuery) (*Forecast, *DomainError) {
		if q.Kind == QueryCity {
			return client.ForecastByCity(ctx, q.Name, days)
		}
		return client.ForecastByCoords(ctx, q.Lat, q.Lon, days)
	}, interval)
}

// FetchByCity fetches for a free-text city name. An empty or whitespace-only
// name records a missing_input error without touching the upstream, the
// current data, or the fetch memory.
func (c *Controller[T]) FetchByCity(ctx context.Context, city string) {
	if strings.TrimSpace(city) == "" {
		c.mu.Lock()
		if !c.closed {
			c.err = ErrMissingInput()
		}
		c.mu.Unlock()
		return
	}
	c.do(ctx, CityQuery(city))
}

// FetchByCoords fetches for a coordinate pair.
func (c *Controller[T]) FetchByCoords(ctx context.Context, lat, lon float64) {
	c.do(ctx, CoordsQuery(lat, lon))
}

// Refresh re-issues the last remembered LocationQuery. A no-op when nothing
// has been remembered yet.
func (c *Controller[T]) Refresh(ctx context.Context) {
	c.mu.Lock()
	if c.memory == nil || c.closed {
		c.mu.Unlock()
		return
	}
	q := *c.memory
	c.mu.Unlock()

	c.do(ctx, q)
}

// Clear drops data, error, and fetch memory, and disarms the refresh timer.
// Any in-flight fetch result is discarded when it lands.
func (c *Controller[T]) Clear() {
	c.mu.Lock()
	c.data = nil
	c.err = nil
	c.loading = false
	c.memory = nil
	c.attempt = uuid.New()
	c.mu.Unlock()

	c.refresher.Disarm()
}

// Close tears the controller down: the refresh timer is disarmed and any
// late fetch result is ignored. In-flight HTTP requests are not cancelled.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.refresher.Disarm()
}

// Snapshot returns the current state for consumers.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[T]{Data: c.data, Loading: c.loading, Err: c.err}
}

func (c *Controller[T]) do(ctx context.Context, q LocationQuery) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	token := uuid.New()
	c.attempt = token
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	data, derr := c.fetch(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.attempt != token {
		// A newer request owns the state, or the controller was torn down.
		return
	}
	c.loading = false
	if derr != nil {
		// Memory is left untouched so a manual Refresh retries the same
		// target. Data is discarded rather than kept stale, and with no
		// data present the timer goes back to its unarmed state until the
		// next successful fetch.
		c.err = derr
		c.data = nil
		c.refresher.Disarm()
		return
	}
	c.data = data
	c.err = nil
	c.memory = &q
	c.refresher.Arm(func() { c.Refresh(context.Background()) })
}
