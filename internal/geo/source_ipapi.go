package geo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/adegtyarev/skycast/internal/weather"
)

// IPAPISource resolves the host's approximate position from its public IP
// via ip-api.com. Accuracy is coarse by nature; a recent result is reused
// within the caller's MaxAge window instead of hitting the endpoint again.
type IPAPISource struct {
	baseURL string
	client  *http.Client

	mu       sync.Mutex
	cached   weather.Coordinates
	cachedAt time.Time
}

// NewIPAPISource builds the source with the shared outbound HTTP client.
func NewIPAPISource(client *http.Client) *IPAPISource {
	return &IPAPISource{
		baseURL: "http://ip-api.com/json",
		client:  client,
	}
}

func (s *IPAPISource) Position(ctx context.Context, opts Options) (weather.Coordinates, Accuracy, error) {
	if opts.MaxAge > 0 {
		s.mu.Lock()
		if !s.cachedAt.IsZero() && time.Since(s.cachedAt) <= opts.MaxAge {
			c := s.cached
			s.mu.Unlock()
			return c, AccuracyCoarse, nil
		}
		s.mu.Unlock()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?fields=status,message,lat,lon", nil)
	if err != nil {
		return weather.Coordinates{}, AccuracyCoarse, NewFailure(ReasonUnknown)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return weather.Coordinates{}, AccuracyCoarse, ctx.Err()
		}
		return weather.Coordinates{}, AccuracyCoarse, NewFailure(ReasonPositionUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return weather.Coordinates{}, AccuracyCoarse, NewFailure(ReasonPermissionDenied)
	case resp.StatusCode != http.StatusOK:
		return weather.Coordinates{}, AccuracyCoarse, NewFailure(ReasonPositionUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return weather.Coordinates{}, AccuracyCoarse, NewFailure(ReasonUnknown)
	}

	var payload struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Coordinates{}, AccuracyCoarse, NewFailure(ReasonUnknown)
	}
	if payload.Status != "success" {
		return weather.Coordinates{}, AccuracyCoarse, NewFailure(ReasonPositionUnavailable)
	}

	coords := weather.Coordinates{Lat: payload.Lat, Lon: payload.Lon}

	s.mu.Lock()
	s.cached = coords
	s.cachedAt = time.Now()
	s.mu.Unlock()

	return coords, AccuracyCoarse, nil
}
