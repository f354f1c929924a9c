package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

const maxBodyBytes = 1 << 20

var (
	errNoHTTPClient   = errors.New("http client not configured")
	errUpstreamStatus = errors.New("upstream status")
)

// upstreamResponse is what an adapter works with after the transport layer:
// a status code and the raw body, regardless of success or failure.
type upstreamResponse struct {
	status int
	body   []byte
}

func (r *upstreamResponse) ok() bool {
	return r.status >= 200 && r.status < 300
}

// newCircuit builds the per-provider circuit breaker with the shared
// settings used across adapters.
func newCircuit(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// fetchJSON performs a single GET through the circuit breaker. Adapters do
// not retry; resilience at this layer is limited to shedding load while the
// upstream is failing. Rate-limit and 5xx responses count as breaker
// failures but are still returned so the caller can classify them by status.
// A nil response with a non-nil error means no usable response arrived
// (transport failure, context expiry, or an open circuit).
func fetchJSON(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, rawURL string) (*upstreamResponse, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}

	res, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, err
		}

		ur := &upstreamResponse{status: resp.StatusCode, body: body}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return ur, fmt.Errorf("%w: %d", errUpstreamStatus, resp.StatusCode)
		}
		return ur, nil
	})

	if ur, ok := res.(*upstreamResponse); ok && ur != nil {
		return ur, nil
	}
	return nil, err
}

// roundTemp rounds a temperature to the nearest whole degree.
func roundTemp(c float64) int {
	return int(math.Round(c))
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// kphToMS converts km/h to m/s, rounded to one decimal.
func kphToMS(kph float64) float64 {
	return round1(kph / 3.6)
}
