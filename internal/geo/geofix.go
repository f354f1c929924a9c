// Package geo acquires a default coordinate pair for the session from a
// position source, with bounded timeout, result-staleness tolerance, and a
// classified failure state that a retry can overwrite.
package geo

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/adegtyarev/skycast/internal/weather"
)

// FailureReason is the closed classification of acquisition failures.
type FailureReason string

const (
	ReasonUnsupported         FailureReason = "unsupported"
	ReasonPermissionDenied    FailureReason = "permission_denied"
	ReasonPositionUnavailable FailureReason = "position_unavailable"
	ReasonTimeout             FailureReason = "timeout"
	ReasonUnknown             FailureReason = "unknown"
)

var failureMessages = map[FailureReason]string{
	ReasonUnsupported:         "Location lookup is not supported. Please search for a city manually.",
	ReasonPermissionDenied:    "Location permission denied. Please search for a city manually.",
	ReasonPositionUnavailable: "Location information is unavailable.",
	ReasonTimeout:             "Location request timed out.",
	ReasonUnknown:             "An unknown error occurred while getting your location.",
}

// Failure is a classified acquisition failure with its fixed user message.
type Failure struct {
	Reason  FailureReason `json:"reason"`
	Message string        `json:"message"`
}

func (f *Failure) Error() string {
	return f.Message
}

// NewFailure builds a Failure with the fixed message for the reason.
func NewFailure(reason FailureReason) *Failure {
	return &Failure{Reason: reason, Message: failureMessages[reason]}
}

// Accuracy is the tier of the acquired fix.
type Accuracy string

const (
	AccuracyCoarse  Accuracy = "coarse"
	AccuracyPrecise Accuracy = "precise"
)

// Fix is an acquired coordinate pair plus acquisition metadata. Never
// mutated, only replaced by a retry.
type Fix struct {
	Coords     weather.Coordinates `json:"coords"`
	AcquiredAt time.Time           `json:"acquiredAt"`
	Accuracy   Accuracy            `json:"accuracy"`
	// Place is the reverse-geocoded label for the fix when a geocoder is
	// configured; empty otherwise.
	Place string `json:"place,omitempty"`
}

// Options mirror the platform position-request contract.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxAge       time.Duration
}

// DefaultOptions are the acquisition settings used for the automatic fix at
// session start and for every retry: a 10s bound and tolerance for cached
// fixes up to 5 minutes old.
func DefaultOptions() Options {
	return Options{
		HighAccuracy: false,
		Timeout:      10 * time.Second,
		MaxAge:       5 * time.Minute,
	}
}

// Source is the platform's best-effort location primitive. Implementations
// classify their own failures by returning *Failure; any other error is
// classified as unknown (or timeout when the context deadline expired).
type Source interface {
	Position(ctx context.Context, opts Options) (weather.Coordinates, Accuracy, error)
}

// Resolver turns an acquired coordinate pair into a place label. Optional.
type Resolver interface {
	Resolve(coords weather.Coordinates) (string, error)
}

// Snapshot is the acquisition state exposed to consumers.
type Snapshot struct {
	Fix     *Fix     `json:"fix"`
	Loading bool     `json:"loading"`
	Failure *Failure `json:"failure"`
}

// Provider wraps a Source with the acquire/retry state machine. A failure
// does not block manual city search elsewhere; it only records why no
// default coordinates are available.
type Provider struct {
	mu       sync.Mutex
	source   Source
	resolver Resolver
	opts     Options

	fix     *Fix
	failure *Failure
	loading bool
}

// NewProvider builds a Provider. source may be nil, in which case every
// acquisition fails as unsupported. resolver may be nil to skip place
// resolution.
func NewProvider(source Source, resolver Resolver, opts Options) *Provider {
	return &Provider{source: source, resolver: resolver, opts: opts}
}

// Acquire performs the acquisition and records either a Fix or a classified
// Failure. Called once automatically at session start.
func (p *Provider) Acquire(ctx context.Context) (*Fix, *Failure) {
	return p.acquire(ctx)
}

// Retry re-issues the same acquisition with unchanged timeout and accuracy
// settings, clearing the prior failure state first. A new success overwrites
// the previous failure; a new failure overwrites the previous one.
func (p *Provider) Retry(ctx context.Context) (*Fix, *Failure) {
	p.mu.Lock()
	p.failure = nil
	p.mu.Unlock()
	return p.acquire(ctx)
}

// Snapshot returns the current acquisition state.
func (p *Provider) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{Fix: p.fix, Loading: p.loading, Failure: p.failure}
}

func (p *Provider) acquire(ctx context.Context) (*Fix, *Failure) {
	p.mu.Lock()
	if p.source == nil {
		f := NewFailure(ReasonUnsupported)
		p.failure = f
		p.loading = false
		p.mu.Unlock()
		return nil, f
	}
	p.loading = true
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	coords, acc, err := p.source.Position(ctx, p.opts)

	if err != nil {
		f := classify(err)
		p.mu.Lock()
		p.loading = false
		p.failure = f
		p.mu.Unlock()
		return nil, f
	}

	// Reverse geocoding is a second outbound call; it runs outside the lock
	// so Snapshot and a concurrent Retry are not held up by it.
	fix := &Fix{Coords: coords, AcquiredAt: time.Now().UTC(), Accuracy: acc}
	if p.resolver != nil {
		place, rerr := p.resolver.Resolve(coords)
		if rerr != nil {
			log.Printf("geo: reverse geocode failed: %v", rerr)
		} else {
			fix.Place = place
		}
	}

	p.mu.Lock()
	p.loading = false
	p.fix = fix
	p.failure = nil
	p.mu.Unlock()
	return fix, nil
}

func classify(err error) *Failure {
	var f *Failure
	switch {
	case errors.As(err, &f):
		return f
	case errors.Is(err, context.DeadlineExceeded):
		return NewFailure(ReasonTimeout)
	default:
		return NewFailure(ReasonUnknown)
	}
}
