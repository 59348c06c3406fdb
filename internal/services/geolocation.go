package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"memory-map-backend/internal/geo"
)

// Geolocation errors mirror what a browser position callback can report
var (
	ErrPermissionDenied    = errors.New("location access denied")
	ErrPositionUnavailable = errors.New("location unavailable")
	ErrLocationTimeout     = errors.New("location timeout")
	ErrNotSupported        = errors.New("geolocation not supported")
)

// Position is a located coordinate with its accuracy radius
type Position struct {
	geo.Point
	AccuracyMeters float64   `json:"accuracy_meters"`
	Timestamp      time.Time `json:"timestamp"`
}

// GeolocationProvider resolves the user's position. Callers re-run clustering
// or nearby lookups once it returns.
type GeolocationProvider interface {
	Locate(ctx context.Context) (Position, error)
}

// StaticProvider always reports the same position
type StaticProvider struct {
	Position Position
}

// NewStaticProvider creates a provider fixed at lat/lng
func NewStaticProvider(lat, lng, accuracy float64) *StaticProvider {
	return &StaticProvider{Position: Position{Point: geo.Point{Lat: lat, Lng: lng}, AccuracyMeters: accuracy}}
}

// Locate returns the fixed position
func (p *StaticProvider) Locate(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrLocationTimeout, err)
	}
	pos := p.Position
	pos.Timestamp = time.Now()
	return pos, nil
}

// SimulatedProvider reports positions scattered uniformly within the accuracy
// radius around a centre, after an optional delay.
type SimulatedProvider struct {
	Center         geo.Point
	AccuracyMeters float64
	Delay          time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedProvider creates a simulated provider; seed makes the sequence reproducible
func NewSimulatedProvider(center geo.Point, accuracy float64, delay time.Duration, seed int64) *SimulatedProvider {
	return &SimulatedProvider{
		Center:         center,
		AccuracyMeters: accuracy,
		Delay:          delay,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

// Locate waits for Delay, then returns a jittered position. A cancelled
// context yields ErrLocationTimeout.
func (p *SimulatedProvider) Locate(ctx context.Context) (Position, error) {
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Position{}, fmt.Errorf("%w: %v", ErrLocationTimeout, ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrLocationTimeout, err)
	}

	p.mu.Lock()
	r := p.AccuracyMeters * math.Sqrt(p.rng.Float64())
	theta := 2 * math.Pi * p.rng.Float64()
	p.mu.Unlock()

	metersPerDegree := geo.EarthRadius * math.Pi / 180
	dLat := r * math.Cos(theta) / metersPerDegree
	dLng := r * math.Sin(theta) / (metersPerDegree * math.Cos(p.Center.Lat*math.Pi/180))

	return Position{
		Point:          geo.Point{Lat: p.Center.Lat + dLat, Lng: p.Center.Lng + dLng},
		AccuracyMeters: p.AccuracyMeters,
		Timestamp:      time.Now(),
	}, nil
}

// LocateAsync runs Locate on its own goroutine and delivers exactly one result
func LocateAsync(ctx context.Context, provider GeolocationProvider) <-chan LocateResult {
	ch := make(chan LocateResult, 1)
	go func() {
		pos, err := provider.Locate(ctx)
		ch <- LocateResult{Position: pos, Err: err}
	}()
	return ch
}

// LocateResult is a position or the error that prevented it
type LocateResult struct {
	Position Position
	Err      error
}
