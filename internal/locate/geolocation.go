package locate

import (
	"context"
	"errors"
	"fmt"

	"github.com/cor0nius/skycast/internal/weather"
)

var (
	// ErrGeolocationUnavailable means the device cannot report a position.
	ErrGeolocationUnavailable = errors.New("geolocation is not available")
	// ErrGeolocationDenied means the user refused to share a position.
	ErrGeolocationDenied = errors.New("geolocation permission denied")
)

// Geolocator asks the device for its current position once per call.
type Geolocator interface {
	CurrentPosition(ctx context.Context) (weather.Coordinates, error)
}

// StaticGeolocator reports a fixed position, or Err when set. A zero value
// behaves like a device without location support.
type StaticGeolocator struct {
	Position *weather.Coordinates
	Err      error
}

func (g StaticGeolocator) CurrentPosition(ctx context.Context) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, err
	}
	if g.Err != nil {
		return weather.Coordinates{}, g.Err
	}
	if g.Position == nil {
		return weather.Coordinates{}, ErrGeolocationUnavailable
	}
	if err := g.Position.Validate(); err != nil {
		return weather.Coordinates{}, fmt.Errorf("invalid device position: %w", err)
	}
	return *g.Position, nil
}
