// Package locate decides which location to fetch a forecast for and tracks the
// loading/result/error state shown to the user.
//
// The order is: an explicit user query on its own; otherwise the configured
// default coordinates, falling back to the device position if that fails.
package locate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/cor0nius/skycast/internal/weather"
)

// ErrSuperseded is returned when a newer submission started before this one
// finished. The result of the older run has been discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

// Fetcher is satisfied by *weather.Client.
type Fetcher interface {
	FetchForecast(ctx context.Context, q weather.Query) (*weather.ForecastResult, error)
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// State is a copy of what the presentation layer needs. Result survives an
// Error transition so the last good forecast stays on screen.
type State struct {
	Status  Status
	Loading bool
	Result  *weather.ForecastResult
	Err     error
	Attempt int
}

// Message returns the user-facing text for Err, or "" when there is none.
func (s State) Message() string {
	if s.Err == nil {
		return ""
	}
	var rerr *weather.RetrievalError
	if errors.As(s.Err, &rerr) {
		return rerr.UserMessage()
	}
	return s.Err.Error()
}

type Option func(*Flow)

// WithObserver registers fn to receive a copy of the state after every change.
// fn runs on the goroutine that caused the change.
func WithObserver(fn func(State)) Option {
	return func(f *Flow) {
		f.observer = fn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// Flow is one resolution instance. Its methods may be called from several
// goroutines; only the most recently started run may update the state.
type Flow struct {
	fetcher         Fetcher
	geo             Geolocator
	defaultLocation weather.Coordinates
	observer        func(State)
	logger          *slog.Logger

	mu         sync.Mutex
	state      State
	generation uint64
}

// New returns an idle flow. geo may be nil when the platform has no
// geolocation support.
func New(fetcher Fetcher, geo Geolocator, defaultLocation weather.Coordinates, opts ...Option) *Flow {
	if geo == nil {
		geo = StaticGeolocator{}
	}
	f := &Flow{
		fetcher:         fetcher,
		geo:             geo,
		defaultLocation: defaultLocation,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return f
}

// Snapshot returns a copy of the current state.
func (f *Flow) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Activate runs the startup sequence: default coordinates first, then the
// device position if the default attempt fails. When geolocation is not
// possible the default attempt's error is kept.
func (f *Flow) Activate(ctx context.Context) error {
	gen := f.begin()

	res, err := f.fetcher.FetchForecast(ctx, f.defaultLocation)
	if err == nil {
		return f.finish(gen, res, nil)
	}
	f.logger.Warn("default location fetch failed, trying device position", "location", f.defaultLocation.String(), "error", err)

	if !f.isCurrent(gen) {
		return ErrSuperseded
	}

	pos, geoErr := f.geo.CurrentPosition(ctx)
	if geoErr != nil {
		f.logger.Info("device position unavailable", "error", geoErr)
		return f.finish(gen, nil, err)
	}

	res, err = f.fetcher.FetchForecast(ctx, pos)
	return f.finish(gen, res, err)
}

// Retry re-runs Activate from the beginning. The attempt counter only exists
// so observers can tell retries apart; there is no limit or backoff.
func (f *Flow) Retry(ctx context.Context) error {
	f.mu.Lock()
	f.state.Attempt++
	f.mu.Unlock()
	return f.Activate(ctx)
}

// Submit fetches the forecast for an explicit user query without falling back
// to the default or device location.
func (f *Flow) Submit(ctx context.Context, q weather.Query) error {
	gen := f.begin()
	res, err := f.fetcher.FetchForecast(ctx, q)
	return f.finish(gen, res, err)
}

// SubmitText classifies free text as a postal code or city and submits it.
// Blank input is rejected without touching the state.
func (f *Flow) SubmitText(ctx context.Context, text string) error {
	q, err := weather.ParseQuery(text)
	if err != nil {
		return err
	}
	return f.Submit(ctx, q)
}

// UseCurrentLocation submits the device position. If the position cannot be
// obtained the state is left as it is and the geolocation error is returned.
func (f *Flow) UseCurrentLocation(ctx context.Context) error {
	pos, err := f.geo.CurrentPosition(ctx)
	if err != nil {
		f.logger.Info("current location request failed", "error", err)
		return fmt.Errorf("could not get current location: %w", err)
	}
	return f.Submit(ctx, pos)
}

func (f *Flow) begin() uint64 {
	f.mu.Lock()
	f.generation++
	gen := f.generation
	f.state.Status = StatusLoading
	f.state.Loading = true
	f.state.Err = nil
	snap := f.state
	f.mu.Unlock()

	f.notify(snap)
	return gen
}

func (f *Flow) isCurrent(gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return gen == f.generation
}

// finish records the outcome of run gen unless a newer run has started.
func (f *Flow) finish(gen uint64, res *weather.ForecastResult, err error) error {
	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		f.logger.Debug("discarding stale forecast result", "generation", gen)
		return ErrSuperseded
	}
	f.state.Loading = false
	if err != nil {
		f.state.Status = StatusError
		f.state.Err = err
	} else {
		f.state.Status = StatusSuccess
		f.state.Result = res
		f.state.Err = nil
	}
	snap := f.state
	f.mu.Unlock()

	f.notify(snap)
	return err
}

func (f *Flow) notify(s State) {
	if f.observer != nil {
		f.observer(s)
	}
}
