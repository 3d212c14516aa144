package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// --- Mocks ---

// mockCache is a mock for the Cache interface. Unset funcs behave like an
// empty cache.
type mockCache struct {
	getFunc   func(ctx context.Context, key string) ([]byte, error)
	setFunc   func(ctx context.Context, key string, value []byte, expiration time.Duration) error
	flushFunc func(ctx context.Context) error
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	return nil, redis.Nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, key, value, expiration)
	}
	return nil
}

func (m *mockCache) Flush(ctx context.Context) error {
	if m.flushFunc != nil {
		return m.flushFunc(ctx)
	}
	return nil
}

// errorTransport is an http.RoundTripper that always fails with err.
type errorTransport struct {
	err error
}

func (t *errorTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return nil, t.err
}

// --- Fixtures ---

const sampleForecastBody = `{"location":{"name":"London","region":"City of London, Greater London","country":"United Kingdom","lat":51.52,"lon":-0.11,"localtime":"2025-06-01 12:00"},"current":{"temp_c":18.0,"temp_f":64.4,"condition":{"text":"Partly cloudy","icon":"//cdn.weatherapi.com/weather/64x64/day/116.png","code":1003},"wind_kph":11.2,"wind_mph":6.9,"wind_dir":"WSW","pressure_mb":1016.0,"humidity":63,"feelslike_c":18.0,"feelslike_f":64.4,"uv":5.0,"is_day":1},"forecast":{"forecastday":[]}}`

// newTestConfig returns a config pointing at upstreamURL with logging discarded.
func newTestConfig(upstreamURL string) *apiConfig {
	return &apiConfig{
		weatherAPIURL: upstreamURL,
		weatherAPIKey: "test-key",
		httpClient: &http.Client{
			Timeout:   5 * time.Second,
			Transport: &metricsTransport{wrapped: http.DefaultTransport},
		},
		cacheTTL: time.Minute,
		port:     "8080",
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
