package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cor0nius/skycast/internal/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerWeather(t *testing.T) {
	testCases := []struct {
		name           string
		target         string
		upstreamStatus int
		upstreamBody   string
		wantStatus     int
		wantBody       string
		wantUpstream   bool
	}{
		{
			name:       "Missing q",
			target:     "/api/weather",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Query parameter is required"}`,
		},
		{
			name:       "Blank q",
			target:     "/api/weather?q=%20%20",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Query parameter is required"}`,
		},
		{
			name:           "Success relays body verbatim",
			target:         "/api/weather?q=London",
			upstreamStatus: http.StatusOK,
			upstreamBody:   sampleForecastBody,
			wantStatus:     http.StatusOK,
			wantBody:       sampleForecastBody,
			wantUpstream:   true,
		},
		{
			name:           "Upstream not found",
			target:         "/api/weather?q=Atlantis",
			upstreamStatus: http.StatusBadRequest,
			upstreamBody:   `{"error":{"code":1006,"message":"No matching location found."}}`,
			wantStatus:     http.StatusBadRequest,
			wantBody:       `{"error":"No matching location found."}`,
			wantUpstream:   true,
		},
		{
			name:           "Upstream auth failure",
			target:         "/api/weather?q=London",
			upstreamStatus: http.StatusForbidden,
			upstreamBody:   `{"error":{"code":2008,"message":"API key has been disabled."}}`,
			wantStatus:     http.StatusForbidden,
			wantBody:       `{"error":"API key has been disabled."}`,
			wantUpstream:   true,
		},
		{
			name:           "Upstream error unparseable",
			target:         "/api/weather?q=London",
			upstreamStatus: http.StatusInternalServerError,
			upstreamBody:   `<html>oops</html>`,
			wantStatus:     http.StatusInternalServerError,
			wantBody:       `{"error":"Failed to fetch weather data"}`,
			wantUpstream:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var hits int32
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.upstreamStatus)
				_, _ = w.Write([]byte(tc.upstreamBody))
			}))
			defer upstream.Close()

			cfg := newTestConfig(upstream.URL)
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			rr := httptest.NewRecorder()

			cfg.handlerWeather(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantBody, rr.Body.String())
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			if tc.wantUpstream {
				assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
			} else {
				assert.Zero(t, atomic.LoadInt32(&hits))
			}
		})
	}
}

func TestHandlerWeather_ForwardsQuery(t *testing.T) {
	var got *http.Request
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(sampleForecastBody))
	}))
	defer upstream.Close()

	cfg := newTestConfig(upstream.URL)
	req := httptest.NewRequest(http.MethodGet, "/api/weather?q=San%20Francisco", nil)
	cfg.handlerWeather(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "/forecast.json", got.URL.Path)
	assert.Equal(t, "test-key", got.URL.Query().Get("key"))
	assert.Equal(t, "San Francisco", got.URL.Query().Get("q"))
	assert.Equal(t, "5", got.URL.Query().Get("days"))
	assert.Equal(t, "no", got.URL.Query().Get("aqi"))
	assert.Equal(t, "no", got.URL.Query().Get("alerts"))
}

func TestHandlerWeather_UpstreamUnreachable(t *testing.T) {
	cfg := newTestConfig("http://upstream.invalid/v1")
	cfg.httpClient.Transport = &errorTransport{err: errors.New("connection refused")}

	rr := httptest.NewRecorder()
	cfg.handlerWeather(rr, httptest.NewRequest(http.MethodGet, "/api/weather?q=London", nil))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, `{"error":"Failed to fetch weather data"}`, rr.Body.String())
}

func TestHandlerWeather_UpstreamBodyTooLarge(t *testing.T) {
	testCases := []struct {
		name       string
		size       int
		wantStatus int
	}{
		{name: "At limit", size: maxUpstreamBody, wantStatus: http.StatusOK},
		{name: "One byte over limit", size: maxUpstreamBody + 1, wantStatus: http.StatusBadGateway},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(strings.Repeat(" ", tc.size)))
			}))
			defer upstream.Close()

			var sets atomic.Int32
			cfg := newTestConfig(upstream.URL)
			cfg.cache = &mockCache{setFunc: func(ctx context.Context, key string, value []byte, expiration time.Duration) error {
				sets.Add(1)
				return nil
			}}

			rr := httptest.NewRecorder()
			cfg.handlerWeather(rr, httptest.NewRequest(http.MethodGet, "/api/weather?q=London", nil))

			assert.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, tc.size, rr.Body.Len())
				assert.Equal(t, int32(1), sets.Load())
			} else {
				assert.Equal(t, `{"error":"Failed to fetch weather data"}`, rr.Body.String())
				assert.Zero(t, sets.Load())
			}
		})
	}
}

func TestHandlerWeather_UpstreamTimeout(t *testing.T) {
	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer upstream.Close()
	defer close(release)

	cfg := newTestConfig(upstream.URL)
	cfg.httpClient.Timeout = 50 * time.Millisecond

	rr := httptest.NewRecorder()
	cfg.handlerWeather(rr, httptest.NewRequest(http.MethodGet, "/api/weather?q=London", nil))

	assert.Equal(t, http.StatusGatewayTimeout, rr.Code)
	assert.Equal(t, `{"error":"Failed to fetch weather data"}`, rr.Body.String())
}

func TestHandlerWeather_CacheHeaders(t *testing.T) {
	var hits int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(sampleForecastBody))
	}))
	defer upstream.Close()

	stored := map[string][]byte{}
	cfg := newTestConfig(upstream.URL)
	cfg.cache = &mockCache{
		getFunc: func(ctx context.Context, key string) ([]byte, error) {
			if v, ok := stored[key]; ok {
				return v, nil
			}
			return (&mockCache{}).Get(ctx, key)
		},
		setFunc: func(ctx context.Context, key string, value []byte, expiration time.Duration) error {
			stored[key] = value
			return nil
		},
	}

	first := httptest.NewRecorder()
	cfg.handlerWeather(first, httptest.NewRequest(http.MethodGet, "/api/weather?q=London", nil))
	second := httptest.NewRecorder()
	cfg.handlerWeather(second, httptest.NewRequest(http.MethodGet, "/api/weather?q=%20london%20", nil))

	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, sampleForecastBody, second.Body.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHandlerConfig(t *testing.T) {
	testCases := []struct {
		name     string
		devMode  bool
		wantBody string
	}{
		{
			name:     "Dev Mode True",
			devMode:  true,
			wantBody: `{"dev_mode":true,"default_location":{"lat":40.7128,"lon":-74.006}}`,
		},
		{
			name:     "Dev Mode False",
			devMode:  false,
			wantBody: `{"dev_mode":false,"default_location":{"lat":40.7128,"lon":-74.006}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			apiCfg := newTestConfig("")
			apiCfg.devMode = tc.devMode
			apiCfg.defaultLocation = weather.Coordinates{Lat: 40.7128, Lon: -74.006}

			req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
			rr := httptest.NewRecorder()

			apiCfg.handlerConfig(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.wantBody, rr.Body.String())
		})
	}
}

func TestHandlerHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestConfig("").handlerHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"status":"ok"}`, rr.Body.String())
}

func TestHandlerFlushCache(t *testing.T) {
	testCases := []struct {
		name       string
		cache      Cache
		wantStatus int
		wantBody   string
	}{
		{
			name:       "Success",
			cache:      &mockCache{},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"cache flushed"}`,
		},
		{
			name: "Flush Error",
			cache: &mockCache{flushFunc: func(ctx context.Context) error {
				return errors.New("flush error")
			}},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to flush cache"}`,
		},
		{
			name:       "Cache Disabled",
			cache:      nil,
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"cache disabled"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newTestConfig("")
			cfg.cache = tc.cache

			rr := httptest.NewRecorder()
			cfg.handlerFlushCache(rr, httptest.NewRequest(http.MethodPost, "/dev/flush-cache", nil))

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantBody, rr.Body.String())
		})
	}
}

func TestRoutes(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleForecastBody))
	}))
	defer upstream.Close()

	testCases := []struct {
		name       string
		devMode    bool
		method     string
		target     string
		wantStatus int
		wantBody   string
	}{
		{name: "Weather GET", method: http.MethodGet, target: "/api/weather?q=London", wantStatus: http.StatusOK, wantBody: sampleForecastBody},
		{name: "Weather POST", method: http.MethodPost, target: "/api/weather?q=London", wantStatus: http.StatusMethodNotAllowed, wantBody: `{"error":"Method Not Allowed"}`},
		{name: "Weather DELETE", method: http.MethodDelete, target: "/api/weather", wantStatus: http.StatusMethodNotAllowed, wantBody: `{"error":"Method Not Allowed"}`},
		{name: "Health", method: http.MethodGet, target: "/healthz", wantStatus: http.StatusOK, wantBody: `{"status":"ok"}`},
		{name: "Unknown path", method: http.MethodGet, target: "/nope", wantStatus: http.StatusNotFound, wantBody: `{"error":"Not Found"}`},
		{name: "Flush hidden outside dev mode", method: http.MethodPost, target: "/dev/flush-cache", wantStatus: http.StatusNotFound, wantBody: `{"error":"Not Found"}`},
		{name: "Flush in dev mode", devMode: true, method: http.MethodPost, target: "/dev/flush-cache", wantStatus: http.StatusOK, wantBody: `{"status":"cache disabled"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newTestConfig(upstream.URL)
			cfg.devMode = tc.devMode
			handler := cfg.routes()

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.target, nil))

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantBody, rr.Body.String())
		})
	}
}

func TestRoutes_MetricsEndpoint(t *testing.T) {
	cfg := newTestConfig("")
	handler := cfg.routes()

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `skycast_http_requests_total{code="200",method="GET",path="/healthz"}`))
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
