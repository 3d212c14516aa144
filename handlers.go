package main

import (
	"net/http"
	"strings"

	"github.com/cor0nius/skycast/internal/weather"
)

const upstreamFailureMessage = "Failed to fetch weather data"

// handlerWeather relays a forecast request to the provider so that the API key
// stays on the server. Successful bodies are passed through unchanged.

// @Summary      Get weather forecast
// @Description  Proxies a forecast request for a location to the weather provider.
// @Description  The location may be a city name, a postal code or "lat,lon".
// @Tags         weather
// @Produce      json
// @Param        q    query     string  true  "Location (e.g., 'London', '110001', '12.9,77.6')"
// @Success      200  {object}  weather.ForecastResult
// @Failure      400  {object}  ErrorResponse "Bad Request - Missing query parameter"
// @Failure      404  {object}  ErrorResponse "Provider rejected the location"
// @Failure      502  {object}  ErrorResponse "Provider unreachable"
// @Failure      504  {object}  ErrorResponse "Provider timed out"
// @Router       /api/weather [get]
func (cfg *apiConfig) handlerWeather(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	location := strings.TrimSpace(r.URL.Query().Get("q"))
	if location == "" {
		cfg.respondWithError(w, http.StatusBadRequest, "Query parameter is required", nil)
		return
	}
	logger := cfg.logger.With("request_id", requestIDFromContext(ctx))
	logger.Debug("weather request", "q", location)

	resp, err := cfg.getCachedOrForward(ctx, location)
	if err != nil {
		status := http.StatusBadGateway
		if isTimeout(err) {
			status = http.StatusGatewayTimeout
		}
		logger.Error("upstream request failed", "q", location, "status", status, "error", err)
		cfg.respondWithError(w, status, upstreamFailureMessage, nil)
		return
	}

	if !resp.ok() {
		msg, ok := weather.ErrorMessage(resp.body)
		if !ok {
			msg = upstreamFailureMessage
		}
		logger.Warn("upstream rejected request", "q", location, "status", resp.status, "message", msg)
		cfg.respondWithError(w, resp.status, msg, nil)
		return
	}

	if resp.cached {
		w.Header().Set("X-Cache", "HIT")
	} else if cfg.cache != nil {
		w.Header().Set("X-Cache", "MISS")
	}
	cfg.respondWithRawJSON(w, http.StatusOK, resp.body)
}

// @Summary      Get application configuration
// @Description  Tells client applications whether the server runs in development mode
// @Description  and which coordinates it uses when no location is given.
// @Tags         configuration
// @Produce      json
// @Success      200  {object}  ConfigResponse
// @Router       /api/config [get]
func (cfg *apiConfig) handlerConfig(w http.ResponseWriter, r *http.Request) {
	cfg.respondWithJSON(w, http.StatusOK, ConfigResponse{
		DevMode: cfg.devMode,
		DefaultLocation: DefaultLocationJSON{
			Lat: cfg.defaultLocation.Lat,
			Lon: cfg.defaultLocation.Lon,
		},
	})
}

// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /healthz [get]
func (cfg *apiConfig) handlerHealth(w http.ResponseWriter, r *http.Request) {
	cfg.respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handlerFlushCache empties the forecast cache. Registered in development mode only.

// @Summary      Flush forecast cache (development only)
// @Description  Removes every cached forecast body. Not registered outside development mode.
// @Tags         development
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      500  {object}  ErrorResponse "Internal Server Error - Failed to flush cache"
// @Router       /dev/flush-cache [post]
func (cfg *apiConfig) handlerFlushCache(w http.ResponseWriter, r *http.Request) {
	cfg.logger.Debug("cache flush request received")
	if cfg.cache == nil {
		cfg.respondWithJSON(w, http.StatusOK, StatusResponse{Status: "cache disabled"})
		return
	}
	if err := cfg.cache.Flush(r.Context()); err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Failed to flush cache", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, StatusResponse{Status: "cache flushed"})
}
