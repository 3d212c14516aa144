package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/cor0nius/skycast/internal/weather"
)

// maxUpstreamBody caps how much of a provider response is buffered.
const maxUpstreamBody = 4 << 20

// upstreamResponse is a provider reply kept byte-for-byte for relaying.
type upstreamResponse struct {
	status int
	body   []byte
	cached bool
}

func (u upstreamResponse) ok() bool {
	return u.status >= 200 && u.status <= 299
}

// forwardForecast performs one forecast request for location using the
// server-held API key. Transport failures are returned as errors; provider
// rejections are returned as a non-2xx upstreamResponse.
func (cfg *apiConfig) forwardForecast(ctx context.Context, location string) (upstreamResponse, error) {
	target, err := weather.ForecastURL(cfg.weatherAPIURL, cfg.weatherAPIKey, location)
	if err != nil {
		return upstreamResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return upstreamResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := cfg.httpClient.Do(req)
	if err != nil {
		return upstreamResponse{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody+1))
	if err != nil {
		return upstreamResponse{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxUpstreamBody {
		return upstreamResponse{}, fmt.Errorf("response body exceeds %d bytes", maxUpstreamBody)
	}

	return upstreamResponse{status: resp.StatusCode, body: body}, nil
}

// isTimeout reports whether err came from a deadline rather than a refused
// or broken connection.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
