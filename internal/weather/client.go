package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the weatherapi.com v1 API root.
const DefaultBaseURL = "https://api.weatherapi.com/v1"

const defaultTimeout = 10 * time.Second

// Mode selects where the client sends its requests.
type Mode int

const (
	// ModeDirect calls the provider with a client-held API key.
	ModeDirect Mode = iota
	// ModeProxy calls a same-origin proxy that holds the key server-side.
	ModeProxy
)

// Config is built once at startup and handed to New.
type Config struct {
	// APIKeyOrProxyURL is the provider API key in ModeDirect and the proxy
	// endpoint URL (e.g. https://example.com/api/weather) in ModeProxy.
	APIKeyOrProxyURL string
	Mode             Mode
	// DefaultLocation is used by the resolution flow when the user has not
	// searched for anything yet.
	DefaultLocation Coordinates
	// BaseURL overrides the provider root in ModeDirect.
	BaseURL string
	// Timeout bounds each round trip. Zero means 10s.
	Timeout time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client retrieves forecasts. It holds no mutable state and is safe for
// concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New validates cfg and returns a ready client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKeyOrProxyURL == "" {
		return nil, errors.New("weather: APIKeyOrProxyURL must be set")
	}
	if cfg.Mode == ModeProxy {
		if _, err := url.Parse(cfg.APIKeyOrProxyURL); err != nil {
			return nil, fmt.Errorf("weather: invalid proxy URL: %w", err)
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c, nil
}

// DefaultLocation returns the configured fallback coordinates.
func (c *Client) DefaultLocation() Coordinates {
	return c.cfg.DefaultLocation
}

// ForecastURL builds the provider forecast URL for an already-serialized
// location string. The proxy uses it with the raw q parameter it received.
func ForecastURL(baseURL, apiKey, location string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/forecast.json")
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}
	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("q", location)
	params.Set("days", strconv.Itoa(ForecastDays))
	params.Set("aqi", "no")
	params.Set("alerts", "no")
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// locationParam returns the value of the q parameter for q. City and
// Coordinates are already safe to embed; postal codes are escaped here so
// that String keeps returning the code as typed.
func locationParam(q Query) string {
	if p, ok := q.(PostalCode); ok {
		return strings.ReplaceAll(url.QueryEscape(p.Code), "+", "%20")
	}
	return q.String()
}

// requestURL serializes q into the target URL.
func (c *Client) requestURL(q Query) string {
	if c.cfg.Mode == ModeProxy {
		sep := "?"
		if strings.Contains(c.cfg.APIKeyOrProxyURL, "?") {
			sep = "&"
		}
		return c.cfg.APIKeyOrProxyURL + sep + "q=" + locationParam(q)
	}
	return fmt.Sprintf("%s/forecast.json?key=%s&q=%s&days=%d&aqi=no&alerts=no",
		strings.TrimSuffix(c.cfg.BaseURL, "/"),
		url.QueryEscape(c.cfg.APIKeyOrProxyURL),
		locationParam(q),
		ForecastDays,
	)
}

// FetchForecast performs exactly one GET for q and returns a freshly decoded
// result. Every failure is a *RetrievalError.
func (c *Client) FetchForecast(ctx context.Context, q Query) (*ForecastResult, error) {
	if q == nil {
		return nil, &RetrievalError{Kind: KindUnknown, Message: "no location given"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(q), nil)
	if err != nil {
		return nil, &RetrievalError{Kind: KindUnknown, Message: "could not build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fetching forecast", "location", q.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("forecast request failed", "location", q.String(), "error", err)
		return nil, &RetrievalError{Kind: KindNetworkError, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetrievalError{Kind: KindNetworkError, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, ok := ErrorMessage(body)
		if !ok {
			msg = "Failed to fetch weather data"
		}
		rerr := &RetrievalError{
			Kind:       ClassifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
		c.logger.Warn("forecast request rejected", "location", q.String(), "status", resp.StatusCode, "kind", rerr.Kind.String(), "message", msg)
		return nil, rerr
	}

	var result ForecastResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &RetrievalError{Kind: KindMalformedResponse, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if err := checkForecastShape(body, &result); err != nil {
		rerr := &RetrievalError{Kind: KindMalformedResponse, StatusCode: resp.StatusCode, Err: err}
		if msg, ok := ErrorMessage(body); ok {
			rerr.Message = msg
		}
		c.logger.Warn("forecast response incomplete", "location", q.String(), "error", err)
		return nil, rerr
	}

	c.logger.Debug("forecast received", "location", result.Location.Name, "days", len(result.Forecast.Days))
	return &result, nil
}

// checkForecastShape rejects 2xx bodies that decode cleanly but carry no
// forecast, such as null, {} or a provider error object. Fewer than
// ForecastDays days is accepted.
func checkForecastShape(body []byte, result *ForecastResult) error {
	var shape struct {
		Current json.RawMessage `json:"current"`
	}
	if err := json.Unmarshal(body, &shape); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	switch {
	case result.Location.Name == "":
		return errors.New("response has no location name")
	case len(shape.Current) == 0 || string(shape.Current) == "null":
		return errors.New("response has no current conditions")
	case len(result.Forecast.Days) == 0:
		return errors.New("response has no forecast days")
	}
	return nil
}
