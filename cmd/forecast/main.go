// Command forecast prints the weather for a location in the terminal.
//
// Without -q or -here it starts from the default coordinates and falls back to
// the device position given by -device-lat/-device-lon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/cor0nius/skycast/internal/locate"
	"github.com/cor0nius/skycast/internal/weather"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

type options struct {
	query      string
	here       bool
	deviceLat  string
	deviceLon  string
	proxyURL   string
	apiKey     string
	baseURL    string
	timeout    time.Duration
	fahrenheit bool
	debug      bool
}

func parseFlags(args []string, getenv func(string) string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("forecast", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.query, "q", "", "city name or postal code to look up")
	fs.BoolVar(&opts.here, "here", false, "use the device position")
	fs.StringVar(&opts.deviceLat, "device-lat", "", "device latitude")
	fs.StringVar(&opts.deviceLon, "device-lon", "", "device longitude")
	fs.StringVar(&opts.proxyURL, "proxy", getenv("WEATHER_PROXY_URL"), "proxy endpoint URL; the API key is not needed when set")
	fs.StringVar(&opts.apiKey, "key", getenv("WEATHER_API_KEY"), "provider API key")
	fs.StringVar(&opts.baseURL, "base-url", getenv("WEATHER_API_URL"), "provider base URL")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	fs.BoolVar(&opts.fahrenheit, "f", false, "show temperatures in Fahrenheit")
	fs.BoolVar(&opts.debug, "debug", false, "log requests to stderr")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.query != "" && opts.here {
		return opts, errors.New("-q and -here are mutually exclusive")
	}
	return opts, nil
}

func envFloat(getenv func(string) string, key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

// devicePosition builds the geolocator from the -device-* flags. Missing flags
// mean the device cannot report a position.
func devicePosition(opts options) (locate.Geolocator, error) {
	if opts.deviceLat == "" && opts.deviceLon == "" {
		return locate.StaticGeolocator{}, nil
	}
	lat, err := strconv.ParseFloat(opts.deviceLat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid -device-lat: %w", err)
	}
	lon, err := strconv.ParseFloat(opts.deviceLon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid -device-lon: %w", err)
	}
	return locate.StaticGeolocator{Position: &weather.Coordinates{Lat: lat, Lon: lon}}, nil
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, getenv, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.debug {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	cfg := weather.Config{
		APIKeyOrProxyURL: opts.apiKey,
		Mode:             weather.ModeDirect,
		DefaultLocation: weather.Coordinates{
			Lat: envFloat(getenv, "DEFAULT_LATITUDE", 40.7128),
			Lon: envFloat(getenv, "DEFAULT_LONGITUDE", -74.0060),
		},
		BaseURL: opts.baseURL,
		Timeout: opts.timeout,
	}
	if opts.proxyURL != "" {
		cfg.APIKeyOrProxyURL = opts.proxyURL
		cfg.Mode = weather.ModeProxy
	}

	client, err := weather.New(cfg, weather.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(stderr, "error: set WEATHER_API_KEY, -key or -proxy")
		return 2
	}

	geo, err := devicePosition(opts)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	flow := locate.New(client, geo, client.DefaultLocation(), locate.WithLogger(logger))

	switch {
	case opts.query != "":
		err = flow.SubmitText(ctx, opts.query)
	case opts.here:
		err = flow.UseCurrentLocation(ctx)
	default:
		err = flow.Activate(ctx)
	}
	if err != nil {
		if errors.Is(err, weather.ErrEmptyQuery) {
			fmt.Fprintln(stderr, "error: location must not be empty")
			return 2
		}
		msg := flow.Snapshot().Message()
		if msg == "" {
			msg = err.Error()
		}
		fmt.Fprintln(stderr, "error:", msg)
		return 1
	}

	unit := celsius
	if opts.fahrenheit {
		unit = fahrenheit
	}
	if err := render(stdout, flow.Snapshot().Result, unit); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}
