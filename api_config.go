package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cor0nius/skycast/internal/weather"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// devAPIKey mirrors the placeholder key accepted outside production, so the
// server can start locally without credentials.
const devAPIKey = "dummy-key"

type apiConfig struct {
	cache           Cache
	redisClient     *redis.Client
	cacheTTL        time.Duration
	warmInterval    time.Duration
	warmLocations   []string
	weatherAPIURL   string
	weatherAPIKey   string
	httpClient      *http.Client
	defaultLocation weather.Coordinates
	port            string
	devMode         bool
	logger          *slog.Logger
}

// getRequiredEnv retrieves an environment variable by key and returns an error
// if it is unset or empty.
func getRequiredEnv(key string) (string, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return "", fmt.Errorf("environment variable %s must be set", key)
	}
	return val, nil
}

// getEnv retrieves an environment variable by key, with a fallback value.
func getEnv(key, fallback string, logger *slog.Logger) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer, with a fallback value.
func getEnvAsInt(key string, fallback int, logger *slog.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok || valStr == "" {
		logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		logger.Warn("invalid integer value for environment variable, using fallback", "key", key, "value", valStr, "error", err)
		return fallback
	}
	return val
}

// getEnvAsFloat retrieves an environment variable as a float, with a fallback value.
func getEnvAsFloat(key string, fallback float64, logger *slog.Logger) float64 {
	valStr, ok := os.LookupEnv(key)
	if !ok || valStr == "" {
		logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
		return fallback
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		logger.Warn("invalid float value for environment variable, using fallback", "key", key, "value", valStr, "error", err)
		return fallback
	}
	return val
}

func newLogger(w io.Writer, devMode bool) *slog.Logger {
	if devMode {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, nil))
}

// NewAPIConfig reads the environment (and .env, if present) and wires the
// logger, outbound HTTP client and optional Redis cache. Log output goes to w.
func NewAPIConfig(w io.Writer) (*apiConfig, error) {
	// .env must be loaded before DEV_MODE is read so it can select the logger.
	dotenvErr := godotenv.Load()

	devMode, err := strconv.ParseBool(os.Getenv("DEV_MODE"))
	if err != nil {
		devMode = false
	}
	logger := newLogger(w, devMode)

	if dotenvErr != nil {
		logger.Info("no .env file found, relying on environment variables")
	}

	apiKey, err := getRequiredEnv("WEATHER_API_KEY")
	if err != nil {
		if !devMode {
			return nil, err
		}
		logger.Warn("WEATHER_API_KEY not set, using placeholder key in development mode")
		apiKey = devAPIKey
	}

	defaultLocation := weather.Coordinates{
		Lat: getEnvAsFloat("DEFAULT_LATITUDE", 40.7128, logger),
		Lon: getEnvAsFloat("DEFAULT_LONGITUDE", -74.0060, logger),
	}
	if err := defaultLocation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default location: %w", err)
	}

	timeoutSec := getEnvAsInt("UPSTREAM_TIMEOUT_SEC", 10, logger)

	cfg := apiConfig{
		cacheTTL:      time.Duration(getEnvAsInt("CACHE_TTL_SEC", 300, logger)) * time.Second,
		weatherAPIURL: getEnv("WEATHER_API_URL", weather.DefaultBaseURL, logger),
		weatherAPIKey: apiKey,
		httpClient: &http.Client{
			Timeout:   time.Duration(timeoutSec) * time.Second,
			Transport: &metricsTransport{wrapped: http.DefaultTransport},
		},
		defaultLocation: defaultLocation,
		port:            getEnv("PORT", "8080", logger),
		devMode:         devMode,
		logger:          logger,
	}

	if redisURL, ok := os.LookupEnv("REDIS_URL"); ok && redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("could not parse Redis URL: %w", err)
		}
		cfg.redisClient = redis.NewClient(opt)
		cfg.cache = NewRedisCache(cfg.redisClient)
		logger.Info("proxy response cache enabled", "ttl", cfg.cacheTTL.String())

		cfg.warmInterval = time.Duration(getEnvAsInt("CACHE_WARM_INTERVAL_SEC", 0, logger)) * time.Second
		cfg.warmLocations = warmLocations(defaultLocation, os.Getenv("CACHE_WARM_LOCATIONS"))
	} else {
		logger.Info("REDIS_URL not set, proxy response cache disabled")
	}

	return &cfg, nil
}

// warmLocations returns the default location followed by the entries of the
// comma-separated extra list, trimmed and without blanks or duplicates.
func warmLocations(defaultLocation weather.Coordinates, extra string) []string {
	locations := []string{defaultLocation.String()}
	seen := map[string]bool{locations[0]: true}
	for _, loc := range strings.Split(extra, ",") {
		loc = strings.TrimSpace(loc)
		if loc == "" || seen[loc] {
			continue
		}
		seen[loc] = true
		locations = append(locations, loc)
	}
	return locations
}
