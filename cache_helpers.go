package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/cor0nius/skycast/internal/weather"
	"github.com/redis/go-redis/v9"
)

const forecastKeyPrefix = "forecast:"

// forecastCacheKey derives the cache key for a raw location query.
func forecastCacheKey(location string) (string, error) {
	normalized, err := normalizeQuery(location)
	if err != nil {
		return "", err
	}
	return forecastKeyPrefix + normalized, nil
}

// getCachedOrForward serves a forecast body from the cache when possible and
// otherwise forwards the request. Only successful bodies are stored. Cache
// failures are logged and never fail the request.
func (cfg *apiConfig) getCachedOrForward(ctx context.Context, location string) (upstreamResponse, error) {
	if cfg.cache == nil {
		return cfg.forwardForecast(ctx, location)
	}

	key, err := forecastCacheKey(location)
	if err != nil {
		cfg.logger.Warn("could not derive cache key, bypassing cache", "location", location, "error", err)
		return cfg.forwardForecast(ctx, location)
	}

	cached, err := cfg.cache.Get(ctx, key)
	switch {
	case err == nil:
		proxyCacheTotal.WithLabelValues("hit").Inc()
		cfg.logger.Debug("cache hit", "key", key)
		return upstreamResponse{status: 200, body: cached, cached: true}, nil
	case errors.Is(err, redis.Nil):
		proxyCacheTotal.WithLabelValues("miss").Inc()
		cfg.logger.Debug("cache miss", "key", key)
	default:
		proxyCacheTotal.WithLabelValues("error").Inc()
		cfg.logger.Warn("cache read failed", "key", key, "error", err)
	}

	resp, err := cfg.forwardForecast(ctx, location)
	if err != nil {
		return upstreamResponse{}, err
	}

	if resp.ok() {
		if err := cfg.cache.Set(ctx, key, resp.body, cfg.cacheTTL); err != nil {
			cfg.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return resp, nil
}

// refreshCachedForecast forwards location unconditionally and stores the body
// when the provider accepts it.
func (cfg *apiConfig) refreshCachedForecast(ctx context.Context, location string) error {
	if cfg.cache == nil {
		return errors.New("cache is not configured")
	}
	key, err := forecastCacheKey(location)
	if err != nil {
		return err
	}
	resp, err := cfg.forwardForecast(ctx, location)
	if err != nil {
		return err
	}
	if !resp.ok() {
		msg, _ := weather.ErrorMessage(resp.body)
		return fmt.Errorf("provider returned status %d: %s", resp.status, msg)
	}
	return cfg.cache.Set(ctx, key, resp.body, cfg.cacheTTL)
}
