package main

import (
	"context"
	"sync"
	"time"
)

// Warmer periodically refreshes cached forecasts for a fixed set of locations
// so that the first request for them is served from the cache.
type Warmer struct {
	cfg       *apiConfig
	locations []string
	tickChan  <-chan time.Time
	ticker    *time.Ticker
	stop      chan struct{}
	done      chan struct{}
	warmJob   func()
}

func NewWarmer(cfg *apiConfig, interval time.Duration, locations []string) *Warmer {
	ticker := time.NewTicker(interval)
	w := &Warmer{
		cfg:       cfg,
		locations: locations,
		tickChan:  ticker.C,
		ticker:    ticker,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	w.warmJob = w.runWarmJob
	return w
}

// Start runs the job once immediately and then on every tick.
func (w *Warmer) Start() {
	go func() {
		defer close(w.done)
		w.warmJob()
		for {
			select {
			case <-w.tickChan:
				w.warmJob()
			case <-w.stop:
				if w.ticker != nil {
					w.ticker.Stop()
				}
				w.cfg.logger.Info("cache warmer stopped")
				return
			}
		}
	}()
}

// Stop signals the loop and waits for an in-flight job to finish.
func (w *Warmer) Stop() {
	close(w.stop)
	<-w.done
}

func (w *Warmer) runWarmJob() {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.httpClient.Timeout+5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for _, location := range w.locations {
		wg.Add(1)
		go func(location string) {
			defer wg.Done()
			if err := w.cfg.refreshCachedForecast(ctx, location); err != nil {
				w.cfg.logger.Warn("cache warm failed", "location", location, "error", err)
				return
			}
			w.cfg.logger.Debug("cache warmed", "location", location)
		}(location)
	}
	wg.Wait()
}
