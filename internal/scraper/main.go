// Command scraper reads the proxy's Prometheus endpoint and writes the
// skycast_* series to Google Cloud Monitoring. It runs as its own service and
// is triggered by an external scheduler hitting "/".
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

type scraperConfig struct {
	metricsURL   string
	projectID    string
	location     string
	namespace    string
	metricPrefix string
	port         string
}

func loadConfig() (scraperConfig, error) {
	_ = godotenv.Load()

	cfg := scraperConfig{
		metricsURL:   os.Getenv("METRICS_URL"),
		projectID:    os.Getenv("PROJECT_ID"),
		location:     envOr("MONITORING_LOCATION", "europe-west1"),
		namespace:    envOr("MONITORING_NAMESPACE", "skycast"),
		metricPrefix: envOr("METRIC_PREFIX", "skycast_"),
		port:         envOr("PORT", "8080"),
	}
	if cfg.metricsURL == "" {
		return cfg, fmt.Errorf("environment variable METRICS_URL must be set")
	}
	if cfg.projectID == "" {
		return cfg, fmt.Errorf("environment variable PROJECT_ID must be set")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// timeSeriesWriter is the part of the monitoring client the scraper uses.
type timeSeriesWriter interface {
	CreateTimeSeries(ctx context.Context, req *monitoringpb.CreateTimeSeriesRequest) error
}

type metricClientWriter struct{}

// CreateTimeSeries opens a client per call; scrapes are minutes apart.
func (metricClientWriter) CreateTimeSeries(ctx context.Context, req *monitoringpb.CreateTimeSeriesRequest) error {
	client, err := monitoring.NewMetricClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create monitoring client: %w", err)
	}
	defer client.Close()
	return client.CreateTimeSeries(ctx, req)
}

type scraper struct {
	cfg        scraperConfig
	httpClient *http.Client
	writer     timeSeriesWriter
	logger     *slog.Logger
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	s := &scraper{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		writer:     metricClientWriter{},
		logger:     logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/", s.handleScrape).Methods(http.MethodGet, http.MethodPost)

	server := &http.Server{
		Addr:              ":" + cfg.port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("starting server", "port", cfg.port)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

func (s *scraper) handleScrape(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("scrape request received")
	n, err := s.scrapeAndIngest(r.Context())
	if err != nil {
		s.logger.Error("error during scrape and ingest", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Info("scrape complete", "series", n)
	fmt.Fprintln(w, "Success")
}

// scrapeAndIngest returns the number of series written.
func (s *scraper) scrapeAndIngest(ctx context.Context) (int, error) {
	families, err := s.fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch metrics: %w", err)
	}

	series := convert(families, s.cfg, time.Now(), s.logger)
	if len(series) == 0 {
		s.logger.Info("no metric samples found to ingest")
		return 0, nil
	}

	req := &monitoringpb.CreateTimeSeriesRequest{
		Name:       "projects/" + s.cfg.projectID,
		TimeSeries: series,
	}
	if err := s.writer.CreateTimeSeries(ctx, req); err != nil {
		return 0, fmt.Errorf("failed to write time series data: %w", err)
	}
	return len(series), nil
}
