package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/genproto/googleapis/api/distribution"
	"google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/genproto/googleapis/api/monitoredres"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const metricTypePrefix = "prometheus.googleapis.com/"

func (s *scraper) fetch(ctx context.Context) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.metricsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http request failed with status code %d", resp.StatusCode)
	}

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prometheus metrics: %w", err)
	}
	return families, nil
}

// convert turns the families whose name starts with cfg.metricPrefix into
// Cloud Monitoring series. Output is sorted by metric type for stable requests.
func convert(families map[string]*dto.MetricFamily, cfg scraperConfig, now time.Time, logger *slog.Logger) []*monitoringpb.TimeSeries {
	resource := &monitoredres.MonitoredResource{
		Type: "prometheus_target",
		Labels: map[string]string{
			"project_id": cfg.projectID,
			"location":   cfg.location,
			"cluster":    "__gce__",
			"namespace":  cfg.namespace,
			"job":        cfg.namespace,
			"instance":   cfg.metricsURL,
		},
	}
	ts := timestamppb.New(now)

	names := make([]string, 0, len(families))
	for name := range families {
		if strings.HasPrefix(name, cfg.metricPrefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var out []*monitoringpb.TimeSeries
	for _, name := range names {
		mf := families[name]
		for _, m := range mf.GetMetric() {
			var point *monitoringpb.Point
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				point = doublePoint(ts, m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				point = doublePoint(ts, m.GetGauge().GetValue())
			case dto.MetricType_UNTYPED:
				point = doublePoint(ts, m.GetUntyped().GetValue())
			case dto.MetricType_HISTOGRAM:
				point = distributionPoint(ts, m.GetHistogram(), logger)
			default:
				logger.Debug("skipping metric with unhandled type", "metric", name, "type", mf.GetType().String())
				continue
			}
			if point == nil {
				continue
			}

			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			out = append(out, &monitoringpb.TimeSeries{
				Metric: &metric.Metric{
					Type:   metricTypePrefix + name,
					Labels: labels,
				},
				Resource: resource,
				Points:   []*monitoringpb.Point{point},
			})
		}
	}
	return out
}

func doublePoint(ts *timestamppb.Timestamp, value float64) *monitoringpb.Point {
	return &monitoringpb.Point{
		Interval: &monitoringpb.TimeInterval{EndTime: ts},
		Value: &monitoringpb.TypedValue{
			Value: &monitoringpb.TypedValue_DoubleValue{DoubleValue: value},
		},
	}
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// distributionPoint converts cumulative Prometheus buckets into per-bucket
// counts over explicit bounds: len(bounds)+1 counts, the last one holding
// everything above the highest finite bound. Histograms without observations
// are skipped.
func distributionPoint(ts *timestamppb.Timestamp, h *dto.Histogram, logger *slog.Logger) *monitoringpb.Point {
	if h.GetSampleCount() == 0 {
		return nil
	}

	var bounds []float64
	var counts []int64
	var last uint64
	for _, b := range h.GetBucket() {
		if math.IsInf(b.GetUpperBound(), +1) {
			continue
		}
		bounds = append(bounds, b.GetUpperBound())
		counts = append(counts, clampInt64(b.GetCumulativeCount()-last))
		last = b.GetCumulativeCount()
	}
	counts = append(counts, clampInt64(h.GetSampleCount()-last))

	if h.GetSampleCount() > math.MaxInt64 {
		logger.Warn("histogram sample count exceeds MaxInt64, capping value", "value", h.GetSampleCount())
	}

	return &monitoringpb.Point{
		Interval: &monitoringpb.TimeInterval{EndTime: ts},
		Value: &monitoringpb.TypedValue{
			Value: &monitoringpb.TypedValue_DistributionValue{
				DistributionValue: &distribution.Distribution{
					Count: clampInt64(h.GetSampleCount()),
					Mean:  h.GetSampleSum() / float64(h.GetSampleCount()),
					BucketOptions: &distribution.Distribution_BucketOptions{
						Options: &distribution.Distribution_BucketOptions_ExplicitBuckets{
							ExplicitBuckets: &distribution.Distribution_BucketOptions_Explicit{
								Bounds: bounds,
							},
						},
					},
					BucketCounts: counts,
				},
			},
		},
	}
}
