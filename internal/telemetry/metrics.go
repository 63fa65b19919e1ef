package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of registry metrics
const MeterName = "github.com/stacklok/template-registry-server/templates"

// Metrics holds the template registry instruments.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	repositories  metric.Int64Gauge
	templates     metric.Int64Gauge
	fetchDuration metric.Float64Histogram
}

// NewMetrics creates the registry instruments. If provider is nil it returns nil.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(MeterName)

	repositories, err := meter.Int64Gauge(
		"template_registry_repositories",
		metric.WithDescription("Number of template repositories by enabled state"),
		metric.WithUnit("{repository}"),
	)
	if err != nil {
		return nil, err
	}

	templates, err := meter.Int64Gauge(
		"template_registry_templates",
		metric.WithDescription("Number of templates in the aggregated catalog"),
		metric.WithUnit("{template}"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"template_registry_manifest_fetch_duration_seconds",
		metric.WithDescription("Duration of manifest fetches in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		repositories:  repositories,
		templates:     templates,
		fetchDuration: fetchDuration,
	}, nil
}

// RecordRepositories records the number of enabled and disabled repositories
func (m *Metrics) RecordRepositories(ctx context.Context, enabled, disabled int) {
	if m == nil {
		return
	}
	m.repositories.Record(ctx, int64(enabled), metric.WithAttributes(attribute.Bool("enabled", true)))
	m.repositories.Record(ctx, int64(disabled), metric.WithAttributes(attribute.Bool("enabled", false)))
}

// RecordTemplates records the size of the aggregated template catalog
func (m *Metrics) RecordTemplates(ctx context.Context, count int) {
	if m == nil {
		return
	}
	m.templates.Record(ctx, int64(count))
}

// RecordManifestFetch records the duration of one manifest fetch
func (m *Metrics) RecordManifestFetch(ctx context.Context, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	m.fetchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.Bool("success", success)))
}
