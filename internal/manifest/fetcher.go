package manifest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/template-registry-server/internal/httpclient"
	"github.com/stacklok/template-registry-server/internal/otel"
	"github.com/stacklok/template-registry-server/internal/telemetry"
)

//go:generate mockgen -destination=mocks/mock_fetcher.go -package=mocks -source=fetcher.go Fetcher

// Fetcher retrieves and validates the manifest published at a repository URL
type Fetcher interface {
	// Fetch downloads the manifest at rawURL. It returns ErrInvalidURL,
	// ErrUnreachableOrNonJSON or ErrMalformedManifest on failure.
	Fetch(ctx context.Context, rawURL string) (*Manifest, error)
}

// Option configures the default Fetcher
type Option func(*httpFetcher)

// WithHTTPClient sets the HTTP client used for downloads
func WithHTTPClient(client httpclient.Client) Option {
	return func(f *httpFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTracer sets the tracer used for fetch spans
func WithTracer(tracer trace.Tracer) Option {
	return func(f *httpFetcher) {
		f.tracer = tracer
	}
}

// WithMetrics sets the metrics recorder for fetch durations
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(f *httpFetcher) {
		f.metrics = metrics
	}
}

// WithBundledManifests replaces the bundled manifest table.
// Passing nil disables bundled manifests so that every URL goes to the network.
func WithBundledManifests(manifests map[string][]byte) Option {
	return func(f *httpFetcher) {
		f.bundled = manifests
	}
}

type httpFetcher struct {
	client  httpclient.Client
	bundled map[string][]byte
	tracer  trace.Tracer
	metrics *telemetry.Metrics
}

var _ Fetcher = (*httpFetcher)(nil)

// NewFetcher creates a Fetcher that serves bundled manifests from memory and
// downloads everything else over HTTP. It performs no retries.
func NewFetcher(opts ...Option) Fetcher {
	f := &httpFetcher{
		client:  httpclient.NewDefaultClient(0),
		bundled: BundledManifests(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ValidateURL checks that rawURL is an absolute http or https URL
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	return nil
}

// Fetch implements Fetcher.Fetch
func (f *httpFetcher) Fetch(ctx context.Context, rawURL string) (*Manifest, error) {
	ctx, span := otel.StartSpan(ctx, f.tracer, "manifest.Fetch",
		trace.WithAttributes(otel.AttrRepositoryURL.String(rawURL)),
	)
	defer span.End()

	start := time.Now()
	m, err := f.fetch(ctx, rawURL)
	f.metrics.RecordManifestFetch(ctx, time.Since(start), err == nil)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(otel.AttrTemplateCount.Int(m.Len()))
	return m, nil
}

func (f *httpFetcher) fetch(ctx context.Context, rawURL string) (*Manifest, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	data, ok := f.bundled[rawURL]
	if !ok {
		var err error
		data, err = f.client.Get(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("URL '%s' should return JSON: %w: %w", rawURL, ErrUnreachableOrNonJSON, err)
		}
	}

	m, err := Parse(data)
	if err != nil {
		if errors.Is(err, ErrUnreachableOrNonJSON) {
			return nil, fmt.Errorf("URL '%s' should return JSON: %w", rawURL, err)
		}
		return nil, fmt.Errorf("URL '%s' does not serve a recognized manifest: %w", rawURL, err)
	}
	return m, nil
}
