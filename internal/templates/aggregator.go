// Package templates aggregates templates across repositories and caches the
// combined catalog.
package templates

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/stacklok/template-registry-server/internal/manifest"
	"github.com/stacklok/template-registry-server/internal/otel"
	"github.com/stacklok/template-registry-server/internal/repository"
	"github.com/stacklok/template-registry-server/internal/result"
	"github.com/stacklok/template-registry-server/internal/styles"
	"github.com/stacklok/template-registry-server/internal/telemetry"
)

//go:generate mockgen -destination=mocks/mock_source.go -package=mocks -source=aggregator.go RepositorySource

// DefaultMaxConcurrency bounds the manifest fetches in flight
const DefaultMaxConcurrency = 8

// Template is a template as exposed by the registry
type Template = manifest.Template

// RepositorySource supplies the repositories GetAllTemplates aggregates
type RepositorySource interface {
	Enabled(ctx context.Context) ([]repository.Repository, error)
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithMaxConcurrency bounds parallel manifest fetches; n <= 0 removes the bound
func WithMaxConcurrency(n int) Option {
	return func(a *Aggregator) {
		a.maxConcurrency = n
	}
}

// WithTracer sets the tracer for aggregation spans
func WithTracer(tracer trace.Tracer) Option {
	return func(a *Aggregator) {
		a.tracer = tracer
	}
}

// WithMetrics sets the metrics recorder for catalog size
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(a *Aggregator) {
		a.metrics = metrics
	}
}

// Aggregator fetches templates from repositories and caches the templates
// of the enabled ones until Invalidate is called.
type Aggregator struct {
	fetcher        manifest.Fetcher
	source         RepositorySource
	maxConcurrency int
	tracer         trace.Tracer
	metrics        *telemetry.Metrics

	mu           sync.RWMutex
	cache        []Template
	needsRefresh bool
	generation   uint64
	sf           singleflight.Group
}

var _ styles.TemplateSource = (*Aggregator)(nil)

// NewAggregator creates an Aggregator with an empty, stale cache
func NewAggregator(fetcher manifest.Fetcher, source RepositorySource, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:        fetcher,
		source:         source,
		maxConcurrency: DefaultMaxConcurrency,
		needsRefresh:   true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MaxConcurrency returns the fetch bound in use
func (a *Aggregator) MaxConcurrency() int {
	return a.maxConcurrency
}

// GetTemplatesFromRepo fetches the manifest of repo and flattens it into
// templates tagged with their style and the repository they came from.
func (a *Aggregator) GetTemplatesFromRepo(ctx context.Context, repo repository.Repository) ([]Template, error) {
	if repo.URL == "" {
		return nil, ErrMissingURL
	}

	m, err := a.fetcher.Fetch(ctx, repo.URL)
	if err != nil {
		return nil, err
	}
	return m.Templates(repo.URL, repo.Description), nil
}

// GetTemplatesFromRepos fetches every repository in parallel and concatenates
// their templates in repository order. A repository that fails contributes
// nothing. A nil list is an error; an empty one yields no templates.
func (a *Aggregator) GetTemplatesFromRepos(ctx context.Context, repos []repository.Repository) ([]Template, error) {
	if repos == nil {
		return nil, ErrMissingRepositoryList
	}

	ctx, span := otel.StartSpan(ctx, a.tracer, "templates.GetTemplatesFromRepos",
		trace.WithAttributes(otel.AttrRepositoryCount.Int(len(repos))),
	)
	defer span.End()

	results := result.Map(ctx, repos, a.maxConcurrency, a.GetTemplatesFromRepo)

	out := make([]Template, 0)
	for i, r := range results {
		if !r.OK() {
			slog.WarnContext(ctx, "Skipping template repository", "url", repos[i].URL, "error", r.Err)
			continue
		}
		out = append(out, r.Value...)
	}

	span.SetAttributes(otel.AttrTemplateCount.Int(len(out)))
	return out, nil
}

// GetAllTemplates returns the templates of every enabled repository. The
// result is cached; concurrent refreshes of the same cache generation share a
// single aggregation, so a caller arriving after Invalidate never joins a
// refresh that started before it.
func (a *Aggregator) GetAllTemplates(ctx context.Context) ([]Template, error) {
	ctx, span := otel.StartSpan(ctx, a.tracer, "templates.GetAllTemplates")
	defer span.End()

	a.mu.RLock()
	if !a.needsRefresh {
		out := slices.Clone(a.cache)
		a.mu.RUnlock()
		span.SetAttributes(otel.AttrCacheHit.Bool(true))
		return out, nil
	}
	gen := a.generation
	a.mu.RUnlock()
	span.SetAttributes(otel.AttrCacheHit.Bool(false))

	v, err, _ := a.sf.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		refreshCtx, cancel := detachCancel(ctx)
		defer cancel()
		return a.refresh(refreshCtx, gen)
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return slices.Clone(v.([]Template)), nil
}

// GetAllTemplateStyles returns the project styles of GetAllTemplates
func (a *Aggregator) GetAllTemplateStyles(ctx context.Context) ([]string, error) {
	all, err := a.GetAllTemplates(ctx)
	if err != nil {
		return nil, err
	}
	return styles.GetTemplateStyles(all), nil
}

// Invalidate marks the cache stale
func (a *Aggregator) Invalidate() {
	a.mu.Lock()
	a.needsRefresh = true
	a.generation++
	a.mu.Unlock()
}

func (a *Aggregator) refresh(ctx context.Context, gen uint64) ([]Template, error) {
	repos, err := a.source.Enabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled repositories: %w", err)
	}

	all, err := a.GetTemplatesFromRepos(ctx, repos)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	// an Invalidate during the refresh keeps the cache stale
	if a.generation == gen {
		a.cache = all
		a.needsRefresh = false
	}
	a.mu.Unlock()

	a.metrics.RecordTemplates(ctx, len(all))
	slog.DebugContext(ctx, "Template cache refreshed", "repositories", len(repos), "templates", len(all))
	return all, nil
}

// detachCancel keeps a shared refresh alive when the caller that started it
// goes away, while still honoring that caller's deadline.
func detachCancel(parent context.Context) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(parent)
	if dl, ok := parent.Deadline(); ok {
		return context.WithDeadline(ctx, dl)
	}
	return context.WithCancel(ctx)
}
