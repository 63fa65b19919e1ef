// Package controller provides the file-backed implementation of the TemplateService interface
package controller

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/template-registry-server/internal/batch"
	"github.com/stacklok/template-registry-server/internal/manifest"
	"github.com/stacklok/template-registry-server/internal/otel"
	"github.com/stacklok/template-registry-server/internal/providers"
	"github.com/stacklok/template-registry-server/internal/repository"
	"github.com/stacklok/template-registry-server/internal/service"
	"github.com/stacklok/template-registry-server/internal/styles"
	"github.com/stacklok/template-registry-server/internal/telemetry"
	"github.com/stacklok/template-registry-server/internal/templates"
)

// controller implements the TemplateService interface
type controller struct {
	store     *repository.Store
	registry  *providers.Registry
	providers *providers.Aggregator
	templates *templates.Aggregator
	styles    *styles.Classifier
	batch     *batch.Runner

	maxConcurrency int
	tracer         trace.Tracer
	metrics        *telemetry.Metrics
}

var _ service.TemplateService = (*controller)(nil)

// Option is a functional option for configuring the controller
type Option func(*controller)

// WithRegistry sets the provider registry. By default the controller owns an empty one.
func WithRegistry(registry *providers.Registry) Option {
	return func(c *controller) {
		c.registry = registry
	}
}

// WithMaxConcurrency bounds parallel manifest fetches
func WithMaxConcurrency(n int) Option {
	return func(c *controller) {
		c.maxConcurrency = n
	}
}

// WithTracer sets the tracer used for service spans
func WithTracer(tracer trace.Tracer) Option {
	return func(c *controller) {
		c.tracer = tracer
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(c *controller) {
		c.metrics = metrics
	}
}

// New creates a TemplateService over store, fetching manifests with fetcher.
func New(store *repository.Store, fetcher manifest.Fetcher, opts ...Option) (service.TemplateService, error) {
	if store == nil {
		return nil, fmt.Errorf("repository store is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("manifest fetcher is required")
	}

	c := &controller{
		store:          store,
		maxConcurrency: templates.DefaultMaxConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = providers.NewRegistry()
	}

	c.templates = templates.NewAggregator(fetcher, refreshSource{c},
		templates.WithMaxConcurrency(c.maxConcurrency),
		templates.WithTracer(c.tracer),
		templates.WithMetrics(c.metrics),
	)
	c.styles = styles.NewClassifier(c.templates, c.templates.MaxConcurrency())
	c.providers = providers.NewAggregator(c.registry, store, c.styles, c.tracer)
	c.batch = batch.NewRunner(store)

	return c, nil
}

// refreshSource feeds the template cache. Provider repositories are folded
// into the list before the enabled repositories are read.
type refreshSource struct {
	c *controller
}

func (s refreshSource) Enabled(ctx context.Context) ([]repository.Repository, error) {
	if _, err := s.c.providers.UpdateRepoListWithReposFromProviders(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to add repositories from providers", "error", err)
	}
	return s.c.store.Enabled(ctx)
}

// CheckReadiness reports whether the repository list can be read
func (c *controller) CheckReadiness(ctx context.Context) error {
	if _, err := c.store.List(ctx); err != nil {
		return fmt.Errorf("repository list not available: %w", err)
	}
	return nil
}

// GetTemplates returns the cached templates of the enabled repositories
func (c *controller) GetTemplates(
	ctx context.Context,
	opts ...service.Option[service.GetTemplatesOptions],
) ([]templates.Template, error) {
	options := &service.GetTemplatesOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	ctx, span := otel.StartSpan(ctx, c.tracer, "service.GetTemplates")
	defer span.End()

	all, err := c.templates.GetAllTemplates(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	if options.ProjectStyle != "" {
		span.SetAttributes(otel.AttrProjectStyle.String(options.ProjectStyle))
		all = styles.FilterTemplatesByStyle(all, options.ProjectStyle)
	}
	span.SetAttributes(otel.AttrTemplateCount.Int(len(all)))
	return all, nil
}

// GetTemplateStyles returns the distinct styles of the cached templates
func (c *controller) GetTemplateStyles(ctx context.Context) ([]string, error) {
	return c.templates.GetAllTemplateStyles(ctx)
}

// GetRepositories returns every repository in insertion order
func (c *controller) GetRepositories(ctx context.Context) ([]repository.Repository, error) {
	return c.store.List(ctx)
}

// AddRepository validates url, classifies its manifest and appends it enabled
func (c *controller) AddRepository(ctx context.Context, url, description string) (*repository.Repository, error) {
	ctx, span := otel.StartSpan(ctx, c.tracer, "service.AddRepository",
		trace.WithAttributes(otel.AttrRepositoryURL.String(url)))
	defer span.End()

	repo, err := c.newRepository(ctx, url, description)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	if err := c.store.Add(ctx, repo); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	c.changed(ctx)

	slog.InfoContext(ctx, "Added template repository", "url", url, "project_styles", repo.ProjectStyles)
	return &repo, nil
}

func (c *controller) newRepository(ctx context.Context, url, description string) (repository.Repository, error) {
	if err := manifest.ValidateURL(url); err != nil {
		return repository.Repository{}, err
	}

	exists, err := c.store.Contains(ctx, url)
	if err != nil {
		return repository.Repository{}, err
	}
	if exists {
		return repository.Repository{}, fmt.Errorf("%s is %w", url, repository.ErrDuplicateRepository)
	}

	repo := repository.Repository{URL: url, Description: description}
	repo.SetEnabled(true)

	classified := c.styles.ClassifyRepositories(ctx, []repository.Repository{repo})[0]
	if !classified.OK() {
		return repository.Repository{}, fmt.Errorf("%s %w: %w", url, service.ErrManifestValidation, classified.Err)
	}
	return classified.Value, nil
}

// DeleteRepository removes the repository with url. Protected repositories
// belong to a provider and cannot be deleted.
func (c *controller) DeleteRepository(ctx context.Context, url string) error {
	ctx, span := otel.StartSpan(ctx, c.tracer, "service.DeleteRepository",
		trace.WithAttributes(otel.AttrRepositoryURL.String(url)))
	defer span.End()

	err := c.store.Update(ctx, func(tx *repository.Tx) error {
		repo := tx.Find(url)
		if repo == nil {
			return fmt.Errorf("%w with URL '%s'", repository.ErrRepositoryNotFound, url)
		}
		if repo.Protected {
			return fmt.Errorf("%s: %w", url, service.ErrProtectedRepository)
		}
		return tx.Delete(url)
	})
	if err != nil {
		otel.RecordError(span, err)
		return err
	}
	c.changed(ctx)
	return nil
}

// EnableRepository marks the repository with url as enabled
func (c *controller) EnableRepository(ctx context.Context, url string) error {
	return c.setEnabled(ctx, url, true)
}

// DisableRepository marks the repository with url as disabled
func (c *controller) DisableRepository(ctx context.Context, url string) error {
	return c.setEnabled(ctx, url, false)
}

func (c *controller) setEnabled(ctx context.Context, url string, enabled bool) error {
	if err := c.store.SetEnabled(ctx, url, enabled); err != nil {
		return err
	}
	c.changed(ctx)
	return nil
}

// BatchUpdate applies ops in order and persists the repository list once
func (c *controller) BatchUpdate(ctx context.Context, ops []batch.Operation) ([]batch.Result, error) {
	ctx, span := otel.StartSpan(ctx, c.tracer, "service.BatchUpdate")
	defer span.End()

	results, err := c.batch.BatchUpdate(ctx, ops)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	c.changed(ctx)
	return results, nil
}

// AddProvider registers provider under name
func (c *controller) AddProvider(name string, provider providers.RepositoryProvider) error {
	if err := c.registry.AddProvider(name, provider); err != nil {
		return err
	}
	c.templates.Invalidate()
	return nil
}

// UpdateRepoListWithReposFromProviders folds provider repositories into the list
func (c *controller) UpdateRepoListWithReposFromProviders(ctx context.Context) (int, error) {
	added, err := c.providers.UpdateRepoListWithReposFromProviders(ctx)
	if err != nil {
		return 0, err
	}
	if added > 0 {
		c.changed(ctx)
	}
	return added, nil
}

// changed marks the template cache stale and records the repository counts
func (c *controller) changed(ctx context.Context) {
	c.templates.Invalidate()
	if c.metrics == nil {
		return
	}

	repos, err := c.store.List(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read repository list for metrics", "error", err)
		return
	}
	enabled := 0
	for _, r := range repos {
		if r.IsEnabled() {
			enabled++
		}
	}
	c.metrics.RecordRepositories(ctx, enabled, len(repos)-enabled)
}
