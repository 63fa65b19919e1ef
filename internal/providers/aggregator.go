package providers

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/template-registry-server/internal/manifest"
	"github.com/stacklok/template-registry-server/internal/otel"
	"github.com/stacklok/template-registry-server/internal/repository"
	"github.com/stacklok/template-registry-server/internal/result"
)

// Classifier computes project styles for candidate repositories
type Classifier interface {
	ClassifyRepositories(ctx context.Context, repos []repository.Repository) []result.Result[repository.Repository]
}

// Aggregator folds provider repositories into a repository store
type Aggregator struct {
	registry   *Registry
	store      *repository.Store
	classifier Classifier
	tracer     trace.Tracer
}

// NewAggregator creates an Aggregator. tracer may be nil.
func NewAggregator(registry *Registry, store *repository.Store, classifier Classifier, tracer trace.Tracer) *Aggregator {
	return &Aggregator{
		registry:   registry,
		store:      store,
		classifier: classifier,
		tracer:     tracer,
	}
}

// UpdateRepoListWithReposFromProviders adds every valid, new provider
// repository whose manifest can be classified. Added repositories are
// enabled and protected. It returns how many were added; the store is only
// written when that is more than zero.
func (a *Aggregator) UpdateRepoListWithReposFromProviders(ctx context.Context) (int, error) {
	ctx, span := otel.StartSpan(ctx, a.tracer, "providers.UpdateRepoList")
	defer span.End()

	partials := collect(ctx, a.registry.snapshot())
	if len(partials) == 0 {
		return 0, nil
	}

	existing, err := a.store.List(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return 0, fmt.Errorf("failed to read repository list: %w", err)
	}
	seen := make(map[string]bool, len(existing)+len(partials))
	for _, r := range existing {
		seen[r.URL] = true
	}

	candidates := make([]repository.Repository, 0, len(partials))
	for _, p := range partials {
		switch {
		case p.URL == "":
			slog.DebugContext(ctx, "Ignoring provider repository without URL", "description", p.Description)
			continue
		case manifest.ValidateURL(p.URL) != nil:
			slog.WarnContext(ctx, "Ignoring provider repository with invalid URL", "url", p.URL)
			continue
		case seen[p.URL]:
			continue
		}
		seen[p.URL] = true

		repo := repository.Repository{URL: p.URL, Description: p.Description, Protected: true}
		repo.SetEnabled(true)
		candidates = append(candidates, repo)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	results := a.classifier.ClassifyRepositories(ctx, candidates)
	for i, r := range results {
		if !r.OK() {
			slog.WarnContext(ctx, "Ignoring provider repository without a valid manifest", "url", candidates[i].URL, "error", r.Err)
		}
	}

	added, err := a.store.AddAll(ctx, result.Values(results))
	if err != nil {
		otel.RecordError(span, err)
		return 0, err
	}

	span.SetAttributes(otel.AttrRepositoryCount.Int(added))
	if added > 0 {
		slog.InfoContext(ctx, "Added repositories from providers", "count", added)
	}
	return added, nil
}
