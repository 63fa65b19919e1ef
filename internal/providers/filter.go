package providers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gobwas/glob"

	"github.com/stacklok/template-registry-server/internal/repository"
)

// FilteredProvider drops repositories whose URL does not pass include and
// exclude glob patterns. An exclude match always wins. With include patterns
// set, a URL must match at least one of them.
type FilteredProvider struct {
	inner   RepositoryProvider
	include []glob.Glob
	exclude []glob.Glob
}

var _ RepositoryProvider = (*FilteredProvider)(nil)

// NewFilteredProvider wraps inner with URL filters. '*' matches across '/'.
func NewFilteredProvider(inner RepositoryProvider, include, exclude []string) (*FilteredProvider, error) {
	inc, err := compilePatterns(include)
	if err != nil {
		return nil, fmt.Errorf("invalid include pattern: %w", err)
	}
	exc, err := compilePatterns(exclude)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}
	return &FilteredProvider{inner: inner, include: inc, exclude: exc}, nil
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("'%s': %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// GetRepositories implements RepositoryProvider
func (p *FilteredProvider) GetRepositories(ctx context.Context) ([]repository.PartialRepository, error) {
	repos, err := p.inner.GetRepositories(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]repository.PartialRepository, 0, len(repos))
	for _, r := range repos {
		if !p.shouldInclude(r.URL) {
			slog.DebugContext(ctx, "Provider repository filtered out", "url", r.URL)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (p *FilteredProvider) shouldInclude(url string) bool {
	for _, g := range p.exclude {
		if g.Match(url) {
			return false
		}
	}
	if len(p.include) == 0 {
		return true
	}
	for _, g := range p.include {
		if g.Match(url) {
			return true
		}
	}
	return false
}
