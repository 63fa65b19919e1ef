// Package styles classifies templates and repositories by project style.
package styles

import (
	"context"
	"log/slog"
	"slices"

	"github.com/stacklok/template-registry-server/internal/manifest"
	"github.com/stacklok/template-registry-server/internal/repository"
	"github.com/stacklok/template-registry-server/internal/result"
)

//go:generate mockgen -destination=mocks/mock_template_source.go -package=mocks -source=styles.go TemplateSource

// DefaultStyle is reported when a template set names no style at all
const DefaultStyle = manifest.DefaultProjectStyle

// TemplateSource fetches the templates published by one repository
type TemplateSource interface {
	GetTemplatesFromRepo(ctx context.Context, repo repository.Repository) ([]manifest.Template, error)
}

// GetTemplateStyles returns the distinct non-empty project styles of
// templates in first-seen order, or just DefaultStyle if there are none.
func GetTemplateStyles(templates []manifest.Template) []string {
	var styles []string
	for _, t := range templates {
		if t.ProjectStyle != "" && !slices.Contains(styles, t.ProjectStyle) {
			styles = append(styles, t.ProjectStyle)
		}
	}
	if len(styles) == 0 {
		return []string{DefaultStyle}
	}
	return styles
}

// FilterTemplatesByStyle returns the templates whose project style is style
func FilterTemplatesByStyle(templates []manifest.Template, style string) []manifest.Template {
	out := make([]manifest.Template, 0, len(templates))
	for _, t := range templates {
		if t.ProjectStyle == style {
			out = append(out, t)
		}
	}
	return out
}

// Classifier computes the project styles of repositories from their manifests
type Classifier struct {
	source TemplateSource
	limit  int
}

// NewClassifier creates a Classifier fetching through source with at most
// limit fetches in flight. A limit of zero means no limit.
func NewClassifier(source TemplateSource, limit int) *Classifier {
	return &Classifier{source: source, limit: limit}
}

// ClassifyRepositories fetches every repository in parallel and sets its
// ProjectStyles to the sorted distinct styles of its templates. Each entry of
// the result carries either the classified repository or the fetch error.
func (c *Classifier) ClassifyRepositories(ctx context.Context, repos []repository.Repository) []result.Result[repository.Repository] {
	return result.Map(ctx, repos, c.limit, func(ctx context.Context, repo repository.Repository) (repository.Repository, error) {
		templates, err := c.source.GetTemplatesFromRepo(ctx, repo)
		if err != nil {
			return repo, err
		}
		styles := GetTemplateStyles(templates)
		slices.Sort(styles)

		out := repo.Clone()
		out.ProjectStyles = styles
		return out, nil
	})
}

// AddTemplateStylesToRepos classifies repos. Repositories whose manifest
// cannot be fetched are returned unchanged.
func (c *Classifier) AddTemplateStylesToRepos(ctx context.Context, repos []repository.Repository) []repository.Repository {
	results := c.ClassifyRepositories(ctx, repos)

	out := make([]repository.Repository, len(results))
	for i, r := range results {
		if !r.OK() {
			slog.WarnContext(ctx, "Could not determine project styles", "url", repos[i].URL, "error", r.Err)
			out[i] = repos[i]
			continue
		}
		out[i] = r.Value
	}
	return out
}
