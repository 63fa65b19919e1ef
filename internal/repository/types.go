// Package repository owns the list of template repositories and its
// persisted JSON file.
package repository

import (
	"slices"

	"github.com/stacklok/template-registry-server/internal/manifest"
)

// Repository is a template repository known to the registry
type Repository struct {
	URL         string `json:"url"`
	Description string `json:"description"`
	// Enabled is nil when the field was absent in the file; nil means enabled.
	Enabled       *bool    `json:"enabled,omitempty"`
	Protected     bool     `json:"protected,omitempty"`
	ProjectStyles []string `json:"projectStyles,omitempty"`
}

// PartialRepository is what a provider contributes
type PartialRepository struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// IsEnabled reports whether the repository is enabled. A missing flag counts as enabled.
func (r Repository) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// SetEnabled sets the enabled flag explicitly
func (r *Repository) SetEnabled(enabled bool) {
	r.Enabled = &enabled
}

// Clone returns a deep copy of r
func (r Repository) Clone() Repository {
	out := r
	if r.Enabled != nil {
		enabled := *r.Enabled
		out.Enabled = &enabled
	}
	out.ProjectStyles = slices.Clone(r.ProjectStyles)
	return out
}

func cloneAll(repos []Repository) []Repository {
	out := make([]Repository, len(repos))
	for i, r := range repos {
		out[i] = r.Clone()
	}
	return out
}

// DefaultRepositories returns a fresh copy of the repositories a new
// installation starts with.
func DefaultRepositories() []Repository {
	enabled := true
	return []Repository{
		{
			URL:           manifest.DefaultRepositoryURL,
			Description:   manifest.DefaultRepositoryDescription,
			Enabled:       &enabled,
			ProjectStyles: []string{manifest.DefaultProjectStyle},
		},
	}
}
