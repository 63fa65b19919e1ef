// Package service provides the business logic for the template registry API
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stacklok/template-registry-server/internal/batch"
	"github.com/stacklok/template-registry-server/internal/providers"
	"github.com/stacklok/template-registry-server/internal/repository"
	"github.com/stacklok/template-registry-server/internal/templates"
)

var (
	// ErrManifestValidation is returned when a new repository does not serve a usable manifest
	ErrManifestValidation = errors.New("does not point to a JSON file of the correct form")
	// ErrProtectedRepository is returned when deleting a provider-owned repository
	ErrProtectedRepository = errors.New("repository is protected")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go TemplateService

// TemplateService defines the interface for template registry operations
type TemplateService interface {
	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error

	// GetTemplates returns the templates of all enabled repositories
	GetTemplates(ctx context.Context, opts ...Option[GetTemplatesOptions]) ([]templates.Template, error)

	// GetTemplateStyles returns the distinct styles of all enabled templates
	GetTemplateStyles(ctx context.Context) ([]string, error)

	// GetRepositories returns the full repository list in insertion order
	GetRepositories(ctx context.Context) ([]repository.Repository, error)

	// AddRepository validates and appends a repository
	AddRepository(ctx context.Context, url, description string) (*repository.Repository, error)

	// DeleteRepository removes the repository with the given URL
	DeleteRepository(ctx context.Context, url string) error

	// EnableRepository marks a repository as enabled
	EnableRepository(ctx context.Context, url string) error

	// DisableRepository marks a repository as disabled
	DisableRepository(ctx context.Context, url string) error

	// BatchUpdate applies operations in order and persists once
	BatchUpdate(ctx context.Context, ops []batch.Operation) ([]batch.Result, error)

	// AddProvider registers a repository provider
	AddProvider(name string, provider providers.RepositoryProvider) error

	// UpdateRepoListWithReposFromProviders folds provider repositories into the list
	UpdateRepoListWithReposFromProviders(ctx context.Context) (int, error)
}

// Option is a function that sets an option for a service operation
type Option[T GetTemplatesOptions] func(*T) error

// GetTemplatesOptions is the options for the GetTemplates operation
type GetTemplatesOptions struct {
	ProjectStyle string
}

// WithProjectStyle restricts GetTemplates to one project style
func WithProjectStyle(style string) Option[GetTemplatesOptions] {
	return func(o *GetTemplatesOptions) error {
		if style == "" {
			return fmt.Errorf("invalid project style: %s", style)
		}
		o.ProjectStyle = style
		return nil
	}
}
