package providers

import (
	"fmt"

	"github.com/stacklok/template-registry-server/internal/config"
	"github.com/stacklok/template-registry-server/internal/git"
	"github.com/stacklok/template-registry-server/internal/httpclient"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go Factory

// Factory builds providers from configuration
type Factory interface {
	CreateProvider(cfg *config.ProviderConfig) (RepositoryProvider, error)
}

type defaultFactory struct {
	gitClient  git.Client
	httpClient httpclient.Client
}

var _ Factory = (*defaultFactory)(nil)

// NewFactory creates a Factory using the given clients for git and api providers
func NewFactory(gitClient git.Client, httpClient httpclient.Client) Factory {
	return &defaultFactory{gitClient: gitClient, httpClient: httpClient}
}

// CreateProvider implements Factory.CreateProvider
func (f *defaultFactory) CreateProvider(cfg *config.ProviderConfig) (RepositoryProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	var provider RepositoryProvider
	switch cfg.GetType() {
	case config.ProviderTypeFile:
		provider = NewFileProvider(cfg.File.Path)
	case config.ProviderTypeAPI:
		provider = NewAPIProvider(f.httpClient, cfg.API.Endpoint)
	case config.ProviderTypeGit:
		provider = NewGitProvider(f.gitClient, git.CloneConfig{
			URL:    cfg.Git.Repository,
			Branch: cfg.Git.Branch,
			Tag:    cfg.Git.Tag,
			Commit: cfg.Git.Commit,
		}, cfg.Git.Path)
	default:
		return nil, fmt.Errorf("provider '%s': unsupported provider type", cfg.Name)
	}

	if cfg.Filter == nil {
		return provider, nil
	}
	filtered, err := NewFilteredProvider(provider, cfg.Filter.Include, cfg.Filter.Exclude)
	if err != nil {
		return nil, fmt.Errorf("provider '%s': %w", cfg.Name, err)
	}
	return filtered, nil
}

// RegisterAll builds every configured provider and adds it to registry
func RegisterAll(registry *Registry, factory Factory, cfgs []config.ProviderConfig) error {
	for i := range cfgs {
		p, err := factory.CreateProvider(&cfgs[i])
		if err != nil {
			return err
		}
		if err := registry.AddProvider(cfgs[i].Name, p); err != nil {
			return err
		}
	}
	return nil
}
