// Package providers collects template repositories contributed by
// registered providers and folds them into the repository list.
package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/stacklok/template-registry-server/internal/repository"
)

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks -source=provider.go RepositoryProvider

// ErrInvalidProvider is returned when registering a provider without a name or implementation
var ErrInvalidProvider = errors.New("invalid provider")

// RepositoryProvider contributes template repositories
type RepositoryProvider interface {
	GetRepositories(ctx context.Context) ([]repository.PartialRepository, error)
}

type namedProvider struct {
	name     string
	provider RepositoryProvider
}

// Registry holds providers in registration order
type Registry struct {
	mu        sync.RWMutex
	providers []namedProvider
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{}
}

// AddProvider registers provider under name. Registering a name again
// replaces the earlier provider in place. A nil provider or empty name is
// rejected with ErrInvalidProvider and the registry is left unchanged.
func (r *Registry) AddProvider(name string, provider RepositoryProvider) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProvider)
	}
	if isNil(provider) {
		return fmt.Errorf("%w: provider '%s' has no implementation", ErrInvalidProvider, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.providers, func(p namedProvider) bool { return p.name == name })
	if i >= 0 {
		r.providers[i].provider = provider
		return nil
	}
	r.providers = append(r.providers, namedProvider{name: name, provider: provider})
	return nil
}

// Names returns the registered provider names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.name
	}
	return names
}

func (r *Registry) snapshot() []namedProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.providers)
}

// GetReposFromProviders concatenates the repositories of every provider in
// order. A provider that fails is logged and contributes nothing.
func GetReposFromProviders(ctx context.Context, providers []RepositoryProvider) []repository.PartialRepository {
	named := make([]namedProvider, len(providers))
	for i, p := range providers {
		named[i] = namedProvider{name: fmt.Sprintf("#%d", i), provider: p}
	}
	return collect(ctx, named)
}

func collect(ctx context.Context, providers []namedProvider) []repository.PartialRepository {
	var out []repository.PartialRepository
	for _, p := range providers {
		if isNil(p.provider) {
			continue
		}
		repos, err := p.provider.GetRepositories(ctx)
		if err != nil {
			slog.WarnContext(ctx, "Provider failed to list repositories", "provider", p.name, "error", err)
			continue
		}
		out = append(out, repos...)
	}
	return out
}

func isNil(p RepositoryProvider) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
