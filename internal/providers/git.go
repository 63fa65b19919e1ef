package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/stacklok/template-registry-server/internal/git"
	"github.com/stacklok/template-registry-server/internal/repository"
)

const (
	// DefaultGitMaxTries is how often a clone is attempted before giving up
	DefaultGitMaxTries = 3

	defaultGitInitialInterval = 500 * time.Millisecond
)

// GitProvider reads a repository list from a file inside a git repository.
// Each call clones into memory, reads the file and drops the clone.
type GitProvider struct {
	client          git.Client
	clone           git.CloneConfig
	path            string
	maxTries        uint
	initialInterval time.Duration
}

var _ RepositoryProvider = (*GitProvider)(nil)

// GitOption configures a GitProvider
type GitOption func(*GitProvider)

// WithRetry sets how many clone attempts are made and the first backoff interval
func WithRetry(maxTries uint, initialInterval time.Duration) GitOption {
	return func(p *GitProvider) {
		p.maxTries = maxTries
		p.initialInterval = initialInterval
	}
}

// NewGitProvider creates a GitProvider reading path from the clone described by clone
func NewGitProvider(client git.Client, clone git.CloneConfig, path string, opts ...GitOption) *GitProvider {
	p := &GitProvider{
		client:          client,
		clone:           clone,
		path:            path,
		maxTries:        DefaultGitMaxTries,
		initialInterval: defaultGitInitialInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetRepositories implements RepositoryProvider
func (p *GitProvider) GetRepositories(ctx context.Context) ([]repository.PartialRepository, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initialInterval

	info, err := backoff.Retry(ctx, func() (*git.RepositoryInfo, error) {
		cfg := p.clone
		info, err := p.client.Clone(ctx, &cfg)
		if err != nil {
			slog.DebugContext(ctx, "Clone attempt failed", "url", p.clone.URL, "error", err)
		}
		return info, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(p.maxTries))
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", p.clone.URL, err)
	}
	defer func() {
		if err := p.client.Cleanup(ctx, info); err != nil {
			slog.WarnContext(ctx, "Failed to release clone", "url", p.clone.URL, "error", err)
		}
	}()

	data, err := p.client.GetFileContent(info, p.path)
	if err != nil {
		return nil, err
	}
	return decodeRepositoryList(data, p.path)
}
