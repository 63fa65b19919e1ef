// Package config provides configuration loading and management for the template registry server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/template-registry-server/internal/telemetry"
)

const (
	// ProviderTypeGit is the type for repository lists stored in Git repositories
	ProviderTypeGit = "git"

	// ProviderTypeAPI is the type for repository lists served by an HTTP endpoint
	ProviderTypeAPI = "api"

	// ProviderTypeFile is the type for repository lists stored in local files
	ProviderTypeFile = "file"
)

// EnvPrefix is the prefix of environment variables read through viper
const EnvPrefix = "TEMPLATE_REGISTRY"

const (
	// DefaultDataDir holds the repository list file
	DefaultDataDir = "./data"

	// DefaultRepositoryFile is the repository list file name inside the data directory
	DefaultRepositoryFile = "repository_list.json"

	// DefaultFetchTimeout bounds a single manifest download
	DefaultFetchTimeout = 10 * time.Second

	// DefaultMaxConcurrency bounds parallel manifest downloads
	DefaultMaxConcurrency = 8
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// DataDir is where the repository list is persisted
	DataDir string `yaml:"dataDir,omitempty"`

	// RepositoryFile is the repository list file, relative to DataDir unless absolute
	RepositoryFile string `yaml:"repositoryFile,omitempty"`

	// SeedDefaults starts a fresh installation with the built-in repositories.
	// Defaults to true.
	SeedDefaults *bool `yaml:"seedDefaults,omitempty"`

	Fetch     FetchConfig       `yaml:"fetch,omitempty"`
	Providers []ProviderConfig  `yaml:"providers,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// FetchConfig tunes manifest downloads
type FetchConfig struct {
	// Timeout is a duration string such as "10s"
	Timeout string `yaml:"timeout,omitempty"`

	// MaxConcurrency bounds parallel downloads
	MaxConcurrency int `yaml:"maxConcurrency,omitempty"`
}

// ProviderConfig defines one repository provider. Exactly one source is set.
type ProviderConfig struct {
	Name string `yaml:"name"`

	Git  *GitConfig  `yaml:"git,omitempty"`
	API  *APIConfig  `yaml:"api,omitempty"`
	File *FileConfig `yaml:"file,omitempty"`

	Filter *FilterConfig `yaml:"filter,omitempty"`
}

// FilterConfig restricts the repositories a provider contributes by URL.
// Patterns are globs where '*' also matches '/'. Exclude wins over include.
type FilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// GitConfig defines Git source settings
type GitConfig struct {
	// Repository is the Git repository URL
	Repository string `yaml:"repository"`

	// Branch, Tag and Commit are mutually exclusive
	Branch string `yaml:"branch,omitempty"`
	Tag    string `yaml:"tag,omitempty"`
	Commit string `yaml:"commit,omitempty"`

	// Path is the repository list file within the repository
	Path string `yaml:"path"`
}

// APIConfig defines an HTTP endpoint serving a JSON repository list
type APIConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// FileConfig defines local file source configuration
type FileConfig struct {
	// Path is a JSON or YAML repository list, absolute or relative to the working directory
	Path string `yaml:"path"`
}

// LoadConfig loads configuration. Without WithConfigPath it returns the defaults.
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	var config Config
	if loaderCfg.path != "" {
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetDataDir returns the data directory, using the default if not specified
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return DefaultDataDir
	}
	return c.DataDir
}

// GetRepositoryFilePath returns the location of the repository list file
func (c *Config) GetRepositoryFilePath() string {
	name := c.RepositoryFile
	if name == "" {
		name = DefaultRepositoryFile
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.GetDataDir(), name)
}

// ShouldSeedDefaults reports whether a fresh installation gets the built-in repositories
func (c *Config) ShouldSeedDefaults() bool {
	return c.SeedDefaults == nil || *c.SeedDefaults
}

// GetFetchTimeout returns the manifest download timeout
func (c *Config) GetFetchTimeout() time.Duration {
	if c.Fetch.Timeout == "" {
		return DefaultFetchTimeout
	}
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil || d <= 0 {
		return DefaultFetchTimeout
	}
	return d
}

// GetMaxConcurrency returns the bound on parallel manifest downloads
func (c *Config) GetMaxConcurrency() int {
	if c.Fetch.MaxConcurrency <= 0 {
		return DefaultMaxConcurrency
	}
	return c.Fetch.MaxConcurrency
}

// GetType returns the inferred type of the provider config based on which field is present
func (p *ProviderConfig) GetType() string {
	switch {
	case p.Git != nil:
		return ProviderTypeGit
	case p.API != nil:
		return ProviderTypeAPI
	case p.File != nil:
		return ProviderTypeFile
	}
	return ""
}

// Validate checks the configuration for invalid values and provider definitions
func (c *Config) Validate() error {
	if c.Fetch.Timeout != "" {
		d, err := time.ParseDuration(c.Fetch.Timeout)
		if err != nil {
			return fmt.Errorf("fetch.timeout must be a valid duration (e.g., '10s'): %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("fetch.timeout must be positive, got %s", c.Fetch.Timeout)
		}
	}
	if c.Fetch.MaxConcurrency < 0 {
		return fmt.Errorf("fetch.maxConcurrency must not be negative, got %d", c.Fetch.MaxConcurrency)
	}

	names := make(map[string]bool)
	for i := range c.Providers {
		p := &c.Providers[i]
		if p.Name == "" {
			return fmt.Errorf("provider[%d]: name is required", i)
		}
		if names[p.Name] {
			return fmt.Errorf("provider[%d]: duplicate provider name '%s'", i, p.Name)
		}
		names[p.Name] = true

		if err := validateProvider(p, fmt.Sprintf("provider[%d] (%s)", i, p.Name)); err != nil {
			return err
		}
	}

	return c.Telemetry.Validate()
}

func validateProvider(p *ProviderConfig, prefix string) error {
	count := 0
	for _, set := range []bool{p.Git != nil, p.API != nil, p.File != nil} {
		if set {
			count++
		}
	}
	if count == 0 {
		return fmt.Errorf("%s: one of git, api, or file configuration must be specified", prefix)
	}
	if count > 1 {
		return fmt.Errorf("%s: only one of git, api, or file configuration may be specified", prefix)
	}

	switch {
	case p.Git != nil:
		return validateGitConfig(p.Git, prefix)
	case p.API != nil:
		if p.API.Endpoint == "" {
			return fmt.Errorf("%s: api.endpoint is required", prefix)
		}
	case p.File != nil:
		if p.File.Path == "" {
			return fmt.Errorf("%s: file.path is required", prefix)
		}
	}
	return nil
}

func validateGitConfig(git *GitConfig, prefix string) error {
	var errs []error
	if git.Repository == "" {
		errs = append(errs, fmt.Errorf("%s: git.repository is required", prefix))
	}
	if git.Path == "" {
		errs = append(errs, fmt.Errorf("%s: git.path is required", prefix))
	}
	refs := 0
	for _, ref := range []string{git.Branch, git.Tag, git.Commit} {
		if ref != "" {
			refs++
		}
	}
	if refs > 1 {
		errs = append(errs, fmt.Errorf("%s: only one of git.branch, git.tag, or git.commit may be specified", prefix))
	}
	return errors.Join(errs...)
}
