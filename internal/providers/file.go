package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/stacklok/template-registry-server/internal/repository"
)

// FileProvider reads a repository list from a local JSON or YAML file.
// The file is read on every call so edits are picked up without a restart.
type FileProvider struct {
	path string
}

var _ RepositoryProvider = (*FileProvider)(nil)

// NewFileProvider creates a FileProvider for path
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// GetRepositories implements RepositoryProvider
func (p *FileProvider) GetRepositories(_ context.Context) ([]repository.PartialRepository, error) {
	// #nosec G304 -- path comes from server configuration
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read repository list %s: %w", p.path, err)
	}
	return decodeRepositoryList(data, p.path)
}
