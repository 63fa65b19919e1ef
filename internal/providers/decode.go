package providers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/template-registry-server/internal/repository"
)

// decodeRepositoryList parses a list of repositories. Files named *.yaml or
// *.yml are read as YAML, everything else as JSON. JSON lists may carry
// comments and trailing commas.
func decodeRepositoryList(data []byte, name string) ([]repository.PartialRepository, error) {
	var repos []repository.PartialRepository

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &repos); err != nil {
			return nil, fmt.Errorf("failed to parse YAML repository list %s: %w", name, err)
		}
	default:
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON repository list %s: %w", name, err)
		}
		if err := json.Unmarshal(std, &repos); err != nil {
			return nil, fmt.Errorf("failed to parse JSON repository list %s: %w", name, err)
		}
	}

	return repos, nil
}
