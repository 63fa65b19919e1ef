package helpers

import (
	"os"
	"path/filepath"

	"github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/template-registry-server/internal/config"
)

// WriteConfig writes a server configuration into dir and returns its path.
// The repository list lives in dir and seeding is turned off.
func WriteConfig(dir string, providers ...config.ProviderConfig) string {
	seed := false
	cfg := config.Config{
		DataDir:      filepath.Join(dir, "data"),
		SeedDefaults: &seed,
		Fetch: config.FetchConfig{
			Timeout:        "5s",
			MaxConcurrency: 4,
		},
		Providers: providers,
	}

	data, err := yaml.Marshal(&cfg)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	path := filepath.Join(dir, "config.yaml")
	gomega.Expect(os.WriteFile(path, data, 0600)).To(gomega.Succeed())
	return path
}

// WriteRepositoryListFile writes a YAML repository list to dir/name and returns its path
func WriteRepositoryListFile(dir, name string, repos any) string {
	data, err := yaml.Marshal(repos)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	path := filepath.Join(dir, name)
	gomega.Expect(os.WriteFile(path, data, 0600)).To(gomega.Succeed())
	return path
}
