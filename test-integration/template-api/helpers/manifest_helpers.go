package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/onsi/gomega"

	"github.com/stacklok/template-registry-server/internal/manifest"
	"github.com/stacklok/template-registry-server/internal/repository"
)

// ManifestServer serves template manifests and repository lists over HTTP
type ManifestServer struct {
	server *httptest.Server

	mu        sync.RWMutex
	manifests map[string][]manifest.Descriptor
	lists     map[string][]repository.PartialRepository
}

// NewManifestServer starts an HTTP server with no documents
func NewManifestServer() *ManifestServer {
	m := &ManifestServer{
		manifests: make(map[string][]manifest.Descriptor),
		lists:     make(map[string][]repository.PartialRepository),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// AddManifest publishes a flat manifest at path and returns its URL
func (m *ManifestServer) AddManifest(path string, descriptors ...manifest.Descriptor) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manifests[path] = descriptors
	return m.server.URL + path
}

// AddRepositoryList publishes a repository list at path and returns its URL
func (m *ManifestServer) AddRepositoryList(path string, repos ...repository.PartialRepository) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[path] = repos
	return m.server.URL + path
}

// URL returns the URL of path on this server
func (m *ManifestServer) URL(path string) string {
	return m.server.URL + path
}

// Close shuts the server down
func (m *ManifestServer) Close() {
	m.server.Close()
}

func (m *ManifestServer) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var body any
	if descriptors, ok := m.manifests[r.URL.Path]; ok {
		body = descriptors
	} else if repos, ok := m.lists[r.URL.Path]; ok {
		body = repos
	} else {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	gomega.Expect(json.NewEncoder(w).Encode(body)).To(gomega.Succeed())
}

// Descriptor builds a manifest entry for a template in style
func Descriptor(name, style string) manifest.Descriptor {
	return manifest.Descriptor{
		DisplayName:  name,
		Description:  name + " template",
		Language:     "go",
		ProjectType:  "docker",
		ProjectStyle: style,
		Location:     "https://example.com/templates/" + name + ".zip",
	}
}
