// Package helpers provides fixtures for the template registry integration tests.
package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/onsi/gomega"

	templateapp "github.com/stacklok/template-registry-server/internal/app"
	"github.com/stacklok/template-registry-server/internal/batch"
	"github.com/stacklok/template-registry-server/internal/config"
	"github.com/stacklok/template-registry-server/internal/repository"
	"github.com/stacklok/template-registry-server/internal/templates"
)

// ServerTestHelper manages the template registry server lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	configPath string
	baseURL    string
	address    string
	httpClient *http.Client
	app        *templateapp.TemplateApp
}

// NewServerTestHelper creates a server helper listening on a free local port
func NewServerTestHelper(ctx context.Context, configPath string) (*ServerTestHelper, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to find a free port: %w", err)
	}
	address := listener.Addr().String()
	if err := listener.Close(); err != nil {
		return nil, err
	}

	return &ServerTestHelper{
		ctx:        ctx,
		configPath: configPath,
		baseURL:    "http://" + address,
		address:    address,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// StartServer starts the template registry server programmatically
func (s *ServerTestHelper) StartServer() error {
	cfg, err := config.LoadConfig(config.WithConfigPath(s.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := templateapp.NewTemplateApp(s.ctx,
		templateapp.WithConfig(cfg),
		templateapp.WithAddress(s.address),
	)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}
	s.app = app

	go func() {
		if err := app.Start(); err != nil {
			// The test fails when it tries to connect
			fmt.Fprintf(os.Stderr, "Server start failed: %v\n", err)
		}
	}()

	return nil
}

// StopServer gracefully stops the template registry server
func (s *ServerTestHelper) StopServer() error {
	if s.app != nil {
		return s.app.Stop(5 * time.Second)
	}
	return nil
}

// WaitForServerReady waits for the server to be ready to accept requests
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/readiness")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 100*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// GetBaseURL returns the base URL of the server
func (s *ServerTestHelper) GetBaseURL() string {
	return s.baseURL
}

// Do sends a request with an optional JSON body and returns the status code and body
func (s *ServerTestHelper) Do(method, path string, body any) (int, []byte) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(s.ctx, method, s.baseURL+path, reader)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return resp.StatusCode, data
}

// GetTemplates calls GET /api/v1/templates, optionally filtered by project style
func (s *ServerTestHelper) GetTemplates(projectStyle string) []templates.Template {
	path := "/api/v1/templates"
	if projectStyle != "" {
		path += "?projectStyle=" + url.QueryEscape(projectStyle)
	}
	status, body := s.Do(http.MethodGet, path, nil)
	gomega.Expect(status).To(gomega.Equal(http.StatusOK), string(body))

	var out []templates.Template
	gomega.Expect(json.Unmarshal(body, &out)).To(gomega.Succeed())
	return out
}

// GetStyles calls GET /api/v1/templates/styles
func (s *ServerTestHelper) GetStyles() []string {
	status, body := s.Do(http.MethodGet, "/api/v1/templates/styles", nil)
	gomega.Expect(status).To(gomega.Equal(http.StatusOK), string(body))

	var out []string
	gomega.Expect(json.Unmarshal(body, &out)).To(gomega.Succeed())
	return out
}

// GetRepositories calls GET /api/v1/templates/repositories
func (s *ServerTestHelper) GetRepositories() []repository.Repository {
	status, body := s.Do(http.MethodGet, "/api/v1/templates/repositories", nil)
	gomega.Expect(status).To(gomega.Equal(http.StatusOK), string(body))

	var out []repository.Repository
	gomega.Expect(json.Unmarshal(body, &out)).To(gomega.Succeed())
	return out
}

// AddRepository calls POST /api/v1/templates/repositories
func (s *ServerTestHelper) AddRepository(repoURL, description string) (int, []byte) {
	return s.Do(http.MethodPost, "/api/v1/templates/repositories", map[string]string{
		"url":         repoURL,
		"description": description,
	})
}

// DeleteRepository calls DELETE /api/v1/templates/repositories?url=
func (s *ServerTestHelper) DeleteRepository(repoURL string) (int, []byte) {
	return s.Do(http.MethodDelete, "/api/v1/templates/repositories?url="+url.QueryEscape(repoURL), nil)
}

// BatchUpdate calls PATCH /api/v1/batch/templates/repositories
func (s *ServerTestHelper) BatchUpdate(ops []batch.Operation) (int, []batch.Result) {
	status, body := s.Do(http.MethodPatch, "/api/v1/batch/templates/repositories", ops)

	var out []batch.Result
	if status == http.StatusMultiStatus {
		gomega.Expect(json.Unmarshal(body, &out)).To(gomega.Succeed())
	}
	return status, out
}
