package providers_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/template-registry-server/internal/config"
	"github.com/stacklok/template-registry-server/internal/git"
	gitmocks "github.com/stacklok/template-registry-server/internal/git/mocks"
	"github.com/stacklok/template-registry-server/internal/httpclient"
	httpmocks "github.com/stacklok/template-registry-server/internal/httpclient/mocks"
	"github.com/stacklok/template-registry-server/internal/providers"
	"github.com/stacklok/template-registry-server/internal/providers/mocks"
	"github.com/stacklok/template-registry-server/internal/repository"
)

var wantRepos = []repository.PartialRepository{
	{URL: "https://a.example.com/index.json", Description: "Team A"},
	{URL: "https://b.example.com/index.json"},
}

const (
	jsonList = `[{"url": "https://a.example.com/index.json", "description": "Team A"}, {"url": "https://b.example.com/index.json"}]`
	commentedList = `[
  // maintained by team A
  {"url": "https://a.example.com/index.json", "description": "Team A"},
  {"url": "https://b.example.com/index.json"}, /* trailing comma */
]`
	yamlList = `- url: https://a.example.com/index.json
  description: Team A
- url: https://b.example.com/index.json
`
)

func TestFileProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		file     string
		content  string
		want     []repository.PartialRepository
		wantErr  string
		noCreate bool
	}{
		{name: "json", file: "repos.json", content: jsonList, want: wantRepos},
		{name: "json with comments", file: "repos.json", content: commentedList, want: wantRepos},
		{name: "yaml", file: "repos.yaml", content: yamlList, want: wantRepos},
		{name: "yml", file: "repos.yml", content: yamlList, want: wantRepos},
		{name: "bad json", file: "repos.json", content: "{", wantErr: "failed to parse JSON repository list"},
		{name: "bad yaml", file: "repos.yaml", content: "url: [", wantErr: "failed to parse YAML repository list"},
		{name: "missing", file: "missing.json", noCreate: true, wantErr: "failed to read repository list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.file)
			if !tt.noCreate {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))
			}

			got, err := providers.NewFileProvider(path).GetRepositories(context.Background())
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAPIProvider(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := httpmocks.NewMockClient(ctrl)
	const endpoint = "https://repos.example.com/list"

	client.EXPECT().Get(gomock.Any(), endpoint).Return([]byte(jsonList), nil)
	got, err := providers.NewAPIProvider(client, endpoint).GetRepositories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, wantRepos, got)

	client.EXPECT().Get(gomock.Any(), endpoint).Return(nil, httpclient.NewHTTPError(http.StatusNotFound, endpoint, "404 Not Found"))
	_, err = providers.NewAPIProvider(client, endpoint).GetRepositories(context.Background())
	var httpErr *httpclient.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestGitProvider_RetriesClone(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := gitmocks.NewMockClient(ctrl)
	clone := git.CloneConfig{URL: "https://github.com/example/repos.git", Branch: "main"}
	info := &git.RepositoryInfo{RemoteURL: clone.URL}

	gomock.InOrder(
		client.EXPECT().Clone(gomock.Any(), &clone).Return(nil, errors.New("connection reset")),
		client.EXPECT().Clone(gomock.Any(), &clone).Return(info, nil),
		client.EXPECT().GetFileContent(info, "repos/list.yaml").Return([]byte(yamlList), nil),
		client.EXPECT().Cleanup(gomock.Any(), info).Return(nil),
	)

	p := providers.NewGitProvider(client, clone, "repos/list.yaml", providers.WithRetry(3, time.Millisecond))
	got, err := p.GetRepositories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, wantRepos, got)
}

func TestGitProvider_GivesUp(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := gitmocks.NewMockClient(ctrl)
	client.EXPECT().Clone(gomock.Any(), gomock.Any()).Return(nil, errors.New("repository not found")).Times(2)

	p := providers.NewGitProvider(client, git.CloneConfig{URL: "https://github.com/example/missing.git"}, "list.json",
		providers.WithRetry(2, time.Millisecond))
	_, err := p.GetRepositories(context.Background())
	require.ErrorContains(t, err, "failed to clone https://github.com/example/missing.git")
}

func TestGitProvider_MissingFileStillCleansUp(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := gitmocks.NewMockClient(ctrl)
	info := &git.RepositoryInfo{}
	client.EXPECT().Clone(gomock.Any(), gomock.Any()).Return(info, nil)
	client.EXPECT().GetFileContent(info, "list.json").Return(nil, errors.New("file not found"))
	client.EXPECT().Cleanup(gomock.Any(), info).Return(nil)

	_, err := providers.NewGitProvider(client, git.CloneConfig{URL: "https://example.com/r.git"}, "list.json").
		GetRepositories(context.Background())
	require.ErrorContains(t, err, "file not found")
}

func TestFactory_CreateProvider(t *testing.T) {
	t.Parallel()

	f := providers.NewFactory(git.NewDefaultClient(), httpclient.NewDefaultClient(0))

	tests := []struct {
		name    string
		cfg     *config.ProviderConfig
		want    any
		wantErr bool
	}{
		{name: "file", cfg: &config.ProviderConfig{Name: "f", File: &config.FileConfig{Path: "a.json"}}, want: &providers.FileProvider{}},
		{name: "api", cfg: &config.ProviderConfig{Name: "a", API: &config.APIConfig{Endpoint: "https://example.com"}}, want: &providers.APIProvider{}},
		{name: "git", cfg: &config.ProviderConfig{Name: "g", Git: &config.GitConfig{Repository: "https://example.com/r.git", Path: "a.json"}}, want: &providers.GitProvider{}},
		{name: "filtered", cfg: &config.ProviderConfig{Name: "f", File: &config.FileConfig{Path: "a.json"}, Filter: &config.FilterConfig{Include: []string{"https://*"}}}, want: &providers.FilteredProvider{}},
		{name: "bad filter", cfg: &config.ProviderConfig{Name: "f", File: &config.FileConfig{Path: "a.json"}, Filter: &config.FilterConfig{Exclude: []string{"[a-"}}}, wantErr: true},
		{name: "nil", cfg: nil, wantErr: true},
		{name: "no source", cfg: &config.ProviderConfig{Name: "x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := f.CreateProvider(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}
}

func TestRegisterAll(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	factory := mocks.NewMockFactory(ctrl)
	cfgs := []config.ProviderConfig{
		{Name: "one", File: &config.FileConfig{Path: "one.json"}},
		{Name: "two", File: &config.FileConfig{Path: "two.json"}},
	}

	factory.EXPECT().CreateProvider(&cfgs[0]).Return(providers.NewFileProvider("one.json"), nil)
	factory.EXPECT().CreateProvider(&cfgs[1]).Return(providers.NewFileProvider("two.json"), nil)

	registry := providers.NewRegistry()
	require.NoError(t, providers.RegisterAll(registry, factory, cfgs))
	assert.Equal(t, []string{"one", "two"}, registry.Names())

	factory.EXPECT().CreateProvider(gomock.Any()).Return(nil, errors.New("unsupported"))
	require.Error(t, providers.RegisterAll(providers.NewRegistry(), factory, cfgs[:1]))
}
