package templates_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/template-registry-server/internal/manifest"
	manifestmocks "github.com/stacklok/template-registry-server/internal/manifest/mocks"
	"github.com/stacklok/template-registry-server/internal/repository"
	"github.com/stacklok/template-registry-server/internal/templates"
	"github.com/stacklok/template-registry-server/internal/templates/mocks"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mustParse(t *testing.T, data string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(data))
	require.NoError(t, err)
	return m
}

const (
	codewindIndex = `[{"displayName": "Go", "language": "go", "projectType": "docker", "location": "https://example.com/go"}]`
	appsodyIndex  = `{"Appsody": [{"displayName": "Node.js Express", "language": "nodejs", "location": "https://example.com/node"}]}`
)

func TestGetTemplatesFromRepo(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	fetcher := manifestmocks.NewMockFetcher(ctrl)
	repo := repository.Repository{URL: "https://repo.example.com/index.json", Description: "Example repo"}
	fetcher.EXPECT().Fetch(gomock.Any(), repo.URL).Return(mustParse(t, codewindIndex), nil)

	agg := templates.NewAggregator(fetcher, nil)
	got, err := agg.GetTemplatesFromRepo(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, []templates.Template{{
		Label:        "Go",
		Language:     "go",
		URL:          "https://example.com/go",
		ProjectType:  "docker",
		ProjectStyle: "Codewind",
		Source:       "Example repo",
		SourceURL:    repo.URL,
	}}, got)
}

func TestGetTemplatesFromRepo_Errors(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	fetcher := manifestmocks.NewMockFetcher(ctrl)
	agg := templates.NewAggregator(fetcher, nil)
	ctx := context.Background()

	_, err := agg.GetTemplatesFromRepo(ctx, repository.Repository{Description: "no url"})
	require.ErrorIs(t, err, templates.ErrMissingURL)

	fetcher.EXPECT().Fetch(gomock.Any(), "invalidURL").Return(nil, manifest.ErrInvalidURL)
	_, err = agg.GetTemplatesFromRepo(ctx, repository.Repository{URL: "invalidURL"})
	require.ErrorIs(t, err, manifest.ErrInvalidURL)
}

func TestGetTemplatesFromRepos(t *testing.T) {
	t.Parallel()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(appsodyIndex))
	}))
	good.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(good.Close)

	agg := templates.NewAggregator(manifest.NewFetcher(manifest.WithBundledManifests(nil)), nil)
	ctx := context.Background()

	t.Run("nil list is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := agg.GetTemplatesFromRepos(ctx, nil)
		require.ErrorIs(t, err, templates.ErrMissingRepositoryList)
	})

	t.Run("empty list yields nothing", func(t *testing.T) {
		t.Parallel()
		got, err := agg.GetTemplatesFromRepos(ctx, []repository.Repository{})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("bad repositories are isolated", func(t *testing.T) {
		t.Parallel()
		got, err := agg.GetTemplatesFromRepos(ctx, []repository.Repository{
			{URL: "http://127.0.0.1:1/unreachable.json"},
			{URL: good.URL + "/index.json", Description: "good"},
			{URL: "invalidURL"},
			{},
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Node.js Express", got[0].Label)
		assert.Equal(t, "Appsody", got[0].ProjectStyle)
		assert.Equal(t, good.URL+"/index.json", got[0].SourceURL)
	})
}

func TestGetTemplatesFromRepos_KeepsRepositoryOrder(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	fetcher := manifestmocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), "https://a.example.com").Return(mustParse(t, appsodyIndex), nil)
	fetcher.EXPECT().Fetch(gomock.Any(), "https://b.example.com").Return(mustParse(t, codewindIndex), nil)

	agg := templates.NewAggregator(fetcher, nil, templates.WithMaxConcurrency(1))
	assert.Equal(t, 1, agg.MaxConcurrency())

	got, err := agg.GetTemplatesFromRepos(context.Background(), []repository.Repository{
		{URL: "https://a.example.com"},
		{URL: "https://b.example.com"},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Appsody", got[0].ProjectStyle)
	assert.Equal(t, "Codewind", got[1].ProjectStyle)
}

func TestGetAllTemplates_Caches(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	fetcher := manifestmocks.NewMockFetcher(ctrl)
	source := mocks.NewMockRepositorySource(ctrl)

	repos := []repository.Repository{{URL: "https://a.example.com"}}
	source.EXPECT().Enabled(gomock.Any()).Return(repos, nil).Times(2)
	fetcher.EXPECT().Fetch(gomock.Any(), "https://a.example.com").Return(mustParse(t, codewindIndex), nil).Times(2)

	agg := templates.NewAggregator(fetcher, source)
	ctx := context.Background()

	first, err := agg.GetAllTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// cached, and callers cannot corrupt the cache
	first[0].Label = "changed"
	second, err := agg.GetAllTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Go", second[0].Label)

	agg.Invalidate()
	third, err := agg.GetAllTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, third, 1)
}

func TestGetAllTemplates_ConcurrentCallersShareRefresh(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	fetcher := manifestmocks.NewMockFetcher(ctrl)
	source := mocks.NewMockRepositorySource(ctrl)

	source.EXPECT().Enabled(gomock.Any()).Return([]repository.Repository{{URL: "https://a.example.com"}}, nil).Times(1)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(mustParse(t, codewindIndex), nil).Times(1)

	agg := templates.NewAggregator(fetcher, source)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := agg.GetAllTemplates(context.Background())
			assert.NoError(t, err)
			assert.Len(t, got, 1)
		}()
	}
	wg.Wait()
}

func TestGetAllTemplates_InvalidateDuringRefresh(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	fetcher := manifestmocks.NewMockFetcher(ctrl)
	source := mocks.NewMockRepositorySource(ctrl)

	var agg *templates.Aggregator
	source.EXPECT().Enabled(gomock.Any()).Return([]repository.Repository{{URL: "https://a.example.com"}}, nil).Times(2)
	gomock.InOrder(
		fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, string) (*manifest.Manifest, error) {
				agg.Invalidate()
				return mustParse(t, codewindIndex), nil
			}),
		fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(mustParse(t, appsodyIndex), nil),
	)

	agg = templates.NewAggregator(fetcher, source)
	ctx := context.Background()

	first, err := agg.GetAllTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Codewind", first[0].ProjectStyle)

	second, err := agg.GetAllTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Appsody", second[0].ProjectStyle)
}

func TestGetAllTemplates_CallerAfterInvalidateRecomputes(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	fetcher := manifestmocks.NewMockFetcher(ctrl)
	source := mocks.NewMockRepositorySource(ctrl)

	entered := make(chan struct{})
	release := make(chan struct{})
	source.EXPECT().Enabled(gomock.Any()).Return([]repository.Repository{{URL: "https://a.example.com"}}, nil).Times(2)
	gomock.InOrder(
		fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, string) (*manifest.Manifest, error) {
				close(entered)
				<-release
				return mustParse(t, codewindIndex), nil
			}),
		fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(mustParse(t, appsodyIndex), nil),
	)

	agg := templates.NewAggregator(fetcher, source)
	ctx := context.Background()

	type outcome struct {
		templates []templates.Template
		err       error
	}
	warmUp := make(chan outcome, 1)
	go func() {
		got, err := agg.GetAllTemplates(ctx)
		warmUp <- outcome{templates: got, err: err}
	}()

	<-entered
	agg.Invalidate()

	// Does not wait for the warm-up fetch to be released
	after, err := agg.GetAllTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "Appsody", after[0].ProjectStyle)

	close(release)
	stale := <-warmUp
	require.NoError(t, stale.err)
	assert.Equal(t, "Codewind", stale.templates[0].ProjectStyle)

	cached, err := agg.GetAllTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Appsody", cached[0].ProjectStyle)
}

func TestGetAllTemplates_SourceError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	source := mocks.NewMockRepositorySource(ctrl)
	source.EXPECT().Enabled(gomock.Any()).Return(nil, errors.New("disk gone"))

	agg := templates.NewAggregator(manifestmocks.NewMockFetcher(ctrl), source)
	_, err := agg.GetAllTemplates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestGetAllTemplateStyles(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	fetcher := manifestmocks.NewMockFetcher(ctrl)
	source := mocks.NewMockRepositorySource(ctrl)

	source.EXPECT().Enabled(gomock.Any()).Return([]repository.Repository{
		{URL: "https://a.example.com"},
		{URL: "https://b.example.com"},
	}, nil)
	fetcher.EXPECT().Fetch(gomock.Any(), "https://a.example.com").Return(mustParse(t, codewindIndex), nil)
	fetcher.EXPECT().Fetch(gomock.Any(), "https://b.example.com").Return(mustParse(t, appsodyIndex), nil)

	got, err := templates.NewAggregator(fetcher, source).GetAllTemplateStyles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Codewind", "Appsody"}, got)
}

func TestGetAllTemplateStyles_NoRepositories(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	source := mocks.NewMockRepositorySource(ctrl)
	source.EXPECT().Enabled(gomock.Any()).Return([]repository.Repository{}, nil)

	got, err := templates.NewAggregator(manifestmocks.NewMockFetcher(ctrl), source).GetAllTemplateStyles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Codewind"}, got)
}
