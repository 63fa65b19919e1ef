package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/template-registry-server/internal/config"
	"github.com/stacklok/template-registry-server/internal/providers"
	"github.com/stacklok/template-registry-server/internal/service"
	"github.com/stacklok/template-registry-server/internal/service/mocks"
	"github.com/stacklok/template-registry-server/internal/templates"
)

// createTestApp creates a TemplateApp over a mock service
func createTestApp(t *testing.T, svc *mocks.MockTemplateService, address string) *TemplateApp {
	t.Helper()

	b, err := baseConfig(WithAddress(address))
	require.NoError(t, err)
	server, err := buildHTTPServer(context.Background(), b, svc)
	require.NoError(t, err)

	appCtx, cancel := context.WithCancel(context.Background())
	return &TemplateApp{
		config:     &config.Config{},
		components: &AppComponents{TemplateService: svc},
		httpServer: server,
		ctx:        appCtx,
		cancelFunc: cancel,
		warmed:     make(chan struct{}),
		watchDone:  make(chan struct{}),
	}
}

func freeAddress(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return addr
}

func TestTemplateApp_StartAndStop(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockTemplateService(ctrl)
	warmed := make(chan struct{})
	svc.EXPECT().GetTemplates(gomock.Any()).DoAndReturn(func(_ any, _ ...service.Option[service.GetTemplatesOptions]) ([]templates.Template, error) {
		close(warmed)
		return []templates.Template{}, nil
	})

	addr := freeAddress(t)
	app := createTestApp(t, svc, addr)

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	select {
	case <-warmed:
	case <-time.After(5 * time.Second):
		t.Fatal("template cache was not warmed")
	}

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, app.Stop(5*time.Second))

	select {
	case startErr := <-errChan:
		require.NoError(t, startErr)
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after Stop()")
	}

	// Stopping again is harmless
	require.NoError(t, app.Stop(time.Second))
}

func TestTemplateApp_WarmUpFailureKeepsServing(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockTemplateService(ctrl)
	svc.EXPECT().GetTemplates(gomock.Any()).Return(nil, errors.New("offline"))

	addr := freeAddress(t)
	app := createTestApp(t, svc, addr)

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	require.Eventually(t, func() bool {
		select {
		case <-app.warmed:
			return true
		default:
			return false
		}
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, app.Stop(5*time.Second))
	require.NoError(t, <-errChan)
}

func TestTemplateApp_StopWithoutStart(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app := createTestApp(t, mocks.NewMockTemplateService(ctrl), "127.0.0.1:0")

	start := time.Now()
	require.NoError(t, app.Stop(5*time.Second))
	assert.Less(t, time.Since(start), time.Second)
}

func TestTemplateApp_StartError_InvalidAddress(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockTemplateService(ctrl)
	svc.EXPECT().GetTemplates(gomock.Any()).Return([]templates.Template{}, nil).AnyTimes()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	app := createTestApp(t, svc, listener.Addr().String())
	err = app.Start()
	require.ErrorContains(t, err, "HTTP server failed")
	require.NoError(t, app.Stop(time.Second))
}

func TestTemplateApp_FileProviderChangeFoldsRepositories(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockTemplateService(ctrl)
	svc.EXPECT().GetTemplates(gomock.Any()).Return([]templates.Template{}, nil).AnyTimes()

	folded := make(chan struct{}, 10)
	svc.EXPECT().UpdateRepoListWithReposFromProviders(gomock.Any()).DoAndReturn(func(_ any) (int, error) {
		folded <- struct{}{}
		return 1, nil
	}).MinTimes(1)

	listPath := filepath.Join(t.TempDir(), "repos.yaml")
	require.NoError(t, os.WriteFile(listPath, []byte("[]\n"), 0600))
	watcher, err := providers.NewFileWatcher([]string{listPath}, 10*time.Millisecond)
	require.NoError(t, err)

	addr := freeAddress(t)
	app := createTestApp(t, svc, addr)
	app.components.Watcher = watcher

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	require.Eventually(t, func() bool {
		select {
		case <-app.warmed:
			return true
		default:
			return false
		}
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(listPath, []byte("- url: https://example.com/index.json\n"), 0600))
	select {
	case <-folded:
	case <-time.After(5 * time.Second):
		t.Fatal("file change did not fold provider repositories")
	}

	require.NoError(t, app.Stop(5*time.Second))
	require.NoError(t, <-errChan)
}
