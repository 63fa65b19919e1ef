// Package app provides application lifecycle management for the template registry server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/stacklok/template-registry-server/internal/config"
)

// TemplateApp encapsulates all components needed to run the template registry server
// It provides lifecycle management and graceful shutdown capabilities
type TemplateApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
	started    atomic.Bool
	warmed     chan struct{}
	watchDone  chan struct{}
}

// Start warms the template cache in the background and serves HTTP.
// This method blocks until the HTTP server stops or encounters an error
func (app *TemplateApp) Start() error {
	if app.started.CompareAndSwap(false, true) {
		go app.warmUp()
		go app.watchProviderFiles()
	}

	slog.Info("Server listening", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// warmUp folds in provider repositories and fills the template cache so the
// first request does not pay for every manifest download.
func (app *TemplateApp) warmUp() {
	defer close(app.warmed)

	templates, err := app.components.TemplateService.GetTemplates(app.ctx)
	if err != nil {
		slog.WarnContext(app.ctx, "Failed to load templates at startup", "error", err)
		return
	}
	slog.InfoContext(app.ctx, "Loaded templates", "count", len(templates))
}

// watchProviderFiles folds in repositories as soon as a file provider list changes
func (app *TemplateApp) watchProviderFiles() {
	defer close(app.watchDone)

	watcher := app.components.Watcher
	if watcher == nil {
		return
	}
	watcher.Run(app.ctx, func(ctx context.Context) {
		added, err := app.components.TemplateService.UpdateRepoListWithReposFromProviders(ctx)
		if err != nil {
			slog.WarnContext(ctx, "Failed to add repositories from providers", "error", err)
			return
		}
		slog.InfoContext(ctx, "Repository list file changed", "added", added)
	})
}

// Stop gracefully stops the application with the given timeout
// It cancels background work and then shuts down the HTTP server
func (app *TemplateApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if app.started.Load() {
		for _, done := range []chan struct{}{app.warmed, app.watchDone} {
			select {
			case <-done:
			case <-shutdownCtx.Done():
			}
		}
	}
	if app.components.Watcher != nil {
		if err := app.components.Watcher.Close(); err != nil {
			slog.Warn("Failed to close file watcher", "error", err)
		}
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *TemplateApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *TemplateApp) GetHTTPServer() *http.Server {
	return app.httpServer
}
