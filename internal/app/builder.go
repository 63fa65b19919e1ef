package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/template-registry-server/internal/api"
	"github.com/stacklok/template-registry-server/internal/config"
	"github.com/stacklok/template-registry-server/internal/git"
	"github.com/stacklok/template-registry-server/internal/httpclient"
	"github.com/stacklok/template-registry-server/internal/manifest"
	"github.com/stacklok/template-registry-server/internal/providers"
	"github.com/stacklok/template-registry-server/internal/repository"
	"github.com/stacklok/template-registry-server/internal/service"
	"github.com/stacklok/template-registry-server/internal/service/controller"
	"github.com/stacklok/template-registry-server/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// TemplateAppOptions is a function that configures the template app builder
type TemplateAppOptions func(*templateAppConfig) error

// templateAppConfig supports dependency injection for testing while
// providing sensible defaults for production
type templateAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	storage         repository.Storage
	fetcher         manifest.Fetcher
	providerFactory providers.Factory

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	// Telemetry components
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	metricsHandler http.Handler
}

func baseConfig(opts ...TemplateAppOptions) (*templateAppConfig, error) {
	cfg := &templateAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// NewTemplateApp creates a new TemplateApp with the given options
func NewTemplateApp(
	ctx context.Context,
	opts ...TemplateAppOptions,
) (*TemplateApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	components, err := buildServiceComponents(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build service components: %w", err)
	}

	httpServer, err := buildHTTPServer(ctx, cfg, components.TemplateService)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)

	return &TemplateApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancel,
		warmed:     make(chan struct{}),
		watchDone:  make(chan struct{}),
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) TemplateAppOptions {
	return func(cfg *templateAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) TemplateAppOptions {
	return func(cfg *templateAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) TemplateAppOptions {
	return func(cfg *templateAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithStorage allows injecting the repository list storage (for testing)
func WithStorage(s repository.Storage) TemplateAppOptions {
	return func(cfg *templateAppConfig) error {
		cfg.storage = s
		return nil
	}
}

// WithFetcher allows injecting the manifest fetcher (for testing)
func WithFetcher(f manifest.Fetcher) TemplateAppOptions {
	return func(cfg *templateAppConfig) error {
		cfg.fetcher = f
		return nil
	}
}

// WithProviderFactory allows injecting the provider factory (for testing)
func WithProviderFactory(f providers.Factory) TemplateAppOptions {
	return func(cfg *templateAppConfig) error {
		cfg.providerFactory = f
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider
func WithTracerProvider(tp trace.TracerProvider) TemplateAppOptions {
	return func(cfg *templateAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for template metrics
func WithMeterProvider(mp metric.MeterProvider) TemplateAppOptions {
	return func(cfg *templateAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithMetricsHandler serves Prometheus metrics on /metrics
func WithMetricsHandler(h http.Handler) TemplateAppOptions {
	return func(cfg *templateAppConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

// buildServiceComponents builds the repository store, providers and template service
func buildServiceComponents(
	_ context.Context,
	b *templateAppConfig,
) (*AppComponents, error) {
	slog.Info("Initializing service components")

	if b.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	var tracer trace.Tracer
	if b.tracerProvider != nil {
		tracer = b.tracerProvider.Tracer(telemetry.TracerName)
	}

	metrics, err := telemetry.NewMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create template metrics: %w", err)
	}
	if metrics != nil {
		slog.Info("Template metrics enabled")
	}

	httpClient := httpclient.NewDefaultClient(b.config.GetFetchTimeout())

	if b.storage == nil {
		fileStorage := repository.NewFileStorage(b.config.GetRepositoryFilePath())
		slog.Info("Using repository list file", "path", fileStorage.Path())
		b.storage = fileStorage
	}
	seed := repository.DefaultRepositories
	if !b.config.ShouldSeedDefaults() {
		seed = nil
	}
	store := repository.NewStore(b.storage, repository.WithSeed(seed))

	if b.fetcher == nil {
		b.fetcher = manifest.NewFetcher(
			manifest.WithHTTPClient(httpClient),
			manifest.WithTracer(tracer),
			manifest.WithMetrics(metrics),
		)
	}

	if b.providerFactory == nil {
		b.providerFactory = providers.NewFactory(git.NewDefaultClient(), httpClient)
	}
	registry := providers.NewRegistry()
	if err := providers.RegisterAll(registry, b.providerFactory, b.config.Providers); err != nil {
		return nil, fmt.Errorf("failed to register providers: %w", err)
	}

	svc, err := controller.New(store, b.fetcher,
		controller.WithRegistry(registry),
		controller.WithMaxConcurrency(b.config.GetMaxConcurrency()),
		controller.WithTracer(tracer),
		controller.WithMetrics(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create template service: %w", err)
	}

	slog.Info("Service components initialized successfully", "providers", registry.Names())
	return &AppComponents{
		TemplateService: svc,
		Store:           store,
		Watcher:         buildFileWatcher(b.config.Providers),
	}, nil
}

// buildFileWatcher watches the lists of file providers. Failing to watch is
// not fatal: the lists are still read on every template refresh.
func buildFileWatcher(cfgs []config.ProviderConfig) *providers.FileWatcher {
	var paths []string
	for _, p := range cfgs {
		if p.File != nil {
			paths = append(paths, p.File.Path)
		}
	}
	if len(paths) == 0 {
		return nil
	}

	watcher, err := providers.NewFileWatcher(paths, providers.DefaultWatchDebounce)
	if err != nil {
		slog.Warn("Not watching file provider lists", "error", err)
		return nil
	}
	slog.Info("Watching file provider lists", "files", paths)
	return watcher
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *templateAppConfig,
	svc service.TemplateService,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Tracing goes first so every request gets a server span
	if b.tracerProvider != nil {
		b.middlewares = append([]func(http.Handler) http.Handler{telemetry.TracingMiddleware(b.tracerProvider)}, b.middlewares...)
		slog.Info("HTTP tracing middleware enabled")
	}

	router := api.NewServer(svc,
		api.WithMiddlewares(b.middlewares...),
		api.WithMetricsHandler(b.metricsHandler),
	)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
