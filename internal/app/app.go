package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"contrib.go.opencensus.io/integrations/ocsql"

	"github.com/Notifuse/mailblocks/config"
	"github.com/Notifuse/mailblocks/internal/database"
	"github.com/Notifuse/mailblocks/internal/domain"
	httpHandler "github.com/Notifuse/mailblocks/internal/http"
	"github.com/Notifuse/mailblocks/internal/http/middleware"
	"github.com/Notifuse/mailblocks/internal/repository"
	"github.com/Notifuse/mailblocks/internal/service"
	"github.com/Notifuse/mailblocks/pkg/cache"
	"github.com/Notifuse/mailblocks/pkg/logger"
	"github.com/Notifuse/mailblocks/pkg/ratelimiter"
	"github.com/Notifuse/mailblocks/pkg/tracing"
)

type shutdownCtxKey struct{}

// AppInterface defines the interface for the App
type AppInterface interface {
	Initialize() error
	Start() error
	Shutdown(ctx context.Context) error

	// Getters for app components accessed in tests
	GetConfig() *config.Config
	GetLogger() logger.Logger
	GetMux() *http.ServeMux
	GetDB() *sql.DB
	GetTemplateRepository() domain.TemplateRepository
	GetTemplateService() domain.TemplateService

	// Server status methods
	IsServerCreated() bool
	WaitForServerStart(ctx context.Context) bool

	// Methods for initialization steps
	InitTracing() error
	InitStorage() error
	InitServices() error
	InitHandlers() error

	// Graceful shutdown methods
	SetShutdownTimeout(timeout time.Duration)
	GetActiveRequestCount() int64
	GetShutdownContext() context.Context
}

// App encapsulates the application dependencies and configuration
type App struct {
	config *config.Config
	logger logger.Logger
	db     *sql.DB
	bolt   *repository.BoltTemplateRepository
	// stopDBStats ends the ocsql stats recorder started with the database
	stopDBStats func()

	templateRepo    domain.TemplateRepository
	templateService domain.TemplateService
	renderCache     *cache.TTL[*domain.RenderResult]
	exportLimiter   *ratelimiter.Limiter

	// HTTP handlers
	mux    *http.ServeMux
	server *http.Server

	// Server synchronization
	serverMu      sync.RWMutex
	serverStarted chan struct{}

	// Graceful shutdown management
	shutdownCtx     context.Context
	shutdownCancel  context.CancelFunc
	activeRequests  int64          // atomic counter for active HTTP requests
	requestWg       sync.WaitGroup // wait group for active requests
	shutdownTimeout time.Duration
}

// AppOption defines a functional option for configuring the App
type AppOption func(*App)

// WithMockDB configures the app to use a mock database
func WithMockDB(db *sql.DB) AppOption {
	return func(a *App) {
		a.db = db
	}
}

// WithTemplateRepository bypasses storage initialization
func WithTemplateRepository(repo domain.TemplateRepository) AppOption {
	return func(a *App) {
		a.templateRepo = repo
	}
}

// WithLogger sets a custom logger
func WithLogger(logger logger.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, opts ...AppOption) AppInterface {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	app := &App{
		config:          cfg,
		logger:          logger.NewLoggerWithLevel(cfg.LogLevel),
		mux:             http.NewServeMux(),
		serverStarted:   make(chan struct{}),
		shutdownCtx:     shutdownCtx,
		shutdownCancel:  shutdownCancel,
		shutdownTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// InitTracing initializes OpenCensus tracing
func (a *App) InitTracing() error {
	tracingConfig := &a.config.Tracing

	if err := tracing.InitTracing(tracingConfig); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if tracingConfig.Enabled {
		if err := tracing.RegisterHTTPServerViews(); err != nil {
			return fmt.Errorf("failed to register http server views: %w", err)
		}
		if err := tracing.RegisterRenderViews(); err != nil {
			return fmt.Errorf("failed to register render views: %w", err)
		}

		a.logger.WithField("trace_exporter", tracingConfig.TraceExporter).
			WithField("metrics_exporter", tracingConfig.MetricsExporter).
			WithField("sampling_rate", tracingConfig.SamplingProbability).
			Info("Tracing initialized successfully")
	}

	return nil
}

// InitStorage opens the configured template store
func (a *App) InitStorage() error {
	if a.templateRepo != nil {
		return nil
	}

	switch a.config.Storage.Driver {
	case config.StorageDriverBolt:
		repo, err := repository.OpenBoltTemplateRepository(a.config.Storage.BoltPath)
		if err != nil {
			return fmt.Errorf("failed to open bolt storage: %w", err)
		}
		a.bolt = repo
		a.templateRepo = repo
		a.logger.WithField("path", a.config.Storage.BoltPath).Info("Using bolt template storage")
		return nil

	case config.StorageDriverPostgres:
		if a.db == nil {
			if err := a.initDB(); err != nil {
				return err
			}
		}
		if a.config.Tracing.Enabled && a.stopDBStats == nil {
			a.stopDBStats = ocsql.RecordStats(a.db, 5*time.Second)
		}
		a.templateRepo = repository.NewTemplateRepository(a.db)
		return nil

	default:
		return fmt.Errorf("unsupported storage driver %q", a.config.Storage.Driver)
	}
}

func (a *App) initDB() error {
	cfg := &a.config.Database

	password := cfg.Password
	maskedPassword := ""
	if len(password) > 0 {
		maskedPassword = fmt.Sprintf("%c...%c", password[0], password[len(password)-1])
	}
	a.logger.Info(fmt.Sprintf("Connecting to database %s:%d, user %s, sslmode %s, password: %s, dbname: %s",
		cfg.Host, cfg.Port, cfg.User, cfg.SSLMode, maskedPassword, cfg.DBName))

	driverName := "postgres"
	if a.config.Tracing.Enabled {
		var err error
		driverName, err = tracing.RegisterDBDriver(driverName)
		if err != nil {
			return err
		}
		a.logger.Info("Database driver wrapped with OpenCensus tracing")
	}

	db, err := database.Connect(driverName, cfg, a.config.Environment)
	if err != nil {
		a.logger.WithField("error", err.Error()).Error("Database connection failed")
		return err
	}

	a.db = db
	return nil
}

// InitServices initializes the template service
func (a *App) InitServices() error {
	if a.templateRepo == nil {
		return fmt.Errorf("storage must be initialized before services")
	}

	if a.config.Render.CacheTTL > 0 && a.renderCache == nil {
		a.renderCache = cache.New[*domain.RenderResult](a.config.Render.CacheTTL, a.config.Render.CacheSize)
		a.logger.WithFields(map[string]interface{}{
			"ttl":         a.config.Render.CacheTTL.String(),
			"max_entries": a.config.Render.CacheSize,
		}).Info("Render cache enabled")
	}

	a.templateService = service.NewTemplateService(service.TemplateServiceConfig{
		Repository:  a.templateRepo,
		Logger:      a.logger,
		Tracer:      tracing.GetTracer(),
		RenderCache: a.renderCache,
		Render: service.RenderSettings{
			GroupGap:     a.config.Render.GroupGap,
			ContentWidth: a.config.Render.ContentWidth,
			IconBaseURL:  a.config.Render.IconBaseURL,
			MergeData:    a.config.Render.MergeData,
		},
	})

	return nil
}

// InitHandlers registers the API routes on a fresh mux
func (a *App) InitHandlers() error {
	// Create a new ServeMux to avoid route conflicts on restart
	a.mux = http.NewServeMux()

	var handlerOpts []httpHandler.TemplateHandlerOption
	if a.config.Server.ExportRateLimit > 0 {
		if a.exportLimiter == nil {
			a.exportLimiter = ratelimiter.New(a.config.Server.ExportRateLimit, time.Minute)
		}
		handlerOpts = append(handlerOpts, httpHandler.WithRenderMiddleware(middleware.RateLimit(a.exportLimiter, a.config.Server.TrustProxy)))
	}

	templateHandler := httpHandler.NewTemplateHandler(a.templateService, a.logger, handlerOpts...)
	templateHandler.RegisterRoutes(a.mux)

	a.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return nil
}

// Handler returns the mux wrapped with the middleware chain
func (a *App) Handler() http.Handler {
	var handler http.Handler = a.mux

	handler = a.gracefulShutdownMiddleware(handler)

	if a.config.Tracing.Enabled {
		handler = middleware.Tracing(handler)
	}

	return middleware.CORS(a.config.Server.CORSAllowOrigin)(handler)
}

// Start starts the HTTP server
func (a *App) Start() error {
	handler := a.Handler()

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.logger.WithField("address", addr).
		WithField("storage", a.config.Storage.Driver).
		Info(fmt.Sprintf("Server starting on %s", addr))

	a.serverMu.Lock()
	a.server = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverStarted := a.serverStarted
	a.serverMu.Unlock()

	// Signal that the server has been created and is about to start
	close(serverStarted)

	err := a.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Starting graceful shutdown...")

	a.shutdownCancel()

	a.serverMu.RLock()
	server := a.server
	a.serverMu.RUnlock()

	if server == nil {
		a.logger.Info("No server to shutdown")
		return a.cleanupResources()
	}

	a.logger.WithField("active_requests", a.getActiveRequestCount()).Info("Active requests at shutdown start")

	shutdownTimeout := a.shutdownTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < shutdownTimeout {
			shutdownTimeout = remaining
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := server.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		a.logger.WithField("error", shutdownErr.Error()).Warn("HTTP server shutdown did not complete")
	} else {
		a.logger.Info("HTTP server shutdown completed")
	}

	requestsDone := make(chan struct{})
	go func() {
		a.requestWg.Wait()
		close(requestsDone)
	}()

	select {
	case <-requestsDone:
	case <-shutdownCtx.Done():
		a.logger.WithField("active_requests", a.getActiveRequestCount()).Warn("Some requests still active, proceeding with shutdown")
	}

	if err := a.cleanupResources(); err != nil {
		a.logger.WithField("error", err.Error()).Error("Error during resource cleanup")
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	if shutdownErr != nil {
		a.logger.WithField("error", shutdownErr.Error()).Error("Graceful shutdown completed with errors")
	} else {
		a.logger.Info("Graceful shutdown completed successfully")
	}

	return shutdownErr
}

// cleanupResources closes the database or the bolt file
func (a *App) cleanupResources() error {
	a.logger.Info("Cleaning up resources...")

	if a.exportLimiter != nil {
		a.exportLimiter.Stop()
	}
	if a.renderCache != nil {
		a.renderCache.Stop()
	}

	if a.bolt != nil {
		a.logger.Info("Closing bolt storage")
		if err := a.bolt.Close(); err != nil {
			return fmt.Errorf("failed to close bolt storage: %w", err)
		}
	}

	if a.db != nil {
		if a.stopDBStats != nil {
			a.stopDBStats()
			a.stopDBStats = nil
		}

		a.logger.Info("Closing database connection")
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	a.logger.Info("Resource cleanup completed")
	return nil
}

// IsServerCreated safely checks if the server has been created
func (a *App) IsServerCreated() bool {
	a.serverMu.RLock()
	defer a.serverMu.RUnlock()
	return a.server != nil
}

// WaitForServerStart waits for the server to be created.
// Returns false if the context expired first.
func (a *App) WaitForServerStart(ctx context.Context) bool {
	a.serverMu.RLock()
	started := a.serverStarted
	a.serverMu.RUnlock()

	select {
	case <-started:
		return a.IsServerCreated()
	case <-ctx.Done():
		return false
	}
}

// Initialize sets up all components of the application
func (a *App) Initialize() error {
	a.logger.WithField("version", a.config.Version).Info("Starting mailblocks application")

	if err := a.InitTracing(); err != nil {
		return err
	}

	if err := a.InitStorage(); err != nil {
		return err
	}

	if err := a.InitServices(); err != nil {
		return err
	}

	if err := a.InitHandlers(); err != nil {
		return err
	}

	a.logger.Info("Application successfully initialized")
	return nil
}

// GetConfig returns the app's configuration
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetLogger returns the app's logger
func (a *App) GetLogger() logger.Logger {
	return a.logger
}

// GetMux returns the app's HTTP multiplexer
func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

// GetDB returns the app's database connection, nil with bolt storage
func (a *App) GetDB() *sql.DB {
	return a.db
}

func (a *App) GetTemplateRepository() domain.TemplateRepository {
	return a.templateRepo
}

func (a *App) GetTemplateService() domain.TemplateService {
	return a.templateService
}

func (a *App) getActiveRequestCount() int64 {
	return atomic.LoadInt64(&a.activeRequests)
}

// GetActiveRequestCount returns the current number of active requests
func (a *App) GetActiveRequestCount() int64 {
	return a.getActiveRequestCount()
}

// SetShutdownTimeout sets the timeout for graceful shutdown
func (a *App) SetShutdownTimeout(timeout time.Duration) {
	a.shutdownTimeout = timeout
}

// GetShutdownContext returns the context cancelled when shutdown starts
func (a *App) GetShutdownContext() context.Context {
	return a.shutdownCtx
}

func (a *App) isShuttingDown() bool {
	select {
	case <-a.shutdownCtx.Done():
		return true
	default:
		return false
	}
}

// gracefulShutdownMiddleware tracks active requests and refuses new ones once shutdown starts
func (a *App) gracefulShutdownMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.isShuttingDown() {
			httpHandler.WriteJSONError(w, "Server is shutting down", http.StatusServiceUnavailable)
			return
		}

		atomic.AddInt64(&a.activeRequests, 1)
		a.requestWg.Add(1)
		defer func() {
			atomic.AddInt64(&a.activeRequests, -1)
			a.requestWg.Done()
		}()

		ctx := context.WithValue(r.Context(), shutdownCtxKey{}, a.shutdownCtx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Ensure App implements AppInterface
var _ AppInterface = (*App)(nil)
