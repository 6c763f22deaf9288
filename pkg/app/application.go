package app

import (
	"context"
	"gatepass/pkg/config"
	"gatepass/pkg/contracts"
	"gatepass/pkg/metrics"
	"gatepass/pkg/middleware"
	"gatepass/pkg/sanitizer"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"
)

type Application struct {
	cfg              *config.Config
	server           *http.Server
	metrics          *metrics.Metrics
	idempotencyStore middleware.IdempotencyStore
	rateLimiter      *middleware.PhoneRateLimiter
	rateLimitPaths   []string
	noReplayPaths    []string
	opsHandler       http.Handler
	appHttpHandler   http.Handler
	onShutdown       []func() error
}

func NewApplication(cfg *config.Config, m *metrics.Metrics) *Application {
	return &Application{
		cfg:     cfg,
		metrics: m,
	}
}

// LimitPhonePaths puts the per-phone limiter in front of the given paths.
func (a *Application) LimitPhonePaths(paths ...string) {
	a.rateLimitPaths = append(a.rateLimitPaths, paths...)
}

// SkipIdempotency keeps responses for the given paths out of the replay cache.
// Routes that issue credentials belong here.
func (a *Application) SkipIdempotency(paths ...string) {
	a.noReplayPaths = append(a.noReplayPaths, paths...)
}

// OnShutdown registers a cleanup that runs after the server has drained.
func (a *Application) OnShutdown(fn func() error) {
	a.onShutdown = append(a.onShutdown, fn)
}

func (a *Application) SetApp(ops contracts.Handler, handlers ...contracts.Handler) {
	a.setOpsHandler(ops)
	a.setAppHandler(handlers)
	a.setAppServer()
}

// Handler returns the fully wired root handler.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setOpsHandler(ops contracts.Handler) {
	opsRouter := httprouter.New()
	ops.RegisterRoutes(opsRouter)
	opsRouter.Handler(http.MethodGet, "/metrics", metrics.Handler())

	var opsHTTPHandler http.Handler = opsRouter
	opsHTTPHandler = middleware.RequestLogging(a.cfg.Log)(opsHTTPHandler)
	opsHTTPHandler = middleware.Recovery(a.cfg.Log)(opsHTTPHandler)
	a.opsHandler = opsHTTPHandler
	a.cfg.Log.Info("Health and metrics endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(handlers []contracts.Handler) {
	appRouter := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(appRouter)
	}

	if a.cfg.Client != nil && a.cfg.Client.Redis != nil {
		a.idempotencyStore = middleware.NewRedisIdempotencyStore(a.cfg.Client.Redis, a.cfg.IdempotencyTTL, a.cfg.Log)
		a.cfg.Log.Info("Idempotency keys stored in Redis")
	} else {
		a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	}

	phones := sanitizer.NewPhoneNormalizer(a.cfg.PhoneRegions)
	a.rateLimiter = middleware.NewPhoneRateLimiter(
		a.cfg.OTPRateLimitRequests,
		a.cfg.OTPRateLimitWindow,
		middleware.BodyPhoneExtractor(phones.Normalize),
		a.cfg.Log,
	)

	var appHttpHandler http.Handler = appRouter
	appHttpHandler = middleware.Idempotency(a.idempotencyStore, middleware.DefaultIdempotencyHeader, a.cfg.Log, a.noReplayPaths...)(appHttpHandler)
	appHttpHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHttpHandler)
	appHttpHandler = middleware.ForPaths(a.rateLimitPaths, middleware.PhoneRateLimit(a.rateLimiter))(appHttpHandler)
	appHttpHandler = middleware.ContentTypeValidation(a.cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(appHttpHandler)
	appHttpHandler = middleware.CORS(a.cfg.CORSOrigins)(appHttpHandler)
	appHttpHandler = middleware.HTTPMetrics(a.metrics, middleware.RouteLabel(appRouter))(appHttpHandler)
	appHttpHandler = middleware.RequestLogging(a.cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.Recovery(a.cfg.Log)(appHttpHandler)
	a.appHttpHandler = appHttpHandler
	a.cfg.Log.Info("Application endpoints configured with full middleware stack",
		"phone_rate_limited_paths", a.rateLimitPaths,
		"idempotency_skipped_paths", a.noReplayPaths,
	)
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.opsHandler)
	mux.Handle("/ready", a.opsHandler)
	mux.Handle("/metrics", a.opsHandler)
	mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	for _, fn := range a.onShutdown {
		if err := fn(); err != nil {
			a.cfg.Log.Error("Shutdown hook failed", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
