package qaservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/answerhub/qa-service/internal/api"
	"github.com/answerhub/qa-service/internal/config"
	"github.com/answerhub/qa-service/internal/health"
	"github.com/answerhub/qa-service/internal/logger"
	"github.com/answerhub/qa-service/internal/mirror"
	"github.com/answerhub/qa-service/internal/responses"
	"github.com/answerhub/qa-service/internal/services"
	"github.com/answerhub/qa-service/internal/store"
	"github.com/answerhub/qa-service/internal/store/postgres"
	"github.com/answerhub/qa-service/internal/store/sqlite"
)

// Run starts the Q&A service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("qa-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("data_dir", cfg.DataDir).
		Bool("mirror_async", cfg.MirrorAsync).
		Msg("Q&A service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	// Initialize dependencies (primary store, mirror, answer pool)
	st, mir, err := initDependencies(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	answers := responses.NewFileProvider(cfg.ResponsesPath, log)

	svc := services.New(st, mir, answers, log, cfg.MirrorQueueSize)
	if cfg.MirrorAsync {
		svc.Start(ctx)
	}

	router := api.NewRouter(svc)

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, cfg, log, st, mir)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	// HTTP server and serve
	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs the primary store and mirror; fail fast on either.
func initDependencies(cfg *config.Config, log zerolog.Logger) (store.Store, *mirror.Mirror, error) {
	st, err := newStore(cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Primary store unavailable")
		return nil, nil, err
	}

	mir, err := mirror.New(cfg.DataDir, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Mirror directory unavailable")
		return nil, nil, err
	}
	return st, mir, nil
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return sqlite.New(cfg.SQLitePath)
	case "postgres":
		return postgres.Open(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported DB driver: %s", cfg.DBDriver)
	}
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, mir *mirror.Mirror) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	mirrorChecker := mirror.NewHealthChecker(mir, log)
	go mirrorChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker, mirrorChecker)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	// Health checkers start as unhealthy and need time to run their first probe
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
