package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/haggle/internal/adapters/http/api"
	"github.com/okian/haggle/internal/adapters/http/swagger"
	"github.com/okian/haggle/internal/adapters/llm"
	"github.com/okian/haggle/internal/adapters/repository"
	app "github.com/okian/haggle/internal/app"
	"github.com/okian/haggle/internal/config"
	"github.com/okian/haggle/internal/domain/engine"
	"github.com/okian/haggle/pkg/logger"
	"github.com/okian/haggle/pkg/metrics"
)

// HTTP server timeout constants. Write timeout leaves room for one full
// collaborator round trip.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 45 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Disable default Go metrics collection; the custom system metrics
	// updater covers what the dashboard needs.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Optional .env file, matching how deployments ship credentials.
	_ = godotenv.Load()

	if err := logger.Init(nil); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Fail fast on missing or placeholder collaborator credentials.
	if err := cfg.ValidateAPIKey(); err != nil {
		os.Stderr.WriteString(err.Error() + "; set HAGGLE_OPENROUTER_API_KEY or add it to .env\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opponent := llm.NewOpenRouterClient(cfg.OpenRouterAPIKey,
		llm.WithBaseURL(cfg.OpenRouterBaseURL),
		llm.WithModel(cfg.OpponentModel),
		llm.WithTimeout(time.Duration(cfg.OpponentTimeoutMS)*time.Millisecond),
		llm.WithMaxTokens(cfg.OpponentMaxTokens),
		llm.WithTemperature(cfg.OpponentTemperature),
	)

	svc := app.New(
		app.WithLogger(log),
		app.WithStore(repository.NewMemStore()),
		app.WithOpponent(opponent),
		app.WithAlternation(engine.Alternation(cfg.Alternation)),
		app.WithPageSize(cfg.LeaderboardPageSize),
		app.WithMaxPlayerName(cfg.MaxPlayerNameLen),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("model", cfg.OpponentModel),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater periodically refreshes system-level gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
