// Command streampayd runs the Streampay ledger behind an HTTP API.
//
// Configuration comes from the environment:
//
//	STREAMPAY_ADDR          listen address (default ":8080")
//	STREAMPAY_STORE         memory | sqlite | postgres | mongo (default "memory")
//	STREAMPAY_SQLITE_PATH   sqlite database path (default "streampay.db")
//	STREAMPAY_POSTGRES_DSN  postgres connection string
//	STREAMPAY_MONGO_URI     mongodb connection string
//	STREAMPAY_MONGO_DB      mongodb database name (default "streampay")
//	STREAMPAY_LOG_LEVEL     debug | info | warn | error (default "info")
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xraph/streampay"
	"github.com/xraph/streampay/audithook"
	"github.com/xraph/streampay/httpapi"
	"github.com/xraph/streampay/observability"
	"github.com/xraph/streampay/store"
	"github.com/xraph/streampay/store/memory"
	"github.com/xraph/streampay/store/mongo"
	"github.com/xraph/streampay/store/postgres"
	"github.com/xraph/streampay/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("streampayd exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	logger := newLogger(envOr("STREAMPAY_LOG_LEVEL", "info"))
	slog.SetDefault(logger)

	st, err := openStore()
	if err != nil {
		return err
	}

	metrics := observability.NewMetricsExtension(
		observability.NewPrometheusFactory(prometheus.DefaultRegisterer))

	audit := audithook.New(slogRecorder(logger), audithook.WithLogger(logger))

	ledger := streampay.New(st,
		streampay.WithLogger(logger),
		streampay.WithPlugin(metrics),
		streampay.WithPlugin(audit),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ledger.Start(ctx); err != nil {
		return fmt.Errorf("start ledger: %w", err)
	}

	root := http.NewServeMux()
	root.Handle("/metrics", promhttp.Handler())
	root.Handle("/", httpapi.New(ledger, httpapi.WithLogger(logger)))

	addr := envOr("STREAMPAY_ADDR", ":8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	return ledger.Stop()
}

func openStore() (store.Store, error) {
	switch kind := envOr("STREAMPAY_STORE", "memory"); kind {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.Open(envOr("STREAMPAY_SQLITE_PATH", "streampay.db"))
	case "postgres":
		dsn := os.Getenv("STREAMPAY_POSTGRES_DSN")
		if dsn == "" {
			return nil, errors.New("STREAMPAY_POSTGRES_DSN is required for the postgres store")
		}
		return postgres.Open(dsn)
	case "mongo":
		uri := os.Getenv("STREAMPAY_MONGO_URI")
		if uri == "" {
			return nil, errors.New("STREAMPAY_MONGO_URI is required for the mongo store")
		}
		return mongo.Open(uri, envOr("STREAMPAY_MONGO_DB", "streampay"))
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}

// slogRecorder logs audit events instead of shipping them to an external
// backend. Deployments with a real audit system swap in their own Recorder.
func slogRecorder(logger *slog.Logger) audithook.RecorderFunc {
	return func(_ context.Context, event *audithook.AuditEvent) error {
		meta, err := json.Marshal(event.Metadata)
		if err != nil {
			meta = []byte("{}")
		}
		logger.Info("audit",
			"id", event.ID,
			"action", event.Action,
			"resource", event.Resource,
			"resource_id", event.ResourceID,
			"outcome", event.Outcome,
			"severity", event.Severity,
			"metadata", string(meta),
		)
		return nil
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
