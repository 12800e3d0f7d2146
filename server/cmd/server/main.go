package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sentryrelay/sentryrelay/server/internal/api"
	"github.com/sentryrelay/sentryrelay/server/internal/config"
	"github.com/sentryrelay/sentryrelay/server/internal/dispatch"
	"github.com/sentryrelay/sentryrelay/server/internal/metrics"
	"github.com/sentryrelay/sentryrelay/server/internal/telemetry"
	"github.com/sentryrelay/sentryrelay/server/internal/transform"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("sentry-relay starting", "config", *configPath, "version", version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level.Set(cfg.Level())

	target, err := transform.ParseTarget(cfg.Destination.EffectiveFormat())
	if err != nil {
		slog.Error("invalid destination format", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"destination", cfg.Destination.Name,
		"target", target.String(),
		"allowed_environments", cfg.Filter.AllowedEnvironments,
		"delivery_timeout", cfg.Destination.Timeout,
	)

	if err := telemetry.Init(telemetry.Options{
		DSN:                cfg.Telemetry.DSN,
		Environment:        cfg.Telemetry.Environment,
		Release:            "sentry-relay@" + version,
		TracesSampleRate:   cfg.Telemetry.TracesSampleRate,
		ProfilesSampleRate: cfg.Telemetry.ProfilesSampleRate,
	}); err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		os.Exit(1)
	}
	defer telemetry.Flush(2 * time.Second)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(_ *config.Config, err error) {
				if err != nil {
					slog.Warn("config file changed and is now invalid; running config unchanged", "err", err)
					return
				}
				slog.Warn("config file changed; restart to apply", "path", *configPath)
			})
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	tr := transform.New(cfg.Filter.AllowedEnvironments, target, cfg.Destination.DialogID)
	disp := dispatch.New(cfg.Destination.Name, cfg.Destination.URL, cfg.Destination.Timeout)
	reg := metrics.New()

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      telemetry.Middleware(api.New(tr, disp, reg)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("sentry-relay shutting down")

	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer done()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}
