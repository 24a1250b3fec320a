package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/freshsense/freshsense/server/internal/alerts"
	"github.com/freshsense/freshsense/server/internal/config"
	"github.com/freshsense/freshsense/server/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to config file; leave empty for built-in defaults")
	envFile := flag.String("env-file", "", "load environment variables (API key, webhook URLs) from this .env file first")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			slog.Error("failed to load env file", "path", *envFile, "err", err)
			os.Exit(1)
		}
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
	}
	level.Set(cfg.Server.Level())

	slog.Info("freshsense-server starting",
		"config", *configPath,
		"http_port", cfg.Server.HTTPPort,
		"log_level", level.Level().String(),
		"auth_mode", cfg.Server.Auth.Mode,
		"dataset", cfg.Server.Dataset.Path,
		"stream", cfg.Server.Stream.Enabled,
		"webhooks", len(cfg.Server.Alerts.Webhooks),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorder := metrics.New()
	alertEngine := alerts.New(cfg.Server.Alerts)

	httpMux := newRouter(ctx, cfg, recorder, alertEngine)

	// Hot reload: log level and alert webhooks apply without a restart.
	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(next *config.Config) {
				level.Set(next.Server.Level())
				alertEngine.SetWebhooks(next.Server.Alerts.Webhooks)
				slog.Info("config reloaded",
					"log_level", level.Level().String(),
					"webhooks", len(next.Server.Alerts.Webhooks),
				)
			})
			if err != nil {
				slog.Warn("config watch stopped", "err", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           httpMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("freshsense-server shutting down", "timeout", cfg.Server.ShutdownTimeout)

	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer done()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown", "err", err)
	}
	alertEngine.Wait()
}
