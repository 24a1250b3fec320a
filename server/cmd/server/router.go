package main

import (
	"context"
	"net/http"

	"github.com/freshsense/freshsense/server/internal/alerts"
	"github.com/freshsense/freshsense/server/internal/api"
	"github.com/freshsense/freshsense/server/internal/auth"
	"github.com/freshsense/freshsense/server/internal/config"
	"github.com/freshsense/freshsense/server/internal/metrics"
	"github.com/freshsense/freshsense/server/internal/ws"
)

// newRouter mounts /metrics, the optional /ws/stream hub and the analysis API.
// The hub's Run loop is started on ctx.
// /ws/stream shares the analysis routes' API key guard; /metrics is open.
func newRouter(ctx context.Context, cfg *config.Config, recorder *metrics.Recorder, alertEngine *alerts.Engine) http.Handler {
	guard := auth.APIKey(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)
	opts := api.Options{
		ServiceName:    cfg.Server.ServiceName,
		DatasetPath:    cfg.Server.Dataset.Path,
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		Auth:           guard,
		Metrics:        recorder,
		Alerts:         alertEngine,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())

	if cfg.Server.Stream.Enabled {
		hub := ws.New(cfg.Server.Stream.PingInterval, cfg.Server.CORS.AllowedOrigins)
		go hub.Run(ctx)
		opts.Stream = hub
		mux.Handle("/ws/stream", guard(hub))
	}

	mux.Handle("/", api.New(opts))
	return mux
}
