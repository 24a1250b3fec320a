package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/freshsense/freshsense/server/internal/alerts"
	"github.com/freshsense/freshsense/server/internal/config"
	"github.com/freshsense/freshsense/server/internal/metrics"
)

func TestRouter_AuthCoverage(t *testing.T) {
	t.Setenv("TEST_FRESHSENSE_KEY", "s3cret")
	cfg := config.Default()
	cfg.Server.Auth = config.AuthConfig{Mode: "apikey", KeyEnv: "TEST_FRESHSENSE_KEY"}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := newRouter(ctx, cfg, metrics.New(), alerts.New(cfg.Server.Alerts))

	tests := []struct {
		name   string
		method string
		path   string
		key    string
		want   int
	}{
		{"stream without key", http.MethodGet, "/ws/stream", "", http.StatusUnauthorized},
		{"stream wrong key", http.MethodGet, "/ws/stream", "nope", http.StatusUnauthorized},
		// A valid key reaches the hub, which rejects a non-upgrade request.
		{"stream with key", http.MethodGet, "/ws/stream", "s3cret", http.StatusBadRequest},
		{"analyze without key", http.MethodPost, "/analyze", "", http.StatusUnauthorized},
		{"metrics open", http.MethodGet, "/metrics", "", http.StatusOK},
		{"health open", http.MethodGet, "/health", "", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(""))
			if tc.key != "" {
				req.Header.Set(config.DefaultAuthHeader, tc.key)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Errorf("status: got %d, want %d (body=%s)", rr.Code, tc.want, rr.Body.String())
			}
		})
	}
}

func TestRouter_StreamDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Stream.Enabled = false

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := newRouter(ctx, cfg, metrics.New(), alerts.New(cfg.Server.Alerts))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ws/stream", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}
