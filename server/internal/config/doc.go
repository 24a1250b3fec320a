// Package config loads the server configuration from the `server:` section
// of config.yaml.
//
// Config fields:
//   - HTTPPort        : port for the HTTP API (default 5000)
//   - ServiceName     : name reported by GET /health
//   - LogLevel, Debug : slog level; Debug forces debug
//   - ShutdownTimeout : graceful shutdown bound (default 10s)
//   - CORS            : allowed origins ("*" by default)
//   - Auth            : "apikey" or "none"; key read from Auth.KeyEnv
//   - Dataset.Path    : labelled CSV served at /api/dataset
//   - Stream          : WebSocket analysis stream toggle and ping interval
//   - Alerts          : cooldown and webhook targets for spoilage alerts
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, onChange) reloads the file on change via fsnotify.
package config
