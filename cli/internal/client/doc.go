// Package client is the Go client for the freshsense HTTP API, used by
// spoilctl. It covers /analyze, /api/simulate, /health, /sensors and
// /api/dataset, scrapes analysis counts from /metrics, and follows the
// /ws/stream WebSocket.
//
// The API key and device ID are injected by the shared authRoundTripper;
// callers configure them once through Options.
package client
