// Package api implements the HTTP API of freshsense-server.
//
// New(opts) returns an http.Handler that serves:
//
//	POST /analyze       classify one reading set, returns the Result
//	POST /api/simulate  same as /analyze, legacy web backend route
//	GET  /health        service name and the threshold table
//	GET  /sensors       sensor catalogue in canonical gas order
//	GET  /api/dataset   labelled samples from the configured CSV file
//
// Request bodies for the analysis routes are JSON objects with numeric NH3,
// H2S, TMA and DMS fields; extra fields are ignored. An empty or falsy body
// yields 400 "No data provided", a missing gas yields 400 "Missing <GAS>
// reading", and anything else that fails to decode yields 500.
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for the wrong method
//   - Echo or assign an X-Request-ID and log one http_request line
//
// The analysis and dataset routes are wrapped by Options.Auth when set.
// /metrics and /ws/stream are mounted next to this handler by the server.
package api
