// Package ws implements the live analysis stream for freshsense-server.
//
// Hub keeps the set of connected WebSocket clients and fans out every
// successful analysis to them as it happens. Nothing is buffered for clients
// that connect later.
//
// New(pingPeriod, allowedOrigins) creates a Hub.
// Hub.Run(ctx) blocks until ctx is cancelled, then closes all connections.
// Hub.Publish(analysis) broadcasts one event.
// Hub.ServeHTTP upgrades an HTTP connection and streams events until it closes.
//
// Message format sent to clients:
//
//	{
//	  "event": "analysis",
//	  "data":  {"device_id": "...", "readings": {...}, "result": {...},
//	            "analyzed_at": "RFC3339"}
//	}
//
// The endpoint is mounted at /ws/stream by the server.
package ws
