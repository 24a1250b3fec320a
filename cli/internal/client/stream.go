package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/freshsense/freshsense/pkg/types"
)

// Stream connects to /ws/stream and calls fn for every event until ctx is
// cancelled or the server closes the connection. Cancellation returns nil.
func (c *Client) Stream(ctx context.Context, fn func(types.StreamEvent)) error {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = u.Path + "/ws/stream"

	hdr := http.Header{}
	if c.opts.APIKey != "" {
		hdr.Set(c.opts.Header, c.opts.APIKey)
	}
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.opts.Timeout,
	}
	if tr, ok := c.http.Transport.(*authRoundTripper); ok {
		if base, ok := tr.base.(*http.Transport); ok {
			dialer.TLSClientConfig = base.TLSClientConfig
		}
	}

	conn, resp, err := dialer.DialContext(ctx, u.String(), hdr)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("client: dial %s: %w (status %d)", u.String(), err, resp.StatusCode)
		}
		return fmt.Errorf("client: dial %s: %w", u.String(), err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("client: read stream: %w", err)
		}
		var ev types.StreamEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			return fmt.Errorf("client: decode stream event: %w", err)
		}
		fn(ev)
	}
}
