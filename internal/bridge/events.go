package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Run keeps the event stream attached until ctx is cancelled, dispatching
// every received event to the registered handlers. A dropped connection is
// retried after the configured reconnect delay.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.stream(ctx)
		if ctx.Err() != nil {
			return nil
		}
		c.log.Warn().Err(err).Dur("retry_in", c.reconnectDelay).Msg("event stream lost")

		t := time.NewTimer(c.reconnectDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

func (c *Client) eventsURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + c.eventsPath
	q := u.Query()
	q.Set("client_id", c.id)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) stream(ctx context.Context) error {
	target, err := c.eventsURL()
	if err != nil {
		return err
	}

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := c.dialer.DialContext(ctx, target, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	c.setConnected(true)
	defer c.setConnected(false)
	c.log.Debug().Str("url", target).Msg("event stream attached")

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		_ = conn.Close()
	})
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return errors.New("event stream closed by backend")
			}
			return err
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed event")
			continue
		}
		if ev.Name == "" {
			continue
		}
		n := c.Dispatch(ev)
		c.log.Debug().Str("event", ev.Name).Int("handlers", n).Msg("event received")
	}
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}
