package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	defaultEventsPath     = "/events"
	defaultReconnectDelay = 5 * time.Second
)

// RemoteError is returned when the backend answers a command with a non-2xx
// status.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("backend error (%d): %s", e.StatusCode, e.Message)
}

// Options configures a Client.
type Options struct {
	BaseURL        string
	Token          string
	EventsPath     string
	ReconnectDelay time.Duration
	HTTPClient     *http.Client
	Dialer         *websocket.Dialer
	Logger         zerolog.Logger
}

// Client talks to the backend over HTTP for commands and a websocket for
// events. Commands carry no client-side timeout; callers bound them with
// their context when they need to.
type Client struct {
	baseURL        string
	token          string
	eventsPath     string
	reconnectDelay time.Duration
	http           *http.Client
	dialer         *websocket.Dialer
	log            zerolog.Logger
	id             string

	*Registry

	mu        sync.Mutex
	connected bool
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	eventsPath := opts.EventsPath
	if eventsPath == "" {
		eventsPath = defaultEventsPath
	}
	delay := opts.ReconnectDelay
	if delay <= 0 {
		delay = defaultReconnectDelay
	}
	id := uuid.NewString()
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		token:          opts.Token,
		eventsPath:     eventsPath,
		reconnectDelay: delay,
		http:           httpClient,
		dialer:         dialer,
		log:            opts.Logger.With().Str("component", "bridge").Str("client_id", id).Logger(),
		id:             id,
		Registry:       NewRegistry(),
	}
}

// ID identifies this client to the backend for the lifetime of the process.
func (c *Client) ID() string { return c.id }

// Connected reports whether the event stream is currently attached.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Invoke implements Invoker by POSTing args to /invoke/{command}.
func (c *Client) Invoke(ctx context.Context, command string, args any, out any) error {
	if args == nil {
		args = struct{}{}
	}
	buf, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode %s args: %w", command, err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/invoke/"+url.PathEscape(command),
		bytes.NewReader(buf),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", c.id)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeRemoteError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("decode %s result: empty body", command)
		}
		return fmt.Errorf("decode %s result: %w", command, err)
	}
	return nil
}

func decodeRemoteError(resp *http.Response) error {
	type errorPayload struct {
		Error string `json:"error"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error != "" {
		return &RemoteError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &RemoteError{StatusCode: resp.StatusCode, Message: resp.Status}
}

// AsRemoteError extracts a *RemoteError from err's chain.
func AsRemoteError(err error) *RemoteError {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr
	}
	return nil
}
