package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func newTestClient(url string) *Client {
	return NewClient(Options{
		BaseURL:        url,
		Token:          "secret",
		ReconnectDelay: 10 * time.Millisecond,
		Logger:         zerolog.Nop(),
	})
}

func TestInvokePostsArgsAndDecodesResult(t *testing.T) {
	var gotPath, gotAuth, gotClient string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotClient = r.Header.Get("X-Client-ID")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"id":7,"content":"hello"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	var out struct {
		ID      int64  `json:"id"`
		Content string `json:"content"`
	}
	if err := c.Invoke(context.Background(), "get_note", map[string]any{"id": 7}, &out); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	if gotPath != "/invoke/get_note" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotClient != c.ID() {
		t.Fatalf("expected client id header %q, got %q", c.ID(), gotClient)
	}
	if gotBody["id"] != float64(7) {
		t.Fatalf("unexpected body %#v", gotBody)
	}
	if out.ID != 7 || out.Content != "hello" {
		t.Fatalf("unexpected result %+v", out)
	}
}

func TestInvokeReturnsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"note not found"}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Invoke(context.Background(), "get_note", nil, nil)
	remote := AsRemoteError(err)
	if remote == nil {
		t.Fatalf("expected remote error, got %v", err)
	}
	if remote.StatusCode != http.StatusUnprocessableEntity || remote.Message != "note not found" {
		t.Fatalf("unexpected remote error %+v", remote)
	}
}

func TestInvokeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := newTestClient(url).Invoke(context.Background(), "get_tags", nil, nil)
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if AsRemoteError(err) != nil {
		t.Fatalf("transport failure should not be a remote error")
	}
}

func TestRunDispatchesStreamedEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteJSON(Event{Name: EventRefetchNotes})
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	got := make(chan Event, 1)
	if _, err := c.Listen(EventRefetchNotes, func(ev Event) { got <- ev }); err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case ev := <-got:
		if ev.Name != EventRefetchNotes {
			t.Fatalf("unexpected event %q", ev.Name)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
}
