// Package bridgetest provides an in-process bridge for exercising the client
// without a backend.
package bridgetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hkfi/insight-notes/internal/bridge"
)

// HandlerFunc answers one command. The returned value is round-tripped
// through JSON into the caller's result.
type HandlerFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Call records one invocation seen by the fake.
type Call struct {
	Command string
	Args    json.RawMessage
}

// Fake implements bridge.Invoker and bridge.Listener.
type Fake struct {
	*bridge.Registry

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    []Call
}

func New() *Fake {
	return &Fake{
		Registry: bridge.NewRegistry(),
		handlers: make(map[string]HandlerFunc),
	}
}

// Handle installs fn as the answer for command, replacing any previous one.
func (f *Fake) Handle(command string, fn HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[command] = fn
}

// Reply installs a handler that always returns v.
func (f *Fake) Reply(command string, v any) {
	f.Handle(command, func(context.Context, json.RawMessage) (any, error) {
		return v, nil
	})
}

// Fail installs a handler that always fails with err.
func (f *Fake) Fail(command string, err error) {
	f.Handle(command, func(context.Context, json.RawMessage) (any, error) {
		return nil, err
	})
}

func (f *Fake) Invoke(ctx context.Context, command string, args any, out any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.calls = append(f.calls, Call{Command: command, Args: raw})
	fn := f.handlers[command]
	f.mu.Unlock()

	if fn == nil {
		return fmt.Errorf("bridgetest: no handler for %q", command)
	}

	v, err := fn(ctx, raw)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, out)
}

// Emit broadcasts a backend event to the registered listeners.
func (f *Fake) Emit(event string) int {
	return f.Dispatch(bridge.Event{Name: event})
}

// Calls returns how many times command was invoked.
func (f *Fake) Calls(command string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Command == command {
			n++
		}
	}
	return n
}

// History returns every invocation in order.
func (f *Fake) History() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// LastArgs decodes the arguments of the latest call to command into v.
func (f *Fake) LastArgs(command string, v any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Command == command {
			return json.Unmarshal(f.calls[i].Args, v) == nil
		}
	}
	return false
}
