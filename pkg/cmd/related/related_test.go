package related

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hkfi/insight-notes/internal/bridge"
	"github.com/hkfi/insight-notes/internal/gateway"
	"github.com/hkfi/insight-notes/internal/state/statetest"
	"github.com/hkfi/insight-notes/internal/types"
)

func TestRelatedPrintsOnceWithoutWatch(t *testing.T) {
	s, fake := statetest.New(t)
	fake.Reply(gateway.CmdFindSimilarNotes, []types.Note{{ID: 1, Content: "Self"}, {ID: 2, Content: "Sibling"}})

	cmd := NewCmdRelated(s)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	got := out.String()
	if strings.Contains(got, "Self") || !strings.Contains(got, "Sibling") {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRelatedReturnsFetchError(t *testing.T) {
	s, fake := statetest.New(t)
	fake.Fail(gateway.CmdFindSimilarNotes, errors.New("index unavailable"))

	cmd := NewCmdRelated(s)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"1"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFollowReprintsOnRefetchEvent(t *testing.T) {
	s, fake := statetest.New(t)
	fake.Handle(gateway.CmdFindSimilarNotes, func(context.Context, json.RawMessage) (any, error) {
		return []types.Note{{ID: 2, Content: "Round"}}, nil
	})

	r, err := s.MountRelated(1)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	defer r.Close()

	cmd := NewCmdRelated(s)
	var out syncBuffer
	cmd.SetOut(&out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- follow(ctx, cmd, r, true) }()

	waitFor(t, func() bool { return strings.Count(out.String(), "Round") == 1 })
	fake.Emit(bridge.EventRefetchNotes)
	waitFor(t, func() bool { return strings.Count(out.String(), "Round") == 2 })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("follow: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
