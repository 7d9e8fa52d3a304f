package note

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/hkfi/insight-notes/internal/gateway"
	"github.com/hkfi/insight-notes/internal/state/statetest"
	"github.com/hkfi/insight-notes/internal/types"
)

func TestNewUsesDefaultContent(t *testing.T) {
	s, fake := statetest.New(t)
	fake.Reply(gateway.CmdCreateNote, 42)

	cmd := NewCmdNote(s)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"new"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var args gateway.CreateNoteArgs
	if !fake.LastArgs(gateway.CmdCreateNote, &args) || args.Content != types.DefaultNoteContent {
		t.Fatalf("expected default content, got %+v", args)
	}
	if !strings.Contains(out.String(), "#42") {
		t.Fatalf("expected created id in output, got %q", out.String())
	}
}

func TestNewFromClipboard(t *testing.T) {
	s, fake := statetest.New(t)
	fake.Reply(gateway.CmdCreateNote, 7)
	prev := readClipboard
	readClipboard = func() (string, error) { return "pasted text", nil }
	t.Cleanup(func() { readClipboard = prev })

	cmd := NewCmdNote(s)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"new", "--clipboard"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var args gateway.CreateNoteArgs
	if !fake.LastArgs(gateway.CmdCreateNote, &args) || args.Content != "pasted text" {
		t.Fatalf("expected clipboard content, got %+v", args)
	}
}

func TestShowRawAndCopy(t *testing.T) {
	s, fake := statetest.New(t)
	fake.Reply(gateway.CmdGetNote, types.Note{ID: 3, Content: "# Title\nbody text"})
	var copied string
	prev := writeClipboard
	writeClipboard = func(v string) error { copied = v; return nil }
	t.Cleanup(func() { writeClipboard = prev })

	cmd := NewCmdNote(s)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"show", "3", "--raw", "--copy"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if !strings.Contains(out.String(), "body text") {
		t.Fatalf("unexpected output %q", out.String())
	}
	if copied != "# Title\nbody text" {
		t.Fatalf("unexpected clipboard %q", copied)
	}
}

func TestRemoveHonoursConfirmation(t *testing.T) {
	s, fake := statetest.New(t)
	fake.Reply(gateway.CmdDeleteNote, nil)
	prev := confirm
	t.Cleanup(func() { confirm = prev })

	confirm = func(string, bool) (bool, error) { return false, nil }
	cmd := NewCmdNote(s)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"rm", "5"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if fake.Calls(gateway.CmdDeleteNote) != 0 {
		t.Fatalf("declined delete should not call the backend")
	}

	confirm = func(string, bool) (bool, error) { return true, nil }
	cmd = NewCmdNote(s)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"rm", "5"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var args gateway.NoteIDArgs
	if !fake.LastArgs(gateway.CmdDeleteNote, &args) || args.ID != 5 {
		t.Fatalf("expected delete of note 5, got %+v", args)
	}
}

func TestRemoveReportsBackendError(t *testing.T) {
	s, fake := statetest.New(t)
	fake.Fail(gateway.CmdDeleteNote, errors.New("note not found"))

	cmd := NewCmdNote(s)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"rm", "5", "--yes"})
	err := cmd.Execute()
	if be := gateway.AsBackendError(err); be == nil || be.Command != gateway.CmdDeleteNote {
		t.Fatalf("expected backend error, got %v", err)
	}
}
