/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/erikgeiser/promptkit/selection"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hkfi/insight-notes/internal/fzf"
	"github.com/hkfi/insight-notes/internal/queries"
	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/state"
	"github.com/hkfi/insight-notes/internal/types"
)

// ParseNoteID parses a note id argument, accepting an optional leading #.
func ParseNoteID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(arg), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", arg)
	}
	return id, nil
}

// ResolveNoteID returns the id given in args, or lets the user pick a note
// from the current list when args is empty.
func ResolveNoteID(ctx context.Context, s *state.State, args []string, header string) (int64, error) {
	if len(args) > 0 {
		return ParseNoteID(args[0])
	}
	if !Interactive() {
		return 0, fmt.Errorf("a note id is required")
	}

	notes, err := query.Get(ctx, s.Cache, queries.Notes(s.Gateway, s.Selection.NoteListParams()))
	if err != nil {
		return 0, err
	}
	n, err := fzf.NewNotePicker(notes, header).Pick("")
	if err != nil {
		return 0, err
	}
	return n.ID, nil
}

// Interactive reports whether stdin and stdout are terminals.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Confirm asks a yes/no question. yes skips the prompt; a non-interactive
// session without yes is refused.
func Confirm(prompt string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !Interactive() {
		return false, fmt.Errorf("refusing to continue without --yes")
	}

	sel := selection.New(prompt, []string{"no", "yes"})
	sel.Filter = nil
	choice, err := sel.RunPrompt()
	if err != nil {
		return false, err
	}
	return choice == "yes", nil
}

// RenderWidth is the word wrap for rendered markdown on stdout.
func RenderWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 0
	}
	return min(w-2, 100)
}

// PrintNotes writes one line per note.
func PrintNotes(cmd *cobra.Command, notes []types.Note, line func(types.Note) string) {
	out := cmd.OutOrStdout()
	if len(notes) == 0 {
		fmt.Fprintln(out, "No notes")
		return
	}
	for _, n := range notes {
		fmt.Fprintln(out, line(n))
	}
}
