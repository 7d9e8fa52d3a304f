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
package edit

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hkfi/insight-notes/internal/state"
	"github.com/hkfi/insight-notes/internal/tui/editor"
	cmdutil "github.com/hkfi/insight-notes/pkg/cmd"
)

func NewCmdEdit(s *state.State) *cobra.Command {
	var noRelated bool

	cmd := &cobra.Command{
		Use:     "edit [noteId]",
		Aliases: []string{"e", "open"},
		Short:   "Edit a note with autosave.",
		Long: heredoc.Doc(`
			Opens a note in the terminal editor. Changes are saved once typing
			pauses; ctrl+s saves immediately and esc closes the editor.
			Without an id a fuzzy finder lists the current notes.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cmdutil.ResolveNoteID(cmd.Context(), s, args, "Edit note")
			if err != nil {
				return err
			}

			return Run(cmd, s, id, !noRelated)
		},
	}

	cmd.Flags().BoolVar(&noRelated, "no-related", false, "Hide the related notes panel")
	return cmd
}

// Run opens note id in the editor until it is closed.
func Run(cmd *cobra.Command, s *state.State, id int64, withRelated bool) error {
	s.StartEvents(cmd.Context())
	session := s.OpenEditor(id)

	var related editor.Related
	if withRelated {
		r, err := s.MountRelated(id)
		if err != nil {
			return err
		}
		defer r.Close()
		related = r
	}

	m := editor.New(session, related, s.StatusCmd)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		_, _ = session.Close(cmd.Context())
		return err
	}

	if fm, ok := final.(editor.Model); ok {
		if fm.Discarded() {
			fmt.Fprintln(cmd.ErrOrStderr(), "Unsaved changes were discarded.")
		}
		return fm.Err()
	}
	return nil
}
