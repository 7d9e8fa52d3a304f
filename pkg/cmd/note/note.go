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
package note

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/hkfi/insight-notes/internal/queries"
	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/state"
	"github.com/hkfi/insight-notes/internal/views"
	cmdutil "github.com/hkfi/insight-notes/pkg/cmd"
	"github.com/hkfi/insight-notes/pkg/shared/flags"
)

var (
	readClipboard  = clipboard.ReadAll
	writeClipboard = clipboard.WriteAll
	confirm        = cmdutil.Confirm
)

func NewCmdNote(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"n"},
		Short:   "Show, create and delete single notes.",
	}

	cmd.AddCommand(
		newCmdShow(s),
		newCmdNew(s),
		newCmdRemove(s),
	)
	return cmd
}

func newCmdShow(s *state.State) *cobra.Command {
	var raw, copyContent bool

	cmd := &cobra.Command{
		Use:   "show [noteId]",
		Short: "Print a note.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cmdutil.ResolveNoteID(cmd.Context(), s, args, "Show note")
			if err != nil {
				return err
			}
			n, err := query.Get(cmd.Context(), s.Cache, queries.Note(s.Gateway, id))
			if err != nil {
				return err
			}

			wrap := 0
			if !raw {
				wrap = cmdutil.RenderWidth()
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.NoteDetail(n, wrap))

			if copyContent {
				if err := writeClipboard(n.Content); err != nil {
					return fmt.Errorf("failed to copy note: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the body without markdown rendering")
	cmd.Flags().BoolVarP(&copyContent, "copy", "c", false, "Copy the note body to the clipboard")
	return cmd
}

func newCmdNew(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [content]",
		Short: "Create a note.",
		Long: heredoc.Doc(`
			Creates a note with the given content. Without content the note
			starts as "New Note".
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			if flags.HandlePaste(cmd) {
				clip, err := readClipboard()
				if err != nil {
					return fmt.Errorf("failed to read clipboard: %w", err)
				}
				content = clip
			}

			id, err := s.Mutations.CreateNote(cmd.Context(), content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created note #%d\n", id)
			return nil
		},
	}

	flags.AddPaste(cmd)
	return cmd
}

func newCmdRemove(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <noteId>",
		Aliases: []string{"delete"},
		Short:   "Delete a note.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cmdutil.ParseNoteID(args[0])
			if err != nil {
				return err
			}
			ok, err := confirm(fmt.Sprintf("Delete note #%d?", id), flags.HandleYes(cmd))
			if err != nil || !ok {
				return err
			}
			if err := s.Mutations.DeleteNote(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted note #%d\n", id)
			return nil
		},
	}

	flags.AddYes(cmd)
	return cmd
}
