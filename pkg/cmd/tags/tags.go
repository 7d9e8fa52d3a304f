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
package tags

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hkfi/insight-notes/internal/queries"
	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/state"
	cmdutil "github.com/hkfi/insight-notes/pkg/cmd"
	"github.com/hkfi/insight-notes/pkg/shared/flags"
)

var confirm = cmdutil.Confirm

func NewCmdTags(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags, or attach and remove them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := query.Get(cmd.Context(), s.Cache, queries.Tags(s.Gateway))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tags) == 0 {
				fmt.Fprintln(out, "No tags")
				return nil
			}
			for _, t := range tags {
				fmt.Fprintln(out, t.ID)
			}
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <noteId> <name>",
			Short: "Attach a tag to a note, creating it if needed.",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := cmdutil.ParseNoteID(args[0])
				if err != nil {
					return err
				}
				return s.Mutations.CreateTag(cmd.Context(), id, args[1])
			},
		},
		&cobra.Command{
			Use:   "detach <noteId> <name>",
			Short: "Remove a tag from one note.",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := cmdutil.ParseNoteID(args[0])
				if err != nil {
					return err
				}
				return s.Mutations.DeleteNoteTag(cmd.Context(), id, args[1])
			},
		},
		newCmdRemove(s),
	)

	return cmd
}

func newCmdRemove(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a tag from every note.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirm(fmt.Sprintf("Delete tag %q from all notes?", args[0]), flags.HandleYes(cmd))
			if err != nil || !ok {
				return err
			}
			if err := s.Mutations.DeleteTag(cmd.Context(), args[0]); err != nil {
				return err
			}
			if s.Selection.IsSelected(args[0]) {
				s.Selection.ToggleTag(args[0])
			}
			return nil
		},
	}

	flags.AddYes(cmd)
	return cmd
}
