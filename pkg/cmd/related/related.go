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
package related

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/hkfi/insight-notes/internal/relay"
	"github.com/hkfi/insight-notes/internal/state"
	"github.com/hkfi/insight-notes/internal/views"
	cmdutil "github.com/hkfi/insight-notes/pkg/cmd"
)

func NewCmdRelated(s *state.State) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "related [noteId]",
		Short: "List notes similar to a note.",
		Long: heredoc.Doc(`
			Lists notes the backend considers similar to the given note. With
			--watch the list is printed again every time the backend reports
			that notes changed, until interrupted.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cmdutil.ResolveNoteID(cmd.Context(), s, args, "Related to")
			if err != nil {
				return err
			}
			return run(cmd, s, id, watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep printing as notes change")
	return cmd
}

func run(cmd *cobra.Command, s *state.State, id int64, watch bool) error {
	ctx := cmd.Context()
	if watch {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		s.StartEvents(ctx)
	}

	r, err := s.MountRelated(id)
	if err != nil {
		return err
	}
	defer r.Close()

	return follow(ctx, cmd, r, watch)
}

// follow prints the list each time a refresh settles. Without watch it
// returns after the first one.
func follow(ctx context.Context, cmd *cobra.Command, r *relay.RelatedNotes, watch bool) error {
	printed := 0
	var last uint64
	for {
		err := r.Err()
		gen := r.Generation()
		if gen != last && !r.Fetching() && (r.Loaded() || err != nil) {
			last = gen
			if err != nil && !watch {
				return err
			}
			if printed > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "refresh failed:", err)
			} else {
				cmdutil.PrintNotes(cmd, r.Notes(), views.NoteLine)
			}
			printed++
			if !watch {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-r.Changes():
			if !ok {
				return nil
			}
		}
	}
}
