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
package notes

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/hkfi/insight-notes/internal/queries"
	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/state"
	"github.com/hkfi/insight-notes/internal/views"
	cmdutil "github.com/hkfi/insight-notes/pkg/cmd"
)

type options struct {
	tags     []string
	matchAll bool
	skip     int
	take     int
	since    string
	recent   int
}

func NewCmdNotes(s *state.State) *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"ls"},
		Short:   "List notes, optionally filtered by tags.",
		Long: heredoc.Doc(`
			Lists notes from the backend. Tags narrow the list to notes carrying
			any of them, or all of them with --match-all.
		`),
		Example: heredoc.Doc(`
			insight notes
			insight notes --tag go --tag concurrency --match-all
			insight notes --since "last monday"
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, s, o)
		},
	}

	cmd.Flags().StringSliceVarP(&o.tags, "tag", "t", nil, "Filter by tag (repeatable)")
	cmd.Flags().BoolVar(&o.matchAll, "match-all", false, "Require every tag instead of any")
	cmd.Flags().IntVar(&o.skip, "skip", 0, "Number of notes to skip")
	cmd.Flags().IntVar(&o.take, "take", 0, "Number of notes to return (default from notes.page_size)")
	cmd.Flags().StringVar(&o.since, "since", "", "Only notes created after this date")
	cmd.Flags().IntVar(&o.recent, "recent", 0, "Show only the n most recently updated notes")

	return cmd
}

func run(cmd *cobra.Command, s *state.State, o *options) error {
	s.Selection.SetTags(o.tags...)
	s.Selection.SetMatchAll(o.matchAll)

	params := s.Selection.NoteListParams()
	if o.skip > 0 {
		params.Skip = o.skip
	}
	if o.take > 0 {
		params.Take = o.take
	}

	notes, err := query.Get(cmd.Context(), s.Cache, queries.Notes(s.Gateway, params))
	if err != nil {
		return err
	}

	if o.since != "" {
		t, err := dateparse.ParseLocal(o.since)
		if err != nil {
			return fmt.Errorf("invalid --since date %q: %w", o.since, err)
		}
		notes = views.Since(notes, t.Unix())
	}
	if o.recent > 0 {
		notes = views.Recent(notes, o.recent)
	}

	cmdutil.PrintNotes(cmd, notes, views.NoteLine)
	return nil
}

// Home prints the most recently updated notes and the tag list.
func Home(cmd *cobra.Command, s *state.State) error {
	if err := s.Prefetch(cmd.Context()); err != nil {
		return err
	}

	notes, err := query.Get(cmd.Context(), s.Cache, queries.Notes(s.Gateway, s.Selection.NoteListParams()))
	if err != nil {
		return err
	}
	tags, err := query.Get(cmd.Context(), s.Cache, queries.Tags(s.Gateway))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Recent notes")
	cmdutil.PrintNotes(cmd, views.Recent(notes, views.HomeRecentCount), views.NoteLine)
	if len(tags) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, views.TagList(tags))
	}
	return nil
}

