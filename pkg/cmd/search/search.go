package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hkfi/insight-notes/internal/state"
	"github.com/hkfi/insight-notes/internal/views"
	cmdutil "github.com/hkfi/insight-notes/pkg/cmd"
)

func NewCmdSearch(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "search <term>",
		Aliases: []string{"s"},
		Short:   "Full-text search over notes.",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.Join(args, " ")
			if strings.TrimSpace(term) == "" {
				return fmt.Errorf("search term is empty")
			}
			return run(cmd, s, term)
		},
	}
}

// run feeds term through the debounced search view and waits for the first
// settled result.
func run(cmd *cobra.Command, s *state.State, term string) error {
	view := s.Search()
	defer view.Close()

	view.Input(term)
	view.Flush()

	ctx := cmd.Context()
	for {
		res := view.Current()
		if !res.Fetching && (res.HasData || res.Err != nil) {
			if res.Err != nil {
				return res.Err
			}
			cmdutil.PrintNotes(cmd, res.Data, views.NoteLine)
			return nil
		}
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-view.Changes():
		}
	}
}
