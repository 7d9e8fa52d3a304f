package words

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hkfi/insight-notes/internal/queries"
	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/state"
	"github.com/hkfi/insight-notes/internal/types"
	"github.com/hkfi/insight-notes/internal/views"
	cmdutil "github.com/hkfi/insight-notes/pkg/cmd"
)

func NewCmdWords(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "words [noteId]",
		Short: "Suggest tags for a note from similar words.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cmdutil.ResolveNoteID(cmd.Context(), s, args, "Suggest tags for")
			if err != nil {
				return err
			}

			var (
				note  types.Note
				words []string
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				note, err = query.Get(ctx, s.Cache, queries.Note(s.Gateway, id))
				return err
			})
			g.Go(func() error {
				var err error
				words, err = query.Get(ctx, s.Cache, queries.RelatedWords(s.Gateway, id))
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			suggestions := views.RelatedWords(words, note)
			if len(suggestions) == 0 {
				fmt.Fprintln(out, "No suggestions")
				return nil
			}
			for _, w := range suggestions {
				fmt.Fprintln(out, w)
			}
			return nil
		},
	}
}
