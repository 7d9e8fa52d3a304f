package settings

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hkfi/insight-notes/internal/config"
)

func NewCmdSettings(c *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"settings"},
		Short:   "Show or change client settings.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := config.Keys()
			sort.Strings(keys)
			out := cmd.OutOrStdout()
			for _, k := range keys {
				v, err := c.Get(k)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s = %v\n", k, v)
			}
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one setting.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := c.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change one setting and save the config file.",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.Set(args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location.",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), c.GetConfigPath())
			},
		},
	)

	return cmd
}
