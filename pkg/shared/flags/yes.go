package flags

import (
	"github.com/spf13/cobra"
)

func AddYes(cmd *cobra.Command) {
	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func HandleYes(cmd *cobra.Command) bool {
	yes, _ := cmd.Flags().GetBool("yes")
	return yes
}
