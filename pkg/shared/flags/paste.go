package flags

import (
	"github.com/spf13/cobra"
)

func AddPaste(cmd *cobra.Command) {
	cmd.Flags().
		BoolP("clipboard", "y", false, "Use the clipboard contents as the note content")
}

func HandlePaste(cmd *cobra.Command) bool {
	paste, _ := cmd.Flags().GetBool("clipboard")
	return paste
}
