package cmds

import (
	"github.com/spf13/cobra"
)

func AddCommands(root *cobra.Command) error {
	root.AddCommand(newInitCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newURLsCmd())

	root.AddCommand(newStartCmd())
	root.AddCommand(newStopCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newLogsCmd())
	return nil
}
