package main

import (
	"github.com/go-go-golems/devserv/cmd/devserv/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/logging"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "devserv",
	Short:   "devserv starts and stops background development services",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.InitLoggerFromCobra(cmd)
	},
}

func main() {
	cobra.CheckErr(logging.AddLoggingLayerToRootCommand(rootCmd, "devserv"))
	cmds.AddRootFlags(rootCmd)
	cobra.CheckErr(cmds.AddCommands(rootCmd))
	cobra.CheckErr(rootCmd.Execute())
}
