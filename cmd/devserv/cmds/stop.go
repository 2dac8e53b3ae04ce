package cmds

import (
	"fmt"

	"github.com/go-go-golems/devserv/pkg/state"
	"github.com/go-go-golems/devserv/pkg/supervise"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newStopCmd() *cobra.Command {
	var stop stopFlags

	cmd := &cobra.Command{
		Use:   "stop [project_dir]",
		Short: "Stop every service recorded in the ledger",
		Long: "Stop every service recorded in the ledger and remove it.\n\n" +
			"By default each service gets SIGTERM and is counted as stopped without waiting.\n" +
			"With --wait, services still alive after --grace are sent SIGKILL.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir := ""
			if len(args) > 0 {
				projectDir = args[0]
			}
			opts, err := getRootOptions(cmd, projectDir)
			if err != nil {
				return err
			}
			ropts, err := stop.ReaperOptions(ledgerStore(opts))
			if err != nil {
				return err
			}

			report, err := supervise.NewReaper(ropts).Stop(cmd.Context())
			if err != nil {
				// Stop never fails the caller; an unreadable ledger is reported and left in place.
				log.Warn().Err(err).Msg("could not read ledger")
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s could not read ledger: %v\n",
					theme.StatusWarn.Render("warning:"), errors.Cause(err))
				return nil
			}
			renderStopReport(cmd.OutOrStdout(), report, state.LogsDir(opts.ProjectRoot))
			return nil
		},
	}

	cmd.Flags().AddFlagSet(stop.FlagSet())
	return cmd
}
