package cmds

import (
	"github.com/go-go-golems/devserv/pkg/engine"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [project_dir] [services_source]",
		Short: "Print the launch plan and the services start would run",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, source := "", ""
			if len(args) > 0 {
				projectDir = args[0]
			}
			if len(args) > 1 {
				source = args[1]
			}
			opts, err := getRootOptions(cmd, projectDir)
			if err != nil {
				return err
			}

			plan, err := resolvePlan(cmd.Context(), opts, source, cmd.InOrStdin())
			if err != nil {
				return err
			}
			specs := engine.ServiceSpecs(plan, opts.ProjectRoot)

			out := map[string]any{
				"plan":     plan,
				"services": specs,
			}
			log.Info().Int("services", len(specs)).Msg("plan computed")
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}
