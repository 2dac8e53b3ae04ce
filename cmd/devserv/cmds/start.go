package cmds

import (
	"context"
	"io"

	"github.com/go-go-golems/devserv/pkg/config"
	"github.com/go-go-golems/devserv/pkg/engine"
	"github.com/go-go-golems/devserv/pkg/ledger"
	"github.com/go-go-golems/devserv/pkg/state"
	"github.com/go-go-golems/devserv/pkg/supervise"
	"github.com/go-go-golems/devserv/pkg/webhooks"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newStartCmd() *cobra.Command {
	var force bool
	var stop stopFlags

	cmd := &cobra.Command{
		Use:   "start [project_dir] [services_source]",
		Short: "Start background services and record them in the ledger",
		Long: "Start background services and record them in the ledger.\n\n" +
			"Services come from services_source (a JSON or YAML launch plan, - for stdin) or,\n" +
			"when it is omitted, from the devkit config of the project.",
		Args: cobra.MaximumNArgs(2),
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
			store := ledgerStore(opts)
			ctx := cmd.Context()

			if force {
				ropts, err := stop.ReaperOptions(store)
				if err != nil {
					return err
				}
				log.Info().Msg("stopping recorded services first (--force)")
				report, err := supervise.NewReaper(ropts).Stop(ctx)
				if err != nil {
					log.Warn().Err(err).Msg("could not stop previous services")
				} else {
					renderStopReport(cmd.OutOrStdout(), report, state.LogsDir(opts.ProjectRoot))
				}
			} else {
				warnUntracked(store)
			}

			plan, err := resolvePlan(ctx, opts, source, cmd.InOrStdin())
			if err != nil {
				return err
			}
			specs := engine.ServiceSpecs(plan, opts.ProjectRoot)

			launcher := supervise.NewLauncher(supervise.LauncherOptions{
				ProjectRoot: opts.ProjectRoot,
				Store:       store,
			})
			report, err := launcher.Launch(ctx, specs)
			if report != nil {
				renderLaunchReport(cmd.OutOrStdout(), report)
			}
			if err != nil {
				return err
			}
			log.Info().Int("started", report.StartedCount()).Int("services", len(specs)).Msg("start complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Stop services recorded in the ledger before starting")
	cmd.Flags().AddFlagSet(stop.FlagSet())
	return cmd
}

// warnUntracked logs services of a previous start that are still alive. A new start
// overwrites the ledger, after which stop no longer reaches them.
func warnUntracked(store ledger.Store) {
	reg, err := store.Load()
	if err != nil {
		return
	}
	for _, rec := range reg {
		if state.ProcessAlive(rec.PID) {
			log.Warn().Str("service", rec.Name).Int("pid", rec.PID).Msg("service from a previous start is still running and will no longer be tracked (use --force)")
		}
	}
}

func resolvePlan(ctx context.Context, opts rootOptions, source string, stdin io.Reader) (engine.LaunchPlan, error) {
	if source != "" {
		plan, err := engine.LoadPlanFile(source, stdin)
		if err != nil {
			return engine.LaunchPlan{}, errors.Wrap(err, "load services source")
		}
		return plan, nil
	}

	cfg, detected, err := loadDetected(opts)
	if err != nil {
		return engine.LaunchPlan{}, err
	}
	return engine.Resolve(ctx, cfg, detected, webhooks.NewChecker()), nil
}

func loadDetected(opts rootOptions) (*config.File, webhooks.Services, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	detected, err := webhooks.Detect(opts.ProjectRoot, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, detected, nil
}
