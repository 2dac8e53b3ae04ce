package cmds

import (
	"fmt"

	"github.com/go-go-golems/devserv/pkg/config"
	"github.com/go-go-golems/devserv/pkg/webhooks"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var opts config.ScaffoldOptions
	var noWebhooks bool
	var detect bool
	var force bool

	cmd := &cobra.Command{
		Use:   "init [project_dir]",
		Short: "Write a devkit config for the project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir := ""
			if len(args) > 0 {
				projectDir = args[0]
			}
			ropts, err := getRootOptions(cmd, projectDir)
			if err != nil {
				return err
			}
			opts.Dev.IncludeWebhooks = !noWebhooks

			if detect {
				// Config services are not consulted: the config is being replaced.
				detected, err := webhooks.Detect(ropts.ProjectRoot, &config.File{})
				if err != nil {
					return err
				}
				for _, svc := range detected {
					opts.Webhooks = append(opts.Webhooks, config.WebhookService{
						Name:     svc.Name,
						Path:     svc.Path,
						Provider: svc.Provider,
						Events:   webhooks.Events(svc.Provider),
					})
				}
			}

			path, err := config.WriteScaffold(ropts.ProjectRoot, opts, force)
			if err != nil {
				return err
			}
			log.Info().Str("config", path).Int("webhooks", len(opts.Webhooks)).Msg("config written")
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), theme.Status(true, false, "Wrote "+path))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Dev.Command, "dev-command", config.DefaultDevCommand, "Command that runs the dev server")
	cmd.Flags().IntVar(&opts.Dev.Port, "port", config.DefaultDevPort, "Dev server port")
	cmd.Flags().StringVar(&opts.NgrokDomain, "ngrok-domain", "", "Reserved ngrok domain for the public tunnel")
	cmd.Flags().BoolVar(&noWebhooks, "no-webhooks", false, "Only start the dev server")
	cmd.Flags().BoolVar(&detect, "detect", true, "Record webhook receivers found in the project")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing config")
	return cmd
}
