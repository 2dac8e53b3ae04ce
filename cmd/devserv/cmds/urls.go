package cmds

import (
	"fmt"

	"github.com/go-go-golems/devserv/pkg/engine"
	"github.com/go-go-golems/devserv/pkg/styles"
	"github.com/spf13/cobra"
)

func newURLsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "urls [project_dir]",
		Short: "Print the dev server, tunnel and webhook URLs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir := ""
			if len(args) > 0 {
				projectDir = args[0]
			}
			opts, err := getRootOptions(cmd, projectDir)
			if err != nil {
				return err
			}
			cfg, detected, err := loadDetected(opts)
			if err != nil {
				return err
			}
			urls := engine.ResolveURLs(cfg, detected)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), urls)
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "%s %s\n", theme.Name.Render("Local:"), urls.Localhost)
			if urls.Ngrok != "" {
				_, _ = fmt.Fprintf(w, "%s %s\n", theme.Name.Render("Public:"), urls.Ngrok)
			}
			if len(urls.Webhooks) == 0 {
				return nil
			}
			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, theme.Title.Render("Webhooks"))
			for _, wh := range urls.Webhooks {
				_, _ = fmt.Fprintf(w, "  %s %s %s\n", styles.IconBullet, theme.Name.Render(wh.Service), wh.URL)
				if wh.Dashboard != "" {
					_, _ = fmt.Fprintf(w, "    %s\n", theme.Dim.Render("configure at "+wh.Dashboard))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print URLs as JSON")
	return cmd
}
