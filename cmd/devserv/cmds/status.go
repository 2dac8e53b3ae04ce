package cmds

import (
	"fmt"
	"io"
	"time"

	"github.com/go-go-golems/devserv/pkg/config"
	"github.com/go-go-golems/devserv/pkg/ledger"
	"github.com/go-go-golems/devserv/pkg/proc"
	"github.com/go-go-golems/devserv/pkg/state"
	"github.com/go-go-golems/devserv/pkg/styles"
	"github.com/go-go-golems/devserv/pkg/webhooks"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type serviceStatus struct {
	Name      string      `json:"name"`
	PID       int         `json:"pid"`
	Alive     bool        `json:"alive"`
	Log       string      `json:"log"`
	Stats     *proc.Stats `json:"stats,omitempty"`
	StartedAt *time.Time  `json:"started_at,omitempty"`
}

type cliStatus struct {
	Ngrok  webhooks.CLIStatus `json:"ngrok"`
	Stripe webhooks.CLIStatus `json:"stripe"`
}

type statusReport struct {
	ProjectRoot string            `json:"project_root"`
	Running     bool              `json:"running"`
	Services    []serviceStatus   `json:"services"`
	Dev         config.Dev        `json:"dev"`
	Ngrok       config.Ngrok      `json:"ngrok"`
	Webhooks    webhooks.Services `json:"webhooks"`
	CLI         *cliStatus        `json:"cli,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var asJSON bool
	var checkCLI bool

	cmd := &cobra.Command{
		Use:   "status [project_dir]",
		Short: "Show recorded services, dev server config and detected webhooks",
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

			report := statusReport{
				ProjectRoot: opts.ProjectRoot,
				Services:    []serviceStatus{},
				Dev:         cfg.Dev(),
				Ngrok:       cfg.Ngrok(),
				Webhooks:    detected,
			}
			if report.Webhooks == nil {
				report.Webhooks = webhooks.Services{}
			}

			reg, err := ledgerStore(opts).Load()
			if err != nil && !errors.Is(err, ledger.ErrNoLedger) {
				return err
			}
			for _, rec := range reg {
				s := serviceStatus{
					Name:  rec.Name,
					PID:   rec.PID,
					Alive: state.ProcessAlive(rec.PID),
					Log:   state.LogPath(opts.ProjectRoot, rec.Name),
				}
				if s.Alive {
					report.Running = true
					if st, err := proc.ReadStats(rec.PID); err == nil {
						s.Stats = st
						if started, err := st.StartedAt(); err == nil {
							s.StartedAt = &started
						}
					} else {
						log.Debug().Err(err).Int("pid", rec.PID).Msg("could not read process stats")
					}
				}
				report.Services = append(report.Services, s)
			}

			if checkCLI {
				ngrok, stripe := webhooks.NewChecker().Status(cmd.Context())
				report.CLI = &cliStatus{Ngrok: ngrok, Stripe: stripe}
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			renderStatus(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print status as JSON")
	cmd.Flags().BoolVar(&checkCLI, "check-cli", false, "Also check that the ngrok and Stripe CLIs are installed and logged in")
	return cmd
}

func renderStatus(w io.Writer, r statusReport) {
	_, _ = fmt.Fprintln(w, theme.Title.Render("Services"))
	if len(r.Services) == 0 {
		_, _ = fmt.Fprintln(w, "  No services running.")
	}
	for _, s := range r.Services {
		line := fmt.Sprintf("  %s %s (pid %d)", styles.StatusIcon(s.Alive), theme.Name.Render(s.Name), s.PID)
		if !s.Alive {
			_, _ = fmt.Fprintln(w, line+" "+theme.StatusFailed.Render("not running"))
			continue
		}
		if s.Stats != nil {
			line += fmt.Sprintf(" cpu %.1fs mem %dMB", s.Stats.CPUSeconds, s.Stats.MemoryMB)
		}
		if s.StartedAt != nil {
			line += " up " + time.Since(*s.StartedAt).Round(time.Second).String()
		}
		_, _ = fmt.Fprintln(w, theme.StatusOK.Render(line)+" "+theme.Dim.Render("log: "+s.Log))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, theme.Title.Render("Dev server"))
	_, _ = fmt.Fprintf(w, "  %s (port %d)\n", r.Dev.Command, r.Dev.Port)
	if r.Ngrok.Domain != "" {
		_, _ = fmt.Fprintf(w, "  ngrok: https://%s -> localhost:%d\n", r.Ngrok.Domain, r.Ngrok.Port)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, theme.Title.Render("Webhooks"))
	if len(r.Webhooks) == 0 {
		_, _ = fmt.Fprintln(w, "  none detected")
	}
	for _, svc := range r.Webhooks {
		_, _ = fmt.Fprintf(w, "  %s %s %s %s\n", styles.IconBullet, theme.Name.Render(svc.Name), svc.Path,
			theme.Dim.Render(fmt.Sprintf("(%s, from %s)", svc.Provider, svc.DetectedFrom)))
	}

	if r.CLI != nil {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, theme.Title.Render("CLIs"))
		_, _ = fmt.Fprintln(w, "  "+theme.Status(r.CLI.Ngrok.Installed, false, r.CLI.Ngrok.Message))
		_, _ = fmt.Fprintln(w, "  "+theme.Status(r.CLI.Stripe.Installed, false, r.CLI.Stripe.Message))
	}
}
