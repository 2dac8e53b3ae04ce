package cmds

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-go-golems/devserv/pkg/styles"
	"github.com/go-go-golems/devserv/pkg/supervise"
	"github.com/pkg/errors"
)

var theme = styles.DefaultStyles

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal output")
	}
	_, _ = fmt.Fprintln(w, string(b))
	return nil
}

func renderLaunchReport(w io.Writer, report *supervise.LaunchReport) {
	for _, s := range report.Services {
		if s.Started() {
			_, _ = fmt.Fprintf(w, "%s %s\n",
				theme.Status(true, false, fmt.Sprintf("Started %s (pid %d)", s.Name, s.PID)),
				theme.Dim.Render("log: "+s.LogPath))
			continue
		}
		_, _ = fmt.Fprintln(w, theme.Status(false, false, fmt.Sprintf("Failed to start %s: %v", s.Name, s.Err)))
	}
	started := report.StartedCount()
	if started == 0 {
		_, _ = fmt.Fprintln(w, "No services started.")
		return
	}
	_, _ = fmt.Fprintf(w, "Started %d of %d service(s)\n", started, len(report.Services))
}

func renderStopReport(w io.Writer, report *supervise.StopReport, logsDir string) {
	if report.NoLedger {
		_, _ = fmt.Fprintln(w, "No services running.")
		_, _ = fmt.Fprintf(w, "Stopped %d service(s)\n", report.Stopped)
		return
	}
	for _, s := range report.Services {
		switch s.Outcome {
		case supervise.OutcomeAlreadyStopped:
			_, _ = fmt.Fprintln(w, theme.Dim.Render(fmt.Sprintf("%s %s already stopped (pid %d)", styles.IconPending, s.Name, s.PID)))
		case supervise.OutcomeStopped:
			_, _ = fmt.Fprintln(w, theme.Status(true, false, fmt.Sprintf("Stopped %s (pid %d)", s.Name, s.PID)))
		case supervise.OutcomeKilled:
			_, _ = fmt.Fprintln(w, theme.Status(false, true, fmt.Sprintf("Stopped %s (pid %d) with SIGKILL", s.Name, s.PID)))
		case supervise.OutcomeTimeout:
			_, _ = fmt.Fprintln(w, theme.Status(false, false, fmt.Sprintf("%s (pid %d) still running after SIGKILL", s.Name, s.PID)))
		}
	}
	_, _ = fmt.Fprintf(w, "Stopped %d service(s)\n", report.Stopped)
	_, _ = fmt.Fprintln(w, theme.Dim.Render("Logs preserved in "+logsDir))
}
