package supervise

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/go-go-golems/devserv/pkg/engine"
	"github.com/go-go-golems/devserv/pkg/ledger"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultShell = "/bin/sh"

type LauncherOptions struct {
	// ProjectRoot is the default working directory of services.
	ProjectRoot string
	Store       ledger.Store
	Shell       string
}

// Launcher starts services as detached process groups and records them in a ledger.
type Launcher struct {
	opts LauncherOptions
}

func NewLauncher(opts LauncherOptions) *Launcher {
	if opts.Shell == "" {
		opts.Shell = DefaultShell
	}
	return &Launcher{opts: opts}
}

type LaunchResult struct {
	Name    string `json:"name"`
	PID     int    `json:"pid,omitempty"`
	LogPath string `json:"log_path"`
	Err     error  `json:"-"`
}

func (r LaunchResult) Started() bool { return r.Err == nil && r.PID > 0 }

type LaunchReport struct {
	Services []LaunchResult `json:"services"`
}

func (r *LaunchReport) StartedCount() int {
	n := 0
	for _, s := range r.Services {
		if s.Started() {
			n++
		}
	}
	return n
}

// Launch starts specs in order. A service that cannot be spawned is reported and left out
// of the ledger; the rest of the batch still starts. The ledger is overwritten once every
// service has been tried. The only errors returned are a missing store, a cancelled ctx
// before anything started, or a ledger that cannot be written.
func (l *Launcher) Launch(ctx context.Context, specs []engine.ServiceSpec) (*LaunchReport, error) {
	if l.opts.Store == nil {
		return nil, errors.New("missing ledger store")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &LaunchReport{Services: []LaunchResult{}}
	reg := ledger.Registry{}

	for _, svc := range specs {
		res := LaunchResult{Name: svc.Name, LogPath: svc.LogPath}

		if err := ctx.Err(); err != nil {
			res.Err = errors.Wrap(err, "launch cancelled")
			report.Services = append(report.Services, res)
			continue
		}
		if _, dup := reg.Lookup(svc.Name); dup {
			res.Err = errors.Errorf("duplicate service name %q", svc.Name)
			log.Warn().Str("service", svc.Name).Msg("duplicate service name, skipping")
			report.Services = append(report.Services, res)
			continue
		}

		pid, err := l.spawn(svc)
		if err == nil {
			err = reg.Add(svc.Name, pid)
		}
		if err != nil {
			res.Err = err
			log.Warn().Err(err).Str("service", svc.Name).Msg("service failed to start")
			report.Services = append(report.Services, res)
			continue
		}

		res.PID = pid
		log.Info().Str("service", svc.Name).Int("pid", pid).Str("log", svc.LogPath).Msg("service started")
		report.Services = append(report.Services, res)
	}

	if err := l.opts.Store.Save(reg); err != nil {
		return report, errors.Wrap(err, "save ledger")
	}
	return report, nil
}

func (l *Launcher) spawn(svc engine.ServiceSpec) (int, error) {
	if svc.Name == "" {
		return 0, errors.New("service name is required")
	}
	if svc.Command == "" {
		return 0, errors.Errorf("service %q missing command", svc.Name)
	}
	if svc.LogPath == "" {
		return 0, errors.Errorf("service %q missing log path", svc.Name)
	}

	cwd := l.opts.ProjectRoot
	if svc.Cwd != "" {
		cwd = svc.Cwd
	}

	if err := os.MkdirAll(filepath.Dir(svc.LogPath), 0o755); err != nil {
		return 0, errors.Wrap(err, "mkdir logs dir")
	}
	logFile, err := os.OpenFile(svc.LogPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, errors.Wrap(err, "open log")
	}
	defer func() { _ = logFile.Close() }()

	if err := checkExecutable(svc.Command, cwd); err != nil {
		_, _ = fmt.Fprintf(logFile, "devserv: %s: %v\n", svc.Name, err)
		return 0, err
	}

	// #nosec G204 -- commands come from the project's own config.
	cmd := exec.Command(l.opts.Shell, "-c", svc.Command)
	cmd.Dir = cwd
	cmd.Env = mergeEnv(os.Environ(), svc.Env)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	// Own process group: survives our exit and lets the reaper signal descendants together.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return 0, errors.Wrap(err, "start service")
	}
	pid := cmd.Process.Pid
	go func() { _ = cmd.Wait() }()
	return pid, nil
}

func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	out := append([]string{}, base...)
	for k, v := range extra {
		out = append(out, k+"="+v)
	}
	return out
}
