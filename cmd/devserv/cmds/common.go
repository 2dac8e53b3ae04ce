package cmds

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-go-golems/devserv/pkg/config"
	"github.com/go-go-golems/devserv/pkg/ledger"
	"github.com/go-go-golems/devserv/pkg/state"
	"github.com/go-go-golems/devserv/pkg/supervise"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type rootOptions struct {
	ProjectRoot string
	Config      string
}

func AddRootFlags(root *cobra.Command) {
	root.PersistentFlags().String("repo-root", "", "Project root (defaults to $PROJECT_ROOT or the nearest directory with .claude/ or .git/)")
	root.PersistentFlags().String("config", "", "Path to devkit config (defaults to .claude/.devkit/config.jsonc under the project root)")
}

// getRootOptions resolves the project root from, in order: the positional project dir,
// --repo-root, project root discovery from the working directory, the working directory.
func getRootOptions(cmd *cobra.Command, projectDir string) (rootOptions, error) {
	root := projectDir
	if root == "" {
		var err error
		root, err = cmd.Root().PersistentFlags().GetString("repo-root")
		if err != nil {
			return rootOptions{}, err
		}
	}
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return rootOptions{}, err
		}
		root, err = config.FindProjectRoot(cwd)
		if err != nil {
			log.Debug().Err(err).Str("cwd", cwd).Msg("using working directory as project root")
			root = cwd
		}
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return rootOptions{}, err
	}
	if fi, err := os.Stat(root); err != nil {
		return rootOptions{}, errors.Wrap(err, "project dir")
	} else if !fi.IsDir() {
		return rootOptions{}, errors.Errorf("project dir %s is not a directory", root)
	}

	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return rootOptions{}, err
	}
	if cfgPath != "" && !filepath.IsAbs(cfgPath) {
		cfgPath = filepath.Join(root, cfgPath)
	}

	return rootOptions{
		ProjectRoot: root,
		Config:      cfgPath,
	}, nil
}

func ledgerStore(opts rootOptions) ledger.Store {
	return ledger.NewFileStore(state.LedgerPath(opts.ProjectRoot))
}

func loadConfig(opts rootOptions) (*config.File, error) {
	return config.LoadOptional(opts.ProjectRoot, opts.Config)
}

// stopFlags are shared by stop and start --force.
type stopFlags struct {
	Wait  bool
	Grace time.Duration
}

const defaultGrace = 5 * time.Second

func (f *stopFlags) FlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("stop", pflag.ContinueOnError)
	fs.BoolVar(&f.Wait, "wait", false, "Wait for services to exit and SIGKILL those still running after --grace")
	fs.DurationVar(&f.Grace, "grace", defaultGrace, "How long --wait gives each service to exit after SIGTERM")
	return fs
}

func (f *stopFlags) ReaperOptions(store ledger.Store) (supervise.ReaperOptions, error) {
	opts := supervise.ReaperOptions{Store: store}
	if !f.Wait {
		return opts, nil
	}
	if f.Grace <= 0 {
		return supervise.ReaperOptions{}, errors.New("grace must be > 0")
	}
	opts.GracePeriod = f.Grace
	return opts, nil
}
