package cmds

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-go-golems/devserv/pkg/state"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	var tailLines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs <service>",
		Short: "Print the captured output of a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := getRootOptions(cmd, "")
			if err != nil {
				return err
			}
			name := args[0]
			if name == "" || filepath.Base(name) != name {
				return errors.Errorf("invalid service name %q", name)
			}

			path := state.LogPath(opts.ProjectRoot, name)
			if _, err := os.Stat(path); err != nil {
				if os.IsNotExist(err) {
					return errors.Errorf("no log for service %q (%s)", name, path)
				}
				return errors.Wrap(err, "stat log")
			}

			lines, size, err := state.TailLines(path, tailLines, state.DefaultTailBytes)
			if err != nil {
				return err
			}
			for _, l := range lines {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			if !follow {
				return nil
			}
			return state.Follow(cmd.Context(), path, size, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&tailLines, "tail-lines", state.DefaultTailLines, "How many lines to print")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	return cmd
}
