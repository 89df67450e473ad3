package cli

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/treegrid/internal/datasource"
	"github.com/vanderheijden86/treegrid/pkg/treestate"
	"github.com/vanderheijden86/treegrid/pkg/ui"
	"github.com/vanderheijden86/treegrid/pkg/watcher"
)

// ErrNoTerminal is returned when view is started without a terminal.
var ErrNoTerminal = errors.New("view needs a terminal; use rows for plain output")

func (c *CLI) viewCommand() *cobra.Command {
	var (
		policy  policyFlags
		noWatch bool
	)
	cmd := &cobra.Command{
		Use:   "view [SOURCE...]",
		Short: "Browse outlines in an interactive tree grid",
		Long: `Open the interactive tree grid. Without arguments the first favorite
source from the config is opened. Outline files are watched and reloaded
when they change; expansion state is kept between sessions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if len(args) == 0 {
				args = []string{"1"}
			}
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.WithStack(ErrNoTerminal)
			}

			tree, sources, err := c.open(ctx, args)
			if err != nil {
				return err
			}
			defer tree.Close()

			paths := datasource.Paths(sources)
			opts := ui.Options{
				View:      policy.view(cmd, c.cfg.View),
				StatePath: treestate.PathFor(c.cfg.ResolvedStateDir(), paths),
				Builder:   tree.Builder,
			}
			if tree.Reloadable {
				opts.Paths = paths
				if c.cfg.Watch.Enabled && !noWatch {
					w, err := c.newWatcher(paths)
					if err != nil {
						logger.Warn("file watching disabled", "err", err)
					} else {
						defer w.Stop()
						opts.Watcher = w
					}
				}
			}

			m, err := ui.NewModel(tree.Root, opts)
			if err != nil {
				return err
			}
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return errors.Wrap(err, "running tree grid")
			}
			return tree.Err()
		},
	}
	policy.register(cmd)
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload sources when they change")
	return cmd
}

func (c *CLI) newWatcher(paths []string) (*watcher.Watcher, error) {
	wc := c.cfg.Watch
	opts := []watcher.WatcherOption{watcher.WithForcePoll(wc.ForcePoll)}
	if wc.DebounceMs > 0 {
		opts = append(opts, watcher.WithDebounceDuration(time.Duration(wc.DebounceMs)*time.Millisecond))
	}
	if wc.PollInterval > 0 {
		opts = append(opts, watcher.WithPollInterval(time.Duration(wc.PollInterval)*time.Millisecond))
	}
	opts = append(opts, watcher.WithOnError(func(err error) {
		c.Logger.Debug("watcher", "err", err)
	}))
	w, err := watcher.NewWatcher(paths, opts...)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return nil, err
	}
	return w, nil
}
