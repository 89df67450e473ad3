// Package cli implements the treegrid command-line interface.
//
// Commands:
//   - view: interactive tree grid over outline files or a database
//   - rows: print the projected rows as a table
//   - reveal: report where an item is, or what hides it
//   - export: write outlines into an items database
//
// All commands support --verbose (-v) for debug-level logging; the logger
// travels through the command context.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/treegrid/pkg/config"
	"github.com/vanderheijden86/treegrid/pkg/version"
)

const appName = "treegrid"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a CLI whose logger writes to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "treegrid projects outlines into a navigable tree grid",
		Long:         `treegrid loads hierarchical outlines (JSON, YAML, JSONL or an items database) and shows them as a flat table of rows that follows expansion, filtering and sorting.`,
		Version:      version.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(appName + " {{.Version}}\n")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.ConfigPath()+")")

	root.AddCommand(c.viewCommand())
	root.AddCommand(c.rowsCommand())
	root.AddCommand(c.revealCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.versionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	var (
		cfg config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFrom(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "sources", len(cfg.Sources), "state_dir", cfg.ResolvedStateDir())
	return nil
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), appName+" "+version.Version+"\n")
			return err
		},
	}
}
