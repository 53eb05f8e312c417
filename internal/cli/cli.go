// Package cli implements the atlaspack command-line interface.
//
// Commands:
//   - build: pack images into atlas pages and write them out
//   - serve: run the HTTP service
//   - compare: show how alternative settings change a build
//   - presets: list, export and import named settings
//   - config: show, back up and restore the configuration
//   - version: print the version
//
// Every command accepts --verbose (-v) for debug logging and --config to
// point at a non-default configuration file. The logger travels through the
// command's context.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/atlaspack/internal/cache"
	"github.com/piwi3910/atlaspack/internal/engine"
	"github.com/piwi3910/atlaspack/internal/model"
	"github.com/piwi3910/atlaspack/internal/project"
)

// maxRecentOutputs bounds AppConfig.RecentOutputs.
const maxRecentOutputs = 10

// CLI holds state shared by all commands.
type CLI struct {
	stderr     io.Writer
	verbose    bool
	configPath string
	config     model.AppConfig
}

// New creates a CLI that logs to stderr.
func New(stderr io.Writer) *CLI {
	return &CLI{stderr: stderr}
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return New(os.Stderr).RootCommand().ExecuteContext(ctx)
}

// RootCommand creates the root command with every subcommand registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          model.AppName,
		Short:        "Pack images into texture atlas pages",
		Long:         `atlaspack packs a set of images into as few atlas pages as possible and writes each page as a PNG with JSON frame metadata.`,
		Version:      model.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if c.verbose {
				level = log.DebugLevel
			}
			logger := newLogger(c.stderr, level)
			cmd.SetContext(withLogger(cmd.Context(), logger))

			config, err := project.LoadAppConfig(c.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			c.config = config
			logger.Debug("config loaded", "path", c.configPath)
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("%s {{.Version}}\n", model.AppName))
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", project.DefaultConfigPath(), "configuration file (.toml or .json)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.presetsCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// presetsPath keeps custom presets next to the config file.
func (c *CLI) presetsPath() string {
	return filepath.Join(filepath.Dir(c.configPath), filepath.Base(project.DefaultPresetsPath()))
}

// newSolver returns the default solver, wrapped in a CachedSolver when a
// cache location is given. The returned close func is never nil.
func (c *CLI) newSolver(ctx context.Context, location string, logger *log.Logger) (engine.Solver, func() error, error) {
	if location == "" {
		return engine.NewSolver(), func() error { return nil }, nil
	}

	var ttl time.Duration
	if c.config.CacheTTL != "" {
		d, err := time.ParseDuration(c.config.CacheTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cache_ttl %q: %w", c.config.CacheTTL, err)
		}
		ttl = d
	}

	store, err := cache.Open(ctx, location)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("solver cache enabled", "location", location, "ttl", ttl)
	return engine.NewCachedSolver(engine.NewSolver(), store, ttl, logger), store.Close, nil
}

// versionCommand creates the "version" command.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", model.AppName, model.Version)
			return nil
		},
	}
}
