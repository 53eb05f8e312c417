package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/atlaspack/internal/project"
)

// configCommand creates the "config" command group.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect, back up and restore the configuration",
	}
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configExportCommand())
	cmd.AddCommand(c.configImportCommand())
	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.configPath)
			return nil
		},
	}
}

// configInitCommand writes the effective configuration, so a fresh install
// gets a file with every key present.
func (c *CLI) configInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the current configuration with all keys to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := project.SaveAppConfig(c.configPath, c.config); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("config written", "path", c.configPath)
			return nil
		},
	}
}

func (c *CLI) configExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Back up the configuration and custom presets to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := project.LoadCustomPresets(c.presetsPath())
			if err != nil {
				return err
			}
			if err := project.ExportAllData(args[0], c.config, presets); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("backup written", "path", args[0], "presets", len(presets))
			return nil
		},
	}
}

func (c *CLI) configImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Restore the configuration and custom presets from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := project.SaveAppConfig(c.configPath, data.Config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			if err := project.SaveCustomPresets(c.presetsPath(), data.Presets); err != nil {
				return fmt.Errorf("failed to save presets: %w", err)
			}
			c.config = data.Config
			loggerFromContext(cmd.Context()).Info("backup restored", "from", args[0], "presets", len(data.Presets))
			return nil
		},
	}
}
