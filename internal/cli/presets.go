package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/atlaspack/internal/model"
	"github.com/piwi3910/atlaspack/internal/project"
)

// presetsCommand creates the "presets" command group.
func (c *CLI) presetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage named atlas settings",
	}
	cmd.AddCommand(c.presetsListCommand())
	cmd.AddCommand(c.presetsExportCommand())
	cmd.AddCommand(c.presetsImportCommand())
	return cmd
}

func (c *CLI) presetsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and custom presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := project.AllPresets(c.presetsPath())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMAX SIZE\tFLIP\tPADDING\tPOT\tPNG8\tSOURCE")
			for _, p := range presets {
				source := "custom"
				if p.IsBuiltIn {
					source = "built-in"
				}
				s := p.Settings
				fmt.Fprintf(tw, "%s\t%d\t%t\t%d\t%t\t%t\t%s\n",
					p.Name, s.MaxSize, s.AllowFlipping, s.Padding, s.PowerOfTwo, s.IndexedPNG, source)
			}
			return tw.Flush()
		},
	}
}

func (c *CLI) presetsExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export NAME FILE",
		Short: "Write one preset to a JSON file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := project.AllPresets(c.presetsPath())
			if err != nil {
				return err
			}
			p, ok := model.FindPreset(presets, args[0])
			if !ok {
				return fmt.Errorf("unknown preset %q", args[0])
			}
			if err := project.ExportPreset(args[1], p); err != nil {
				return fmt.Errorf("failed to export preset: %w", err)
			}
			loggerFromContext(cmd.Context()).Info("preset exported", "name", p.Name, "path", args[1])
			return nil
		},
	}
}

// presetsImportCommand adds a preset to the custom store, replacing any
// custom preset of the same name. Built-in names cannot be shadowed.
func (c *CLI) presetsImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Add a preset from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.ImportPreset(args[0])
			if err != nil {
				return fmt.Errorf("failed to import preset: %w", err)
			}
			if _, ok := model.FindPreset(model.BuiltInPresets(), p.Name); ok {
				return fmt.Errorf("preset %q is built in and cannot be replaced", p.Name)
			}

			path := c.presetsPath()
			custom, err := project.LoadCustomPresets(path)
			if err != nil {
				return err
			}
			kept := custom[:0]
			for _, existing := range custom {
				if !strings.EqualFold(existing.Name, p.Name) {
					kept = append(kept, existing)
				}
			}
			if err := project.SaveCustomPresets(path, append(kept, p)); err != nil {
				return fmt.Errorf("failed to save presets: %w", err)
			}
			loggerFromContext(cmd.Context()).Info("preset imported", "name", p.Name)
			return nil
		},
	}
}
