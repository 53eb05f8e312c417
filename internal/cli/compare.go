package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/atlaspack/internal/engine"
)

// compareCommand creates the "compare" command.
func (c *CLI) compareCommand() *cobra.Command {
	var (
		sf       settingsFlags
		manifest string
	)

	cmd := &cobra.Command{
		Use:   "compare [paths...]",
		Short: "Compare page counts and waste across alternative settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			settings, err := sf.resolve(cmd, c)
			if err != nil {
				return err
			}
			images, err := loadInputs(args, manifest, logger)
			if err != nil {
				return err
			}

			solver, closeCache, err := c.newSolver(ctx, sf.cacheLocation(c), logger)
			if err != nil {
				return err
			}
			defer closeCache()

			results := engine.CompareScenarios(engine.BuildDefaultScenarios(settings), images, engine.WithSolver(solver))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SCENARIO\tPAGES\tIMAGES\tREJECTED\tPIXELS\tWASTE\tSOLVER CALLS")
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(tw, "%s\terror: %v\t\t\t\t\t\n", r.Scenario.Name, r.Err)
					continue
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.1f%%\t%d\n",
					r.Scenario.Name, r.Pages, r.Images, r.Rejected, r.TotalPixels, r.WastePercent, r.SolverCalls)
			}
			return tw.Flush()
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVar(&manifest, "manifest", "", "CSV or XLSX list of image paths and names")
	return cmd
}
