package cli

import (
	"github.com/spf13/cobra"

	"github.com/piwi3910/atlaspack/internal/model"
	"github.com/piwi3910/atlaspack/internal/server"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		cacheLoc string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP atlas service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if !cmd.Flags().Changed("addr") && c.config.ListenAddr != "" {
				addr = c.config.ListenAddr
			}
			if cacheLoc == "" {
				cacheLoc = c.config.Cache
			}

			settings := model.DefaultSettings()
			c.config.ApplyToSettings(&settings)
			if err := settings.Validate(); err != nil {
				return err
			}

			solver, closeCache, err := c.newSolver(ctx, cacheLoc, logger)
			if err != nil {
				return err
			}
			defer closeCache()

			srv := server.New(settings, logger)
			srv.Solver = solver
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&cacheLoc, "cache", "", "solver cache: a directory or redis:// URL (overrides config)")
	return cmd
}
