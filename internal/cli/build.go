package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/atlaspack/internal/engine"
	"github.com/piwi3910/atlaspack/internal/export"
	"github.com/piwi3910/atlaspack/internal/importer"
	"github.com/piwi3910/atlaspack/internal/intake"
	"github.com/piwi3910/atlaspack/internal/model"
	"github.com/piwi3910/atlaspack/internal/project"
)

// settingsFlags are the flags that override atlas settings.
type settingsFlags struct {
	preset   string
	maxSize  int
	noFlip   bool
	padding  int
	pot      bool
	png8     bool
	prefix   string
	cacheLoc string
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	defaults := model.DefaultSettings()
	cmd.Flags().StringVar(&f.preset, "preset", "", "start from a named preset instead of the configured defaults")
	cmd.Flags().IntVar(&f.maxSize, "max-size", defaults.MaxSize, "maximum page width and height in pixels")
	cmd.Flags().BoolVar(&f.noFlip, "no-flip", false, "never rotate images")
	cmd.Flags().IntVar(&f.padding, "padding", defaults.Padding, "pixels between images")
	cmd.Flags().BoolVar(&f.pot, "pot", false, "round page sizes up to powers of two")
	cmd.Flags().BoolVar(&f.png8, "png8", false, "write 256 colour indexed PNGs")
	cmd.Flags().StringVar(&f.prefix, "prefix", defaults.FilePrefix, "output file name prefix")
	cmd.Flags().StringVar(&f.cacheLoc, "cache", "", "solver cache: a directory or redis:// URL (overrides config)")
}

// resolve layers settings: defaults, then the config file or a preset, then
// any flag the user set explicitly.
func (f *settingsFlags) resolve(cmd *cobra.Command, c *CLI) (model.Settings, error) {
	settings := model.DefaultSettings()

	if f.preset != "" {
		presets, err := project.AllPresets(c.presetsPath())
		if err != nil {
			return settings, fmt.Errorf("failed to load presets: %w", err)
		}
		p, ok := model.FindPreset(presets, f.preset)
		if !ok {
			return settings, fmt.Errorf("unknown preset %q", f.preset)
		}
		settings = p.Settings
	} else {
		c.config.ApplyToSettings(&settings)
	}

	flags := cmd.Flags()
	if flags.Changed("max-size") {
		settings.MaxSize = f.maxSize
	}
	if flags.Changed("no-flip") {
		settings.AllowFlipping = !f.noFlip
	}
	if flags.Changed("padding") {
		settings.Padding = f.padding
	}
	if flags.Changed("pot") {
		settings.PowerOfTwo = f.pot
	}
	if flags.Changed("png8") {
		settings.IndexedPNG = f.png8
	}
	if flags.Changed("prefix") {
		settings.FilePrefix = f.prefix
	}
	return settings, settings.Validate()
}

// cacheLocation prefers the flag over the config file.
func (f *settingsFlags) cacheLocation(c *CLI) string {
	if f.cacheLoc != "" {
		return f.cacheLoc
	}
	return c.config.Cache
}

// loadInputs decodes the positional paths and any manifest entries, then
// makes every identity unique.
func loadInputs(paths []string, manifest string, logger *log.Logger) ([]model.SourceImage, error) {
	images, err := intake.LoadPaths(paths)
	if err != nil {
		return nil, err
	}

	if manifest != "" {
		res := importer.Import(manifest)
		for _, w := range res.Warnings {
			logger.Warn("manifest", "msg", w)
		}
		if len(res.Errors) > 0 {
			return nil, fmt.Errorf("failed to import manifest %s: %s", manifest, strings.Join(res.Errors, "; "))
		}
		listed, err := importer.Load(res.Entries)
		if err != nil {
			return nil, err
		}
		images = append(images, listed...)
	}

	if len(images) == 0 {
		return nil, errors.New("no input images: pass files, directories or --manifest")
	}
	return intake.Uniquify(images, logger), nil
}

// buildCommand creates the "build" command.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		sf       settingsFlags
		outDir   string
		zipPath  string
		manifest string
		pdfPath  string
		xlsxPath string
	)

	cmd := &cobra.Command{
		Use:   "build [paths...]",
		Short: "Pack images into atlas pages",
		Long: `Build packs the given image files and directories into atlas pages.
Each page is written as <prefix>-<n>.png with a matching <prefix>-<n>.json.
Images larger than --max-size on either side are skipped with a warning.`,
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
			defer func() {
				if err := closeCache(); err != nil {
					logger.Warn("failed to close solver cache", "err", err)
				}
			}()

			prog := newProgress(logger)
			result, err := engine.New(settings, engine.WithSolver(solver), engine.WithLogger(logger)).Build(images)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Built %d pages from %d images", len(result.Pages), result.ImageCount()))

			if outDir == "" && zipPath == "" {
				outDir = "."
			}
			if outDir != "" {
				paths, err := export.WriteDir(outDir, result, settings)
				if err != nil {
					return err
				}
				logger.Info("pages written", "dir", outDir, "files", len(paths))
				c.recordOutput(cmd, outDir)
			}
			if zipPath != "" {
				if err := export.WriteArchiveFile(zipPath, result, settings); err != nil {
					return err
				}
				logger.Info("archive written", "path", zipPath)
			}
			if pdfPath != "" {
				if err := export.ExportPDF(pdfPath, result, settings); err != nil {
					return err
				}
				logger.Info("report written", "path", pdfPath)
			}
			if xlsxPath != "" {
				if err := export.ExportXLSX(xlsxPath, result, settings); err != nil {
					return err
				}
				logger.Info("spreadsheet written", "path", xlsxPath)
			}
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: current directory unless --zip is set)")
	cmd.Flags().StringVar(&zipPath, "zip", "", "write every page into this zip archive")
	cmd.Flags().StringVar(&manifest, "manifest", "", "CSV or XLSX list of image paths and names")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "write a PDF report")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write an XLSX frame table")

	return cmd
}

// recordOutput remembers dir in the config file. Failures only warn.
func (c *CLI) recordOutput(cmd *cobra.Command, dir string) {
	logger := loggerFromContext(cmd.Context())
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	c.config.AddRecentOutput(dir, maxRecentOutputs)
	if err := project.SaveAppConfig(c.configPath, c.config); err != nil {
		logger.Warn("failed to save recent outputs", "err", err)
	}
}
