package engine

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/atlaspack/internal/model"
)

// ErrUnpackable is returned when the solver rejects a single image on an
// empty page. Admitted images always fit alone, so this means the oversize
// filter was bypassed or the solver broke its contract.
var ErrUnpackable = errors.New("image does not fit on an empty page")

// Assignment is one solved page: the images in request order and the
// solver's placements for them.
type Assignment struct {
	Images []model.SourceImage
	Result model.PackingResult
}

// Allocator splits an ascending-by-area image list into pages.
type Allocator struct {
	Solver   Solver
	Settings model.Settings
	Logger   *log.Logger
}

// NewAllocator creates an allocator. A nil logger means log.Default().
func NewAllocator(solver Solver, settings model.Settings, logger *log.Logger) *Allocator {
	if logger == nil {
		logger = log.Default()
	}
	return &Allocator{Solver: solver, Settings: settings, Logger: logger}
}

// Allocate assigns every image to exactly one page.
//
// Each page attempt starts from all remaining images. When the solver fails,
// the largest candidate (the last one, since images are sorted ascending by
// area) is deferred to the next page and the attempt is retried with one
// image fewer. Deferred images keep their relative order. A page attempt with
// n candidates makes at most n solver calls, so a build over n images makes at
// most n(n+1)/2.
func (a *Allocator) Allocate(images []model.SourceImage) ([]Assignment, model.BuildStats, error) {
	var stats model.BuildStats
	var pages []Assignment

	remaining := images
	for len(remaining) > 0 {
		candidates := remaining[:len(remaining):len(remaining)]

		for {
			stats.SolverCalls++
			res, ok := a.Solver.Solve(a.Settings.Request(sizesOf(candidates)))
			if ok {
				if err := checkResult(res, candidates, a.Settings.MaxSize); err != nil {
					return nil, stats, err
				}
				pages = append(pages, Assignment{Images: candidates, Result: res})
				a.Logger.Debug("page packed",
					"page", len(pages)-1,
					"images", len(candidates),
					"width", res.BinWidth,
					"height", res.BinHeight,
					"deferred", len(remaining)-len(candidates))
				break
			}

			if len(candidates) == 1 {
				img := candidates[0]
				return nil, stats, fmt.Errorf("%w: %q (%dx%d) with max size %d",
					ErrUnpackable, img.Name, img.Width, img.Height, a.Settings.MaxSize)
			}

			stats.Retries++
			last := candidates[len(candidates)-1]
			a.Logger.Debug("page attempt failed, deferring largest image",
				"image", last.Name,
				"candidates", len(candidates)-1)
			candidates = candidates[: len(candidates)-1 : len(candidates)-1]
		}

		// Deferred images are exactly the suffix that did not make the page.
		remaining = remaining[len(candidates):]
	}

	stats.Pages = len(pages)
	return pages, stats, nil
}

// checkResult verifies the parts of the solver contract the compositor
// depends on.
func checkResult(res model.PackingResult, images []model.SourceImage, maxSide int) error {
	if len(res.Placements) != len(images) {
		return fmt.Errorf("solver returned %d placements for %d images", len(res.Placements), len(images))
	}
	if res.BinWidth <= 0 || res.BinHeight <= 0 || res.BinWidth > maxSide || res.BinHeight > maxSide {
		return fmt.Errorf("solver returned bin %dx%d outside 1..%d", res.BinWidth, res.BinHeight, maxSide)
	}
	return nil
}

func sizesOf(images []model.SourceImage) []model.Size {
	sizes := make([]model.Size, len(images))
	for i, img := range images {
		sizes[i] = img.Size()
	}
	return sizes
}
