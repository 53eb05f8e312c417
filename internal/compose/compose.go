// Package compose draws solved pages onto raster surfaces.
package compose

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/piwi3910/atlaspack/internal/model"
)

// ErrRasterize is returned when a page cannot be drawn. It is fatal for the
// whole build.
var ErrRasterize = errors.New("failed to rasterize page")

// Compose draws images onto a new BinWidth x BinHeight surface at the
// positions given by result and records a description for each. Flipped
// images are rotated 90 degrees clockwise. Source images are never modified.
func Compose(index int, images []model.SourceImage, result model.PackingResult) (model.Page, error) {
	if len(result.Placements) != len(images) {
		return model.Page{}, fmt.Errorf("%w %d: %d placements for %d images",
			ErrRasterize, index, len(result.Placements), len(images))
	}
	if result.BinWidth <= 0 || result.BinHeight <= 0 {
		return model.Page{}, fmt.Errorf("%w %d: invalid surface %dx%d",
			ErrRasterize, index, result.BinWidth, result.BinHeight)
	}

	frames, err := layout(images, result)
	if err != nil {
		return model.Page{}, fmt.Errorf("%w %d: %v", ErrRasterize, index, err)
	}

	surface := image.NewNRGBA(image.Rect(0, 0, result.BinWidth, result.BinHeight))
	page := model.Page{
		Index:  index,
		Image:  surface,
		Width:  result.BinWidth,
		Height: result.BinHeight,
		Frames: make(map[string]model.SubImageDescription, len(images)),
		Order:  make([]string, 0, len(images)),
	}

	for i, img := range images {
		frame := frames[i]
		flipped := result.Placements[i].Flipped

		var src image.Image = img.Image
		if flipped {
			src = imaging.Rotate270(img.Image)
		}
		draw.Copy(surface, image.Pt(frame.X, frame.Y), src, src.Bounds(), draw.Src, nil)

		page.Frames[img.Name] = model.NewSubImageDescription(frame, flipped, img.Size())
		page.Order = append(page.Order, img.Name)
	}

	return page, nil
}

// layout validates the inputs and returns the occupied frame of each image.
func layout(images []model.SourceImage, result model.PackingResult) ([]model.Rect, error) {
	frames := make([]model.Rect, len(images))
	names := make(map[string]bool, len(images))

	for i, img := range images {
		if img.Image == nil {
			return nil, fmt.Errorf("image %q has no pixel data", img.Name)
		}
		b := img.Image.Bounds()
		if b.Dx() != img.Width || b.Dy() != img.Height {
			return nil, fmt.Errorf("image %q decoded as %dx%d but declared %dx%d",
				img.Name, b.Dx(), b.Dy(), img.Width, img.Height)
		}
		if names[img.Name] {
			return nil, fmt.Errorf("duplicate image name %q", img.Name)
		}
		names[img.Name] = true

		f := result.Frame(i, img.Size())
		if !f.Within(result.BinWidth, result.BinHeight) {
			return nil, fmt.Errorf("image %q at (%d,%d) size %dx%d is outside the %dx%d page",
				img.Name, f.X, f.Y, f.W, f.H, result.BinWidth, result.BinHeight)
		}
		for j := 0; j < i; j++ {
			if f.Overlaps(frames[j]) {
				return nil, fmt.Errorf("image %q overlaps %q", img.Name, images[j].Name)
			}
		}
		frames[i] = f
	}
	return frames, nil
}
