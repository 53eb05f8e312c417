// Package intake loads source images and prepares them for packing.
package intake

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/atlaspack/internal/model"
)

// ErrDecode is returned when an input cannot be decoded as an image.
var ErrDecode = errors.New("failed to decode image")

// supportedExts lists the extensions picked up when scanning a directory.
var supportedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImagePath reports whether path has a supported image extension.
func IsImagePath(path string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(path))]
}

// Decode reads one image. An empty name gets a generated identity.
func Decode(name string, r io.Reader) (model.SourceImage, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return model.SourceImage{}, fmt.Errorf("%w %q: %v", ErrDecode, name, err)
	}
	b := img.Bounds()
	if b.Empty() {
		return model.SourceImage{}, fmt.Errorf("%w %q: empty %s image", ErrDecode, name, format)
	}
	return model.NewSourceImage(name, img), nil
}

// LoadFile decodes the file at path. Its identity is the file's base name.
func LoadFile(path string) (model.SourceImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.SourceImage{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decode(filepath.Base(path), f)
}

// LoadDir decodes every image file directly inside dir, in name order.
// Hidden files and subdirectories are skipped.
func LoadDir(dir string) ([]model.SourceImage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var images []model.SourceImage
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !IsImagePath(name) {
			continue
		}
		img, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// LoadPaths loads each path, expanding directories with LoadDir.
func LoadPaths(paths []string) ([]model.SourceImage, error) {
	var images []model.SourceImage
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat input: %w", err)
		}
		if info.IsDir() {
			dirImages, err := LoadDir(p)
			if err != nil {
				return nil, err
			}
			images = append(images, dirImages...)
			continue
		}
		img, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// Uniquify renames images whose identity was already taken by an earlier one,
// appending ~2, ~3 and so on. The input slice is not modified.
func Uniquify(images []model.SourceImage, logger *log.Logger) []model.SourceImage {
	if logger == nil {
		logger = log.Default()
	}

	out := make([]model.SourceImage, len(images))
	taken := make(map[string]bool, len(images))
	for _, img := range images {
		taken[img.Name] = true
	}

	seen := make(map[string]bool, len(images))
	for i, img := range images {
		if seen[img.Name] {
			original := img.Name
			n := 2
			for taken[fmt.Sprintf("%s~%d", original, n)] {
				n++
			}
			img.Name = fmt.Sprintf("%s~%d", original, n)
			taken[img.Name] = true
			logger.Warn("duplicate image name renamed", "name", original, "renamed", img.Name)
		}
		seen[img.Name] = true
		out[i] = img
	}
	return out
}

// Filter orders images ascending by area and removes any whose width or
// height exceeds maxSide. Ties keep their input order. Each removed image
// is logged as a warning. Filtering an already filtered list changes nothing.
func Filter(images []model.SourceImage, maxSide int, logger *log.Logger) (admitted, rejected []model.SourceImage) {
	if logger == nil {
		logger = log.Default()
	}

	sorted := make([]model.SourceImage, len(images))
	copy(sorted, images)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Area() < sorted[j].Area()
	})

	admitted = make([]model.SourceImage, 0, len(sorted))
	for _, img := range sorted {
		if img.Width > maxSide || img.Height > maxSide {
			logger.Warn("image exceeds max size and will be skipped",
				"name", img.Name,
				"width", img.Width,
				"height", img.Height,
				"max_size", maxSide)
			rejected = append(rejected, img)
			continue
		}
		admitted = append(admitted, img)
	}
	return admitted, rejected
}
