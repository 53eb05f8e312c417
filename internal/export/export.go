// Package export writes built atlases to disk and to other formats: page
// images with JSON metadata, zip archives, PDF reports and spreadsheets.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/piwi3910/atlaspack/internal/model"
)

// Metadata is the JSON document written next to each page image.
type Metadata struct {
	Frames map[string]model.SubImageDescription `json:"frames"`
	Meta   MetaInfo                             `json:"meta"`
}

// MetaInfo describes the page image.
type MetaInfo struct {
	App     string     `json:"app"`
	Version string     `json:"version"`
	Image   string     `json:"image"`
	Format  string     `json:"format"`
	Size    model.Size `json:"size"`
	Scale   string     `json:"scale"`
}

// PageFileName returns "<prefix>-<index><ext>".
func PageFileName(prefix string, index int, ext string) string {
	return fmt.Sprintf("%s-%d%s", prefix, index, ext)
}

// NewMetadata describes page as it will be written with the given settings.
func NewMetadata(page model.Page, settings model.Settings) Metadata {
	format := "RGBA8888"
	if settings.IndexedPNG {
		format = "INDEXED8"
	}
	frames := page.Frames
	if frames == nil {
		frames = map[string]model.SubImageDescription{}
	}
	return Metadata{
		Frames: frames,
		Meta: MetaInfo{
			App:     model.AppName,
			Version: model.Version,
			Image:   PageFileName(settings.FilePrefix, page.Index, ".png"),
			Format:  format,
			Size:    model.Size{W: page.Width, H: page.Height},
			Scale:   "1",
		},
	}
}

// MarshalMetadata renders the page metadata as indented JSON.
func MarshalMetadata(page model.Page, settings model.Settings) ([]byte, error) {
	data, err := json.MarshalIndent(NewMetadata(page, settings), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return data, nil
}

// EncodePNG writes the page surface. With IndexedPNG the surface is reduced
// to a 256 colour palette first.
func EncodePNG(w io.Writer, page model.Page, settings model.Settings) error {
	if page.Image == nil {
		return fmt.Errorf("page %d has no image", page.Index)
	}
	var img image.Image = page.Image
	if settings.IndexedPNG {
		img = Paletted(page.Image)
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode page %d: %w", page.Index, err)
	}
	return nil
}

// pageFile is one output file in memory.
type pageFile struct {
	name string
	data []byte
}

// renderPages encodes every page to its PNG and JSON files, in page order.
func renderPages(result model.BuildResult, settings model.Settings) ([]pageFile, error) {
	files := make([]pageFile, 0, 2*len(result.Pages))
	for _, page := range result.Pages {
		var buf bytes.Buffer
		if err := EncodePNG(&buf, page, settings); err != nil {
			return nil, err
		}
		meta, err := MarshalMetadata(page, settings)
		if err != nil {
			return nil, err
		}
		files = append(files,
			pageFile{name: PageFileName(settings.FilePrefix, page.Index, ".png"), data: buf.Bytes()},
			pageFile{name: PageFileName(settings.FilePrefix, page.Index, ".json"), data: meta},
		)
	}
	return files, nil
}

// WriteDir writes every page image and metadata file into dir, creating it if
// needed, and returns the written paths.
func WriteDir(dir string, result model.BuildResult, settings model.Settings) ([]string, error) {
	files, err := renderPages(result, settings)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteArchive writes every page image and metadata file into a zip archive.
// Entries are stored uncompressed since PNG data is already compressed.
func WriteArchive(w io.Writer, result model.BuildResult, settings model.Settings) error {
	files, err := renderPages(result, settings)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	now := time.Now()
	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.name,
			Method:   zip.Store,
			Modified: now,
		})
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", f.name, err)
		}
		if _, err := fw.Write(f.data); err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}

// WriteArchiveFile writes the archive to path.
func WriteArchiveFile(path string, result model.BuildResult, settings model.Settings) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	if err := WriteArchive(f, result, settings); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
