package export

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/atlaspack/internal/model"
)

func TestPageFileName(t *testing.T) {
	assert.Equal(t, "atlas-0.png", PageFileName("atlas", 0, ".png"))
	assert.Equal(t, "ui-12.json", PageFileName("ui", 12, ".json"))
}

func TestMarshalMetadata(t *testing.T) {
	result := buildTestResult(t)

	data, err := MarshalMetadata(result.Pages[0], model.DefaultSettings())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	meta := doc["meta"].(map[string]any)
	assert.Equal(t, model.AppName, meta["app"])
	assert.Equal(t, "atlas-0.png", meta["image"])
	assert.Equal(t, "RGBA8888", meta["format"])
	assert.Equal(t, "1", meta["scale"])
	assert.Equal(t, map[string]any{"w": 40.0, "h": 16.0}, meta["size"])

	frames := doc["frames"].(map[string]any)
	require.Len(t, frames, 2)
	sword := frames["sword.png"].(map[string]any)
	assert.Equal(t, true, sword["rotated"])
	assert.Equal(t, false, sword["trimmed"])
	assert.Equal(t, map[string]any{"x": 16.0, "y": 0.0, "w": 24.0, "h": 8.0}, sword["frame"])
	assert.Equal(t, sword["frame"], sword["spriteSourceSize"])
	assert.Equal(t, map[string]any{"w": 8.0, "h": 24.0}, sword["sourceSize"])
}

func TestNewMetadata_EmptyFramesEncodeAsObject(t *testing.T) {
	page := model.Page{Index: 0, Width: 1, Height: 1}
	data, err := json.Marshal(NewMetadata(page, model.DefaultSettings()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"frames":{}`)
}

func TestEncodePNG_Indexed(t *testing.T) {
	result := buildTestResult(t)
	settings := model.DefaultSettings()
	settings.IndexedPNG = true

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, result.Pages[0], settings))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	paletted, ok := img.(*image.Paletted)
	require.True(t, ok, "expected a paletted image, got %T", img)
	assert.LessOrEqual(t, len(paletted.Palette), 256)
	assert.Equal(t, image.Rect(0, 0, 40, 16), paletted.Bounds())

	meta := NewMetadata(result.Pages[0], settings)
	assert.Equal(t, "INDEXED8", meta.Meta.Format)
}

func TestEncodePNG_NoImage(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, EncodePNG(&buf, model.Page{}, model.DefaultSettings()))
}

func TestWriteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	result := buildTestResult(t)

	paths, err := WriteDir(dir, result, model.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "atlas-0.png"),
		filepath.Join(dir, "atlas-0.json"),
		filepath.Join(dir, "atlas-1.png"),
		filepath.Join(dir, "atlas-1.json"),
	}, paths)

	f, err := os.Open(filepath.Join(dir, "atlas-1.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 20), img.Bounds())
}

func TestWriteDir_NoPages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteDir(dir, model.BuildResult{}, model.DefaultSettings())
	require.NoError(t, err)
	assert.Empty(t, paths)
	assert.DirExists(t, dir)
}

func TestWriteArchive(t *testing.T) {
	var buf bytes.Buffer
	settings := model.DefaultSettings()
	settings.FilePrefix = "ui"
	require.NoError(t, WriteArchive(&buf, buildTestResult(t), settings))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		assert.Equal(t, zip.Store, f.Method)
	}
	assert.Equal(t, []string{"ui-0.png", "ui-0.json", "ui-1.png", "ui-1.json"}, names)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	defer rc.Close()
	var meta Metadata
	require.NoError(t, json.NewDecoder(rc).Decode(&meta))
	assert.Equal(t, "ui-0.png", meta.Meta.Image)
	assert.Len(t, meta.Frames, 2)
}

func TestWriteArchive_NoPages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, model.BuildResult{}, model.DefaultSettings()))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}

func TestWriteArchiveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.zip")
	require.NoError(t, WriteArchiveFile(path, buildTestResult(t), model.DefaultSettings()))
	assert.FileExists(t, path)
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.xlsx")
	require.NoError(t, ExportXLSX(path, buildTestResult(t), model.DefaultSettings()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Frames", "Pages"}, f.GetSheetList())

	rows, err := f.GetRows("Frames")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Page", "Name", "X", "Y", "W", "H", "Rotated", "Source W", "Source H"}, rows[0])
	assert.Equal(t, []string{"0", "sword.png", "16", "0", "24", "8", "TRUE", "8", "24"}, rows[2])

	pages, err := f.GetRows("Pages")
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, []string{"1", "atlas-1.png", "32", "20", "1", "100.0"}, pages[2])
}

func TestExportXLSX_Empty(t *testing.T) {
	err := ExportXLSX(filepath.Join(t.TempDir(), "x.xlsx"), model.BuildResult{}, model.DefaultSettings())
	assert.ErrorIs(t, err, ErrNothingToExport)
}
