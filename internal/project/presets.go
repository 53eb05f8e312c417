package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/piwi3910/atlaspack/internal/model"
)

// DefaultPresetsPath returns the default file path for custom presets.
func DefaultPresetsPath() string {
	return filepath.Join(DefaultConfigDir(), "presets.toml")
}

// presetFile is the on-disk layout of the presets store.
type presetFile struct {
	Presets []model.Preset `json:"presets" toml:"presets"`
}

// SaveCustomPresets saves custom presets as TOML, or JSON for .json paths.
func SaveCustomPresets(path string, presets []model.Preset) error {
	data, err := encode(path, presetFile{Presets: presets})
	if err != nil {
		return fmt.Errorf("failed to encode presets: %w", err)
	}
	return writeFile(path, data)
}

// LoadCustomPresets loads custom presets. Returns an empty slice if the file
// does not exist.
func LoadCustomPresets(path string) ([]model.Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Preset{}, nil
		}
		return nil, err
	}

	var file presetFile
	if err := decode(path, data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse presets %s: %w", path, err)
	}
	if file.Presets == nil {
		file.Presets = []model.Preset{}
	}
	for i := range file.Presets {
		file.Presets[i].IsBuiltIn = false
	}
	return file.Presets, nil
}

// AllPresets returns the built-in presets followed by the custom presets
// stored at path.
func AllPresets(path string) ([]model.Preset, error) {
	custom, err := LoadCustomPresets(path)
	if err != nil {
		return nil, err
	}
	return append(model.BuiltInPresets(), custom...), nil
}

// ExportPreset exports a single preset to a JSON file for sharing.
func ExportPreset(path string, preset model.Preset) error {
	preset.IsBuiltIn = false
	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// ImportPreset imports a single preset from a JSON file.
func ImportPreset(path string) (model.Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Preset{}, err
	}

	var preset model.Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return model.Preset{}, err
	}
	if preset.Name == "" {
		return model.Preset{}, errors.New("imported preset has no name")
	}
	if err := preset.Settings.Validate(); err != nil {
		return model.Preset{}, fmt.Errorf("imported preset %q: %w", preset.Name, err)
	}
	return preset, nil
}
