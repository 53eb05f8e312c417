package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/piwi3910/atlaspack/internal/model"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.atlaspack/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".atlaspack")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.toml")
}

// isJSON reports whether path should be read and written as JSON rather than TOML.
func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// encode renders v as JSON or TOML depending on the file extension.
func encode(path string, v any) ([]byte, error) {
	if isJSON(path) {
		return json.MarshalIndent(v, "", "  ")
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode parses data as JSON or TOML depending on the file extension.
func decode(path string, data []byte, v any) error {
	if isJSON(path) {
		return json.Unmarshal(data, v)
	}
	_, err := toml.Decode(string(data), v)
	return err
}

// writeFile creates any missing parent directories and writes data.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SaveAppConfig persists an AppConfig to the given path. Files ending in
// .json are written as JSON, everything else as TOML.
func SaveAppConfig(path string, config model.AppConfig) error {
	data, err := encode(path, config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return writeFile(path, data)
}

// LoadAppConfig reads an AppConfig from the given path. Keys missing from
// the file keep their default values. If the file does not exist, it returns
// DefaultAppConfig with no error.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return model.AppConfig{}, err
	}
	if err := decode(path, data, &config); err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if config.RecentOutputs == nil {
		config.RecentOutputs = []string{}
	}
	return config, nil
}
