package model

import "strings"

// Preset is a named set of atlas settings.
type Preset struct {
	Name      string   `json:"name" toml:"name"`
	Settings  Settings `json:"settings" toml:"settings"`
	IsBuiltIn bool     `json:"-" toml:"-"`
}

// BuiltInPresets returns the presets shipped with the application.
func BuiltInPresets() []Preset {
	mobile := DefaultSettings()
	mobile.PowerOfTwo = true

	desktop := DefaultSettings()
	desktop.MaxSize = MaxAllowedSize

	ui := DefaultSettings()
	ui.AllowFlipping = false
	ui.Padding = 2

	compact := DefaultSettings()
	compact.IndexedPNG = true

	return []Preset{
		{Name: "mobile", Settings: mobile, IsBuiltIn: true},
		{Name: "desktop", Settings: desktop, IsBuiltIn: true},
		{Name: "ui", Settings: ui, IsBuiltIn: true},
		{Name: "compact", Settings: compact, IsBuiltIn: true},
	}
}

// FindPreset returns the preset with the given name, compared
// case-insensitively. Earlier entries win.
func FindPreset(presets []Preset, name string) (Preset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}
