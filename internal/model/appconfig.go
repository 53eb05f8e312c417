package model

// AppConfig is the on-disk configuration: default atlas settings plus
// application preferences.
type AppConfig struct {
	// Defaults applied to every build
	Atlas Settings `json:"atlas" toml:"atlas"`

	// Solver cache: "" disables, a directory path or a redis:// URL
	Cache    string `json:"cache" toml:"cache"`
	CacheTTL string `json:"cache_ttl" toml:"cache_ttl"` // Go duration, "" = never expires

	// HTTP service
	ListenAddr string `json:"listen_addr" toml:"listen_addr"`

	// Recently used output directories, newest first
	RecentOutputs []string `json:"recent_outputs" toml:"recent_outputs"`
}

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultSettings().
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Atlas:         DefaultSettings(),
		Cache:         "",
		CacheTTL:      "",
		ListenAddr:    ":8080",
		RecentOutputs: []string{},
	}
}

// ApplyToSettings copies configured defaults into s. Zero values in the
// config leave s untouched so a partial file only overrides what it names.
func (c AppConfig) ApplyToSettings(s *Settings) {
	if c.Atlas.MaxSize != 0 {
		s.MaxSize = c.Atlas.MaxSize
	}
	if c.Atlas.Padding != 0 {
		s.Padding = c.Atlas.Padding
	}
	if c.Atlas.FilePrefix != "" {
		s.FilePrefix = c.Atlas.FilePrefix
	}
	s.AllowFlipping = c.Atlas.AllowFlipping
	s.PowerOfTwo = c.Atlas.PowerOfTwo
	s.IndexedPNG = c.Atlas.IndexedPNG
}

// AddRecentOutput records dir as the most recent output, keeping at most max entries.
func (c *AppConfig) AddRecentOutput(dir string, max int) {
	out := []string{dir}
	for _, d := range c.RecentOutputs {
		if d != dir {
			out = append(out, d)
		}
	}
	if len(out) > max {
		out = out[:max]
	}
	c.RecentOutputs = out
}
