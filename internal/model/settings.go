package model

import (
	"errors"
	"fmt"
)

// Size limits for atlas pages.
const (
	DefaultMaxSize     = 2048
	RecommendedMaxSize = 2048 // Larger pages may not display on some mobile GPUs
	MaxAllowedSize     = 4096
)

// AppName is written into every metadata document.
const AppName = "atlaspack"

// Version is the release version, overridden at link time with
// -ldflags "-X github.com/piwi3910/atlaspack/internal/model.Version=...".
var Version = "1.0.0"

// ErrInvalidSettings is returned by Settings.Validate.
var ErrInvalidSettings = errors.New("invalid atlas settings")

// Settings holds the atlas build configuration.
type Settings struct {
	MaxSize       int    `json:"max_size" toml:"max_size"`             // Page side ceiling in pixels
	AllowFlipping bool   `json:"allow_flipping" toml:"allow_flipping"` // Permit 90 degree rotation
	Padding       int    `json:"padding" toml:"padding"`               // Pixels between sprites
	PowerOfTwo    bool   `json:"power_of_two" toml:"power_of_two"`     // Round page sizes up to powers of two
	IndexedPNG    bool   `json:"indexed_png" toml:"indexed_png"`       // Quantise pages to a 256 colour palette
	FilePrefix    string `json:"file_prefix" toml:"file_prefix"`       // Output file name prefix
}

func DefaultSettings() Settings {
	return Settings{
		MaxSize:       DefaultMaxSize,
		AllowFlipping: true,
		Padding:       0,
		PowerOfTwo:    false,
		IndexedPNG:    false,
		FilePrefix:    "atlas",
	}
}

// Validate checks that the settings describe a buildable atlas.
func (s Settings) Validate() error {
	if s.MaxSize < 1 || s.MaxSize > MaxAllowedSize {
		return fmt.Errorf("%w: max size %d must be between 1 and %d", ErrInvalidSettings, s.MaxSize, MaxAllowedSize)
	}
	if s.Padding < 0 {
		return fmt.Errorf("%w: padding %d must not be negative", ErrInvalidSettings, s.Padding)
	}
	if s.PowerOfTwo && !IsPowerOfTwo(s.MaxSize) {
		return fmt.Errorf("%w: max size %d must be a power of two when power_of_two is set", ErrInvalidSettings, s.MaxSize)
	}
	if s.FilePrefix == "" {
		return fmt.Errorf("%w: file prefix must not be empty", ErrInvalidSettings)
	}
	return nil
}

// ExceedsRecommended reports whether MaxSize is above the size most devices
// handle reliably.
func (s Settings) ExceedsRecommended() bool {
	return s.MaxSize > RecommendedMaxSize
}

// Request builds a solver request for the given sizes.
func (s Settings) Request(sizes []Size) PackingRequest {
	return PackingRequest{
		Sizes:      sizes,
		MaxSide:    s.MaxSize,
		AllowFlip:  s.AllowFlipping,
		Padding:    s.Padding,
		PowerOfTwo: s.PowerOfTwo,
	}
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
