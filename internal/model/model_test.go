package model

import (
	"errors"
	"image"
	"strings"
	"testing"
)

func TestRectOverlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}

	cases := []struct {
		name string
		b    Rect
		want bool
	}{
		{"same", a, true},
		{"inside", Rect{X: 2, Y: 2, W: 2, H: 2}, true},
		{"touching right edge", Rect{X: 10, Y: 0, W: 5, H: 5}, false},
		{"touching bottom edge", Rect{X: 0, Y: 10, W: 5, H: 5}, false},
		{"corner overlap", Rect{X: 9, Y: 9, W: 5, H: 5}, true},
		{"disjoint", Rect{X: 20, Y: 20, W: 1, H: 1}, false},
	}
	for _, c := range cases {
		if got := a.Overlaps(c.b); got != c.want {
			t.Errorf("%s: Overlaps=%v, want %v", c.name, got, c.want)
		}
		if got := c.b.Overlaps(a); got != c.want {
			t.Errorf("%s (reversed): Overlaps=%v, want %v", c.name, got, c.want)
		}
	}
}

func TestRectWithin(t *testing.T) {
	if !(Rect{X: 0, Y: 0, W: 10, H: 10}).Within(10, 10) {
		t.Error("rect filling the area should be within it")
	}
	if (Rect{X: 1, Y: 0, W: 10, H: 10}).Within(10, 10) {
		t.Error("rect crossing the right edge should not be within")
	}
	if (Rect{X: -1, Y: 0, W: 1, H: 1}).Within(10, 10) {
		t.Error("negative origin should not be within")
	}
}

func TestNewSourceImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 30, 20))

	s := NewSourceImage("hero.png", img)
	if s.Name != "hero.png" || s.Width != 30 || s.Height != 20 {
		t.Errorf("unexpected source image: %+v", s)
	}
	if s.Area() != 600 {
		t.Errorf("expected area 600, got %d", s.Area())
	}

	unnamed := NewSourceImage("", img)
	if !strings.HasPrefix(unnamed.Name, "image-") {
		t.Errorf("expected generated name, got %q", unnamed.Name)
	}
	other := NewSourceImage("", img)
	if unnamed.Name == other.Name {
		t.Error("generated names should differ")
	}
}

func TestPackingResultFrame(t *testing.T) {
	r := PackingResult{
		Placements: []Placement{{X: 5, Y: 6}, {X: 0, Y: 0, Flipped: true}},
		BinWidth:   100,
		BinHeight:  100,
	}
	s := Size{W: 10, H: 20}

	if got := r.Frame(0, s); got != (Rect{X: 5, Y: 6, W: 10, H: 20}) {
		t.Errorf("unexpected frame: %+v", got)
	}
	if got := r.Frame(1, s); got != (Rect{X: 0, Y: 0, W: 20, H: 10}) {
		t.Errorf("flipped frame should swap sides: %+v", got)
	}
}

func TestNewSubImageDescriptionMirrorsFrame(t *testing.T) {
	frame := Rect{X: 1, Y: 2, W: 3, H: 4}
	d := NewSubImageDescription(frame, true, Size{W: 4, H: 3})

	if d.SpriteSourceSize != frame {
		t.Errorf("spriteSourceSize should mirror frame, got %+v", d.SpriteSourceSize)
	}
	if d.Trimmed {
		t.Error("trimmed should always be false")
	}
	if !d.Rotated {
		t.Error("expected rotated")
	}
}

func TestPageEfficiency(t *testing.T) {
	p := Page{
		Width:  10,
		Height: 10,
		Frames: map[string]SubImageDescription{
			"a": NewSubImageDescription(Rect{W: 5, H: 10}, false, Size{W: 5, H: 10}),
		},
	}
	if p.Efficiency() != 50.0 {
		t.Errorf("expected 50%% efficiency, got %f", p.Efficiency())
	}
	if (Page{}).Efficiency() != 0 {
		t.Error("empty page should report zero efficiency")
	}

	br := BuildResult{Pages: []Page{p, p}}
	if br.ImageCount() != 2 {
		t.Errorf("expected 2 images, got %d", br.ImageCount())
	}
	if br.TotalEfficiency() != 50.0 {
		t.Errorf("expected 50%% total efficiency, got %f", br.TotalEfficiency())
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.MaxSize != 2048 {
		t.Errorf("expected default max size 2048, got %d", s.MaxSize)
	}
	if !s.AllowFlipping {
		t.Error("expected flipping enabled by default")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if s.ExceedsRecommended() {
		t.Error("default max size should not exceed the recommended size")
	}
}

func TestSettingsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero max size", func(s *Settings) { s.MaxSize = 0 }},
		{"max size too large", func(s *Settings) { s.MaxSize = 8192 }},
		{"negative padding", func(s *Settings) { s.Padding = -1 }},
		{"power of two mismatch", func(s *Settings) { s.PowerOfTwo = true; s.MaxSize = 1000 }},
		{"empty prefix", func(s *Settings) { s.FilePrefix = "" }},
	}
	for _, c := range cases {
		s := DefaultSettings()
		c.mutate(&s)
		err := s.Validate()
		if !errors.Is(err, ErrInvalidSettings) {
			t.Errorf("%s: expected ErrInvalidSettings, got %v", c.name, err)
		}
	}

	s := DefaultSettings()
	s.MaxSize = 4096
	if err := s.Validate(); err != nil {
		t.Errorf("4096 should be accepted: %v", err)
	}
	if !s.ExceedsRecommended() {
		t.Error("4096 should exceed the recommended size")
	}
}

func TestPowerOfTwoHelpers(t *testing.T) {
	for _, n := range []int{1, 2, 64, 2048} {
		if !IsPowerOfTwo(n) {
			t.Errorf("%d should be a power of two", n)
		}
	}
	for _, n := range []int{0, 3, 100, -4} {
		if IsPowerOfTwo(n) {
			t.Errorf("%d should not be a power of two", n)
		}
	}
	if NextPowerOfTwo(100) != 128 || NextPowerOfTwo(128) != 128 || NextPowerOfTwo(1) != 1 {
		t.Error("NextPowerOfTwo returned unexpected values")
	}
}

func TestBuiltInPresetsAreValid(t *testing.T) {
	for _, p := range BuiltInPresets() {
		if !p.IsBuiltIn {
			t.Errorf("preset %s should be built in", p.Name)
		}
		if err := p.Settings.Validate(); err != nil {
			t.Errorf("preset %s: %v", p.Name, err)
		}
	}
}

func TestFindPreset(t *testing.T) {
	presets := append(BuiltInPresets(), Preset{Name: "Mobile", Settings: DefaultSettings()})

	p, ok := FindPreset(presets, "MOBILE")
	if !ok {
		t.Fatal("expected to find mobile preset")
	}
	if !p.IsBuiltIn || !p.Settings.PowerOfTwo {
		t.Errorf("expected the built-in mobile preset, got %+v", p)
	}

	if _, ok := FindPreset(presets, "nope"); ok {
		t.Error("expected no match")
	}
}
