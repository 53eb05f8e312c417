package model

import "testing"

func TestDefaultAppConfigMatchesDefaultSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultSettings()

	if cfg.Atlas != defaults {
		t.Errorf("atlas defaults mismatch: config=%+v settings=%+v", cfg.Atlas, defaults)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected default listen addr :8080, got %s", cfg.ListenAddr)
	}
	if cfg.RecentOutputs == nil {
		t.Error("RecentOutputs should not be nil")
	}
}

func TestApplyToSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.Atlas.MaxSize = 1024
	cfg.Atlas.AllowFlipping = false
	cfg.Atlas.Padding = 2
	cfg.Atlas.FilePrefix = "sprites"

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	if s.MaxSize != 1024 {
		t.Errorf("expected MaxSize=1024, got %d", s.MaxSize)
	}
	if s.AllowFlipping {
		t.Error("expected AllowFlipping=false")
	}
	if s.Padding != 2 {
		t.Errorf("expected Padding=2, got %d", s.Padding)
	}
	if s.FilePrefix != "sprites" {
		t.Errorf("expected FilePrefix=sprites, got %s", s.FilePrefix)
	}
}

func TestApplyToSettingsKeepsUnsetValues(t *testing.T) {
	cfg := AppConfig{Atlas: Settings{AllowFlipping: true}}

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	if s.MaxSize != DefaultMaxSize {
		t.Errorf("expected MaxSize to stay %d, got %d", DefaultMaxSize, s.MaxSize)
	}
	if s.FilePrefix != "atlas" {
		t.Errorf("expected FilePrefix to stay atlas, got %s", s.FilePrefix)
	}
}

func TestAddRecentOutput(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentOutput("/a", 2)
	cfg.AddRecentOutput("/b", 2)
	cfg.AddRecentOutput("/a", 2)
	cfg.AddRecentOutput("/c", 2)

	if len(cfg.RecentOutputs) != 2 {
		t.Fatalf("expected 2 recent outputs, got %d", len(cfg.RecentOutputs))
	}
	if cfg.RecentOutputs[0] != "/c" || cfg.RecentOutputs[1] != "/a" {
		t.Errorf("unexpected order: %v", cfg.RecentOutputs)
	}
}
