package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "carrier-pigeon" }},
		{"zero view width", func(c *Config) { c.View.Width = 0 }},
		{"negative view height", func(c *Config) { c.View.Height = -10 }},
		{"send quality too high", func(c *Config) { c.Send.Quality = 150 }},
		{"send quality zero", func(c *Config) { c.Send.Quality = 0 }},
		{"negative send max dim", func(c *Config) { c.Send.MaxDim = -1 }},
		{"zero stroke ratio", func(c *Config) { c.Overlay.StrokeRatio = 0 }},
		{"huge cross ratio", func(c *Config) { c.Overlay.CrossRatio = 0.9 }},
		{"output quality", func(c *Config) { c.Output.Quality = 0 }},
	}

	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.json")

	cfg := Default()
	cfg.Backend = "ollama"
	cfg.Model = "llama3.2-vision"
	cfg.View.Width = 375
	cfg.View.Height = 667

	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if loaded.Backend != "ollama" || loaded.Model != "llama3.2-vision" {
		t.Errorf("Backend/model not preserved: %+v", loaded)
	}
	if loaded.View.Width != 375 || loaded.View.Height != 667 {
		t.Errorf("View not preserved: %+v", loaded.View)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestViewConfigSize(t *testing.T) {
	v := ViewConfig{Width: 390, Height: 844}
	s := v.Size()
	if s.Width != 390 || s.Height != 844 {
		t.Errorf("Expected 390x844, got %gx%g", s.Width, s.Height)
	}
}
