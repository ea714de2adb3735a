package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RequestSpacing != 500*time.Millisecond {
		t.Errorf("expected RequestSpacing=500ms, got %v", cfg.RequestSpacing)
	}
	if cfg.PageSize != 100 {
		t.Errorf("expected PageSize=100, got %d", cfg.PageSize)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("COURSECAST_BASE_URL", "")
	t.Setenv("COURSECAST_TOKEN", "")
	t.Setenv("CANVAS_API_TOKEN", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.BaseURL = "https://canvas.example.edu"
	cfg.Token = "secret-token"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.BaseURL != "https://canvas.example.edu" {
		t.Errorf("expected BaseURL round-trip, got %s", loaded.BaseURL)
	}
	if loaded.Token != "secret-token" {
		t.Errorf("expected Token round-trip, got %s", loaded.Token)
	}
}

func TestConfig_LoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("COURSECAST_BASE_URL", "")
	t.Setenv("COURSECAST_TOKEN", "")
	t.Setenv("CANVAS_API_TOKEN", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Token != "" || cfg.BaseURL != "" {
		t.Errorf("expected empty credentials, got %+v", cfg)
	}
	if cfg.PageSize != 100 {
		t.Errorf("expected default PageSize, got %d", cfg.PageSize)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("COURSECAST_BASE_URL", "https://env.example.edu")
	t.Setenv("COURSECAST_TOKEN", "env-token")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "https://env.example.edu" {
		t.Errorf("expected env BaseURL, got %s", cfg.BaseURL)
	}
	if cfg.Token != "env-token" {
		t.Errorf("expected env Token, got %s", cfg.Token)
	}
}

func TestConfig_SetBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://canvas.example.edu", "https://canvas.example.edu", false},
		{"https://canvas.example.edu/", "https://canvas.example.edu", false},
		{"http://canvas.example.edu", "https://canvas.example.edu", false},
		{"canvas.example.edu", "https://canvas.example.edu", false},
		{"ftp://canvas.example.edu", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		var c Config
		err := c.SetBaseURL(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("SetBaseURL(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("SetBaseURL(%q): %v", tt.in, err)
			continue
		}
		if c.BaseURL != tt.want {
			t.Errorf("SetBaseURL(%q) = %q, want %q", tt.in, c.BaseURL, tt.want)
		}
	}
}

func TestConfig_ClearToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.BaseURL = "https://canvas.example.edu"
	cfg.Token = "stale"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := cfg.ClearToken(path); err != nil {
		t.Fatalf("ClearToken failed: %v", err)
	}
	if cfg.Token != "" {
		t.Error("token not cleared in memory")
	}

	t.Setenv("COURSECAST_TOKEN", "")
	t.Setenv("CANVAS_API_TOKEN", "")
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Token != "" {
		t.Error("token not cleared on disk")
	}
}

func TestConfig_MaskedToken(t *testing.T) {
	c := Config{Token: "abcdefgh1234"}
	masked := c.MaskedToken()
	if masked == c.Token {
		t.Fatal("masked token must not equal the raw token")
	}
	if want := "****1234 (len=12)"; masked != want {
		t.Errorf("MaskedToken() = %q, want %q", masked, want)
	}
}
