package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Backend.UploadPath != "/upload" {
		t.Errorf("expected default upload path %q, got %q", "/upload", cfg.Backend.UploadPath)
	}
	if cfg.Backend.AskPath != "/ask" {
		t.Errorf("expected default ask path %q, got %q", "/ask", cfg.Backend.AskPath)
	}
	if cfg.Backend.Timeout != 0 {
		t.Errorf("expected no default timeout, got %s", cfg.Backend.Timeout)
	}
	if cfg.Viewer.Scale != 1.5 {
		t.Errorf("expected default scale 1.5, got %v", cfg.Viewer.Scale)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if !cfg.History.Enabled || cfg.History.Path == "" {
		t.Errorf("expected history enabled with a path, got %+v", cfg.History)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.contractqa.yml")

	original := DefaultConfig()
	original.Backend.URL = "https://qa.example.com"
	original.Backend.Timeout = 30 * time.Second
	original.Viewer.Scale = 2
	original.Viewer.OutputDir = "out"
	original.Log.Format = LogFormatJSON

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Backend.URL != original.Backend.URL {
		t.Errorf("backend.url: got %q, want %q", loaded.Backend.URL, original.Backend.URL)
	}
	if loaded.Backend.Timeout != original.Backend.Timeout {
		t.Errorf("backend.timeout: got %s, want %s", loaded.Backend.Timeout, original.Backend.Timeout)
	}
	if loaded.Viewer.Scale != original.Viewer.Scale {
		t.Errorf("viewer.scale: got %v, want %v", loaded.Viewer.Scale, original.Viewer.Scale)
	}
	if loaded.Viewer.OutputDir != original.Viewer.OutputDir {
		t.Errorf("viewer.output_dir: got %q, want %q", loaded.Viewer.OutputDir, original.Viewer.OutputDir)
	}
	if loaded.Log.Format != original.Log.Format {
		t.Errorf("log.format: got %q, want %q", loaded.Log.Format, original.Log.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Backend.URL != DefaultConfig().Backend.URL {
		t.Errorf("expected default backend url, got %q", cfg.Backend.URL)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yml")
	if err := os.WriteFile(path, []byte("backend:\n  url: http://10.0.0.5:9000\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.URL != "http://10.0.0.5:9000" {
		t.Errorf("backend.url: got %q", cfg.Backend.URL)
	}
	if cfg.Backend.AskPath != "/ask" {
		t.Errorf("expected default ask path to survive, got %q", cfg.Backend.AskPath)
	}
	if cfg.Viewer.Scale != DefaultScale {
		t.Errorf("expected default scale to survive, got %v", cfg.Viewer.Scale)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("CONTRACTQA_BACKEND_URL", "http://override:7000")
	t.Setenv("CONTRACTQA_BACKEND_UPLOAD_PATH", "/v2/upload")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Backend.URL != "http://override:7000" {
		t.Errorf("env override failed: got %q", loaded.Backend.URL)
	}
	if loaded.Backend.UploadPath != "/v2/upload" {
		t.Errorf("env override failed: got %q", loaded.Backend.UploadPath)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CONTRACTQA_BACKEND_URL", "backend.url"},
		{"CONTRACTQA_BACKEND_ASK_PATH", "backend.ask_path"},
		{"CONTRACTQA_VIEWER_OUTPUT_DIR", "viewer.output_dir"},
		{"CONTRACTQA_LOG_LEVEL", "log.level"},
		{"CONTRACTQA_DEBUG", "debug"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty backend url", func(c *Config) { c.Backend.URL = "" }},
		{"non-http backend url", func(c *Config) { c.Backend.URL = "ftp://host" }},
		{"relative upload path", func(c *Config) { c.Backend.UploadPath = "upload" }},
		{"relative ask path", func(c *Config) { c.Backend.AskPath = "ask" }},
		{"negative timeout", func(c *Config) { c.Backend.Timeout = -time.Second }},
		{"zero scale", func(c *Config) { c.Viewer.Scale = 0 }},
		{"empty output dir", func(c *Config) { c.Viewer.OutputDir = "" }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"history without path", func(c *Config) { c.History.Path = "" }},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidatePositiveFloat(t *testing.T) {
	if err := validatePositiveFloat("1.5"); err != nil {
		t.Errorf("1.5 should be valid: %v", err)
	}
	for _, s := range []string{"0", "-1", "abc"} {
		if err := validatePositiveFloat(s); err == nil {
			t.Errorf("%q should be invalid", s)
		}
	}
}
