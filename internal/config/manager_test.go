package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestParseJSON(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{
		"url_base": "https://example.com/app",
		"built_version": "abc123",
		"check_interval": "30s",
		"logging": { "console": true }
	}`)

	m := NewManager(path)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.URLBase != "https://example.com/app" {
		t.Fatalf("URLBase = %q", cfg.URLBase)
	}
	if m.Get() != cfg {
		t.Fatal("Get should return the committed config")
	}

	d, err := ParseDurationOrDefault("check_interval", cfg.CheckInterval, 0)
	if err != nil {
		t.Fatalf("ParseDurationOrDefault: %v", err)
	}
	if d.Seconds() != 30 {
		t.Fatalf("check_interval = %v", d)
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.yaml", `
url_base: https://example.com
built_version: v1
locale: en_US
locale_data:
  en_US:
    title: Custom title
logging:
  console: true
`)

	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Locale != "en_US" {
		t.Fatalf("Locale = %q", cfg.Locale)
	}
	if cfg.LocaleData["en_US"]["title"] != "Custom title" {
		t.Fatal("locale_data lost in YAML coercion")
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{
		"url_base": "https://example.com",
		"built_version": "v1",
		"logging": { "console": true },
		"not_a_field": 1
	}`)

	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidateRules(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "ok",
			cfg:  Config{URLBase: "https://example.com", BuiltVersion: "v1"},
		},
		{
			name:    "missing url",
			cfg:     Config{BuiltVersion: "v1"},
			wantErr: true,
		},
		{
			name:    "missing version source",
			cfg:     Config{URLBase: "https://example.com"},
			wantErr: true,
		},
		{
			name:    "bad interval",
			cfg:     Config{URLBase: "https://example.com", BuiltVersion: "v1", CheckInterval: "soon"},
			wantErr: true,
		},
		{
			name: "version file instead of version",
			cfg:  Config{URLBase: "https://example.com", BuiltVersionFile: "./dist"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDurationField(t *testing.T) {
	t.Parallel()
	if _, err := ParseDurationField("x", "-5s"); err == nil {
		t.Fatal("negative durations should be rejected")
	}
	d, err := ParseDurationOrDefault("x", "", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 42 {
		t.Fatalf("default not applied: %v", d)
	}
}
