package config

import (
	"os"
	"path/filepath"
	"testing"
)

// #region helpers

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// #endregion helpers

// #region tests

func TestLoadLayersOverDefaults(t *testing.T) {
	path := writeConfigFile(t, `
database:
  path: /tmp/engine.db
access:
  trainers: [curator]
  admins: [ops]
domains:
  - domain: 2
    bias: [0, 0, 0, 0, 0, 0, 3]
    intensity: 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/engine.db" {
		t.Fatalf("db path = %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("default level not preserved: %q", cfg.Logging.Level)
	}
	if len(cfg.Access.Trainers) != 1 || cfg.Access.Trainers[0] != "curator" {
		t.Fatalf("trainers = %v", cfg.Access.Trainers)
	}
	if len(cfg.Domains) != 1 || cfg.Domains[0].Bias[6] != 3 {
		t.Fatalf("domains = %+v", cfg.Domains)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault(\"\"): %v", err)
	}
	if cfg.Database.Path != "sentiment.db" || !cfg.Access.AllowAll {
		t.Fatalf("defaults = %+v", cfg)
	}

	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault(missing): %v", err)
	}
	if cfg.Database.Path != "sentiment.db" {
		t.Fatalf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty db path", "database:\n  path: \"\"\n"},
		{"bad level", "logging:\n  level: verbose\n"},
		{"domain out of range", "domains:\n  - domain: 10\n    intensity: 1\n"},
		{"general domain", "domains:\n  - domain: 0\n    intensity: 1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfigFile(t, tc.content)
			if _, err := Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Access.Trainers = []string{"curator"}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Access.Trainers[0] != "curator" {
		t.Fatalf("round trip = %+v", loaded)
	}
}

// #endregion tests
