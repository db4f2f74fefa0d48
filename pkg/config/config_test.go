package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.APIPrefix != "/api/v1" {
		t.Errorf("APIPrefix = %q", cfg.APIPrefix)
	}
	if !cfg.Providers.Scene.Enabled || !cfg.Providers.Assets.Enabled {
		t.Error("built-in providers should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadYAMLMergesOverDefaults(t *testing.T) {
	path := writeFile(t, "remoted.yaml", "port: 5000\nlogging:\n  level: debug\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	// Absent fields keep their defaults.
	if cfg.Host != DefaultHost {
		t.Errorf("Host = %q, want default", cfg.Host)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should stay at its default")
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "remoted.json", `{"name": "editor-bridge", "port": 4299}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "editor-bridge" || cfg.Port != 4299 {
		t.Errorf("got %q/%d", cfg.Name, cfg.Port)
	}
}

func TestLoadExplicitFalseSurvivesMerge(t *testing.T) {
	path := writeFile(t, "remoted.yaml", "providers:\n  scene:\n    enabled: false\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Providers.Scene.Enabled {
		t.Error("explicit enabled: false was lost in the merge")
	}
	if !cfg.Providers.Assets.Enabled {
		t.Error("untouched provider should keep its default")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("missing file: %v", err)
	}

	empty := writeFile(t, "empty.yaml", "")
	if _, err := Load(empty); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("empty file: %v", err)
	}

	badYAML := writeFile(t, "bad.yaml", "port: [broken")
	if _, err := Load(badYAML); !errors.Is(err, ErrInvalidYAML) {
		t.Errorf("bad yaml: %v", err)
	}

	badJSON := writeFile(t, "bad.json", "{not json")
	if _, err := Load(badJSON); !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("bad json: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"port too large", func(c *Config) { c.Port = 70000 }, "port"},
		{"negative port", func(c *Config) { c.Port = -1 }, "port"},
		{"prefix without slash", func(c *Config) { c.APIPrefix = "api/v1" }, "apiPrefix"},
		{"prefix trailing slash", func(c *Config) { c.APIPrefix = "/api/v1/" }, "apiPrefix"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"negative actor cap", func(c *Config) { c.Providers.Scene.MaxActors = -5 }, "providers.scene.maxActors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestValidateAssetsRootFile(t *testing.T) {
	cfg := Default()
	cfg.Providers.Assets.Root = writeFile(t, "not-a-dir.txt", "x")
	if err := cfg.Validate(); err == nil {
		t.Error("a file as assets root should not validate")
	}

	// A nonexistent root is allowed; the provider handles it at runtime.
	cfg.Providers.Assets.Root = filepath.Join(t.TempDir(), "missing")
	if err := cfg.Validate(); err != nil {
		t.Errorf("nonexistent root should validate: %v", err)
	}
}
