package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTestConfig writes content to a config file.
func writeTestConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

// createTempDir creates a temporary directory, cleaned up automatically.
func createTempDir(t *testing.T) string {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })
	return tmpDir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Merge.ArrayKeyFields) != 2 || cfg.Merge.ArrayKeyFields[0] != "id" || cfg.Merge.ArrayKeyFields[1] != "name" {
		t.Errorf("expected default array key fields [id name], got %v", cfg.Merge.ArrayKeyFields)
	}
	if cfg.TextMerge.OursLabel != "ours" {
		t.Errorf("expected OursLabel 'ours', got %q", cfg.TextMerge.OursLabel)
	}
	if cfg.TextMerge.TheirsLabel != "theirs" {
		t.Errorf("expected TheirsLabel 'theirs', got %q", cfg.TextMerge.TheirsLabel)
	}
	if cfg.TextMerge.ShowBase {
		t.Error("expected ShowBase to default to false")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected Log.Level 'info', got %q", cfg.Log.Level)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := createTempDir(t)

	configContent := `
workspace:
  root: /srv/project

store:
  path: /var/lib/jin/store

merge:
  array_key_fields: ["id"]

text_merge:
  ours_label: mine
  theirs_label: theirs
  show_base: true
  base_label: common

log:
  level: debug
`
	configPath := filepath.Join(tmpDir, ".jin.yaml")
	writeTestConfig(t, configPath, configContent)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Workspace.Root != "/srv/project" {
		t.Errorf("expected workspace root, got %q", cfg.Workspace.Root)
	}
	if cfg.Store.Path != "/var/lib/jin/store" {
		t.Errorf("expected store path, got %q", cfg.Store.Path)
	}
	if len(cfg.Merge.ArrayKeyFields) != 1 || cfg.Merge.ArrayKeyFields[0] != "id" {
		t.Errorf("expected array key fields [id], got %v", cfg.Merge.ArrayKeyFields)
	}
	if cfg.TextMerge.OursLabel != "mine" {
		t.Errorf("expected OursLabel 'mine', got %q", cfg.TextMerge.OursLabel)
	}
	if !cfg.TextMerge.ShowBase {
		t.Error("expected ShowBase to be true")
	}
	if cfg.TextMerge.BaseLabel != "common" {
		t.Errorf("expected BaseLabel 'common', got %q", cfg.TextMerge.BaseLabel)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected Log.Level 'debug', got %q", cfg.Log.Level)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/.jin.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := createTempDir(t)

	invalidContent := `
merge:
  array_key_fields: [invalid yaml
`
	configPath := filepath.Join(tmpDir, ".jin.yaml")
	writeTestConfig(t, configPath, invalidContent)

	_, err := Load(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_FallsBackToDefaultArrayKeyFields(t *testing.T) {
	tmpDir := createTempDir(t)

	configContent := `
log:
  level: warn
`
	configPath := filepath.Join(tmpDir, ".jin.yaml")
	writeTestConfig(t, configPath, configContent)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Merge.ArrayKeyFields) != 2 {
		t.Errorf("expected default array key fields to survive an omitted key, got %v", cfg.Merge.ArrayKeyFields)
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("loads config when file exists", func(t *testing.T) {
		tmpDir := createTempDir(t)

		configContent := `
log:
  level: debug
`
		configPath := filepath.Join(tmpDir, ".jin.yaml")
		writeTestConfig(t, configPath, configContent)

		cfg, err := LoadOrDefault(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Log.Level != "debug" {
			t.Errorf("expected loaded level, got %q", cfg.Log.Level)
		}
	})

	t.Run("returns default when no config file", func(t *testing.T) {
		tmpDir := createTempDir(t)

		cfg, err := LoadOrDefault(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Log.Level != "info" {
			t.Errorf("expected default level, got %q", cfg.Log.Level)
		}
	})

	t.Run("tries multiple config file names", func(t *testing.T) {
		tmpDir := createTempDir(t)

		configContent := `
log:
  level: error
`
		configPath := filepath.Join(tmpDir, ".jin.yml")
		writeTestConfig(t, configPath, configContent)

		cfg, err := LoadOrDefault(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Log.Level != "error" {
			t.Errorf("expected level from .jin.yml, got %q", cfg.Log.Level)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name:    "valid default config",
			cfg:     DefaultConfig(),
			wantErr: false,
		},
		{
			name: "invalid log level",
			cfg: &Config{
				Merge: MergeConfig{ArrayKeyFields: []string{"id"}},
				Log:   LogConfig{Level: "verbose"},
			},
			wantErr: true,
		},
		{
			name: "empty array key fields",
			cfg: &Config{
				Merge: MergeConfig{ArrayKeyFields: nil},
				Log:   LogConfig{Level: "info"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Save(t *testing.T) {
	tmpDir := createTempDir(t)

	cfg := DefaultConfig()
	cfg.Log.Level = "debug"

	savePath := filepath.Join(tmpDir, "saved.yaml")
	if err := cfg.Save(savePath); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	content, err := os.ReadFile(savePath)
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}

	if string(content[:30]) != "# yaml-language-server: $schem" {
		t.Errorf("expected schema header, got %q", string(content[:30]))
	}

	loaded, err := Load(savePath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}

	if loaded.Log.Level != "debug" {
		t.Errorf("expected level to be preserved, got %q", loaded.Log.Level)
	}
}
