// Package config provides process-wide configuration for the jin binary.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v4"
)

// Config represents the jin binary's configuration. It configures the
// binary only: store location, workspace root override, default
// text-merge labels, default array key fields. The core merge/apply
// packages never import this package directly; they take a
// merge.Config / textmerge.Config / store path through constructor
// parameters instead.
type Config struct {
	// Workspace configures where a workspace's root is located.
	Workspace WorkspaceConfig `yaml:"workspace" json:"workspace" jsonschema:"description=Workspace root configuration"`

	// Store configures where the layer object store lives.
	Store StoreConfig `yaml:"store" json:"store" jsonschema:"description=Layer object store configuration"`

	// Merge configures the deep-merge engine's defaults.
	Merge MergeConfig `yaml:"merge" json:"merge" jsonschema:"description=Structured merge defaults"`

	// TextMerge configures the 3-way text merge engine's defaults.
	TextMerge TextMergeConfig `yaml:"text_merge" json:"text_merge" jsonschema:"description=Opaque-file 3-way merge defaults"`

	// Log configures the logging subsystem.
	Log LogConfig `yaml:"log" json:"log" jsonschema:"description=Logging configuration"`
}

// WorkspaceConfig locates a workspace.
type WorkspaceConfig struct {
	// Root overrides the workspace root; empty means the current
	// working directory.
	Root string `yaml:"root,omitempty" json:"root,omitempty" jsonschema:"description=Workspace root override (defaults to the current working directory)"`
}

// StoreConfig locates the layer object store.
type StoreConfig struct {
	// Path overrides the directory the object/ref store is rooted at;
	// empty means the workspace root (the store's own metadata
	// directory nests underneath it).
	Path string `yaml:"path,omitempty" json:"path,omitempty" jsonschema:"description=Object store root override (defaults to the workspace root)"`
}

// MergeConfig configures the structured deep-merge engine (internal/merge).
type MergeConfig struct {
	// ArrayKeyFields lists the field names checked, in order, to find
	// a stable key for array-of-objects merging (spec §4.3.3).
	ArrayKeyFields []string `yaml:"array_key_fields,omitempty" json:"array_key_fields,omitempty" jsonschema:"description=Field names tried in order to key array-of-objects elements for positional-independent merge,default=id\\,name"`
}

// TextMergeConfig configures the 3-way text merge engine (internal/textmerge).
type TextMergeConfig struct {
	// OursLabel names the accumulated side in conflict markers.
	OursLabel string `yaml:"ours_label,omitempty" json:"ours_label,omitempty" jsonschema:"description=Label for the accumulated side in conflict markers,default=ours"`
	// TheirsLabel names the incoming layer's side in conflict markers.
	TheirsLabel string `yaml:"theirs_label,omitempty" json:"theirs_label,omitempty" jsonschema:"description=Label for the incoming layer's side in conflict markers,default=theirs"`
	// ShowBase includes the common-ancestor hunk in conflict markers.
	ShowBase bool `yaml:"show_base,omitempty" json:"show_base,omitempty" jsonschema:"description=Include the common-ancestor hunk in conflict markers,default=false"`
	// BaseLabel names the common-ancestor hunk when ShowBase is set.
	BaseLabel string `yaml:"base_label,omitempty" json:"base_label,omitempty" jsonschema:"description=Label for the common-ancestor hunk when show_base is set,default=base"`
}

// LogConfig configures the logging subsystem.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty" json:"level,omitempty" jsonschema:"description=Log level,enum=debug,enum=info,enum=warn,enum=error,default=info"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Merge: MergeConfig{
			ArrayKeyFields: []string{"id", "name"},
		},
		TextMerge: TextMergeConfig{
			OursLabel:   "ours",
			TheirsLabel: "theirs",
			BaseLabel:   "base",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(config.Merge.ArrayKeyFields) == 0 {
		config.Merge.ArrayKeyFields = []string{"id", "name"}
	}

	return config, nil
}

// configFileNames are probed, in order, by LoadOrDefault.
var configFileNames = []string{".jin.yaml", ".jin.yml", "jin.yaml", "jin.yml"}

// LoadOrDefault loads config from dir, trying each of configFileNames
// in turn, or returns the default config if none exist.
func LoadOrDefault(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return DefaultConfig(), nil
}

// SchemaURL is the URL to the JSON Schema for jin configuration.
const SchemaURL = "https://raw.githubusercontent.com/jinconf/jin/main/.jin.schema.json"

// Save writes configuration to a file with a yaml-language-server
// schema reference header.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := fmt.Sprintf("# yaml-language-server: $schema=%s\n", SchemaURL)
	content := append([]byte(header), data...)

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}

	if len(c.Merge.ArrayKeyFields) == 0 {
		return fmt.Errorf("merge.array_key_fields must not be empty")
	}

	return nil
}
