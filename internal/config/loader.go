package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the cache layer.
// Zero values mean "unspecified" and will be replaced by defaults in the caller.
type Config struct {
	// BaselineMethod is the competing method whose own model doubles as
	// the reference model (e.g. VFI_HD_GRID).
	BaselineMethod string `json:"baseline_method" yaml:"baseline_method" toml:"baseline_method"`
	// CatalogFile optionally overrides the built-in metric requirement catalog.
	CatalogFile string `json:"catalog_file" yaml:"catalog_file" toml:"catalog_file"`
	// DisableTrim keeps all solution arrays after load.
	DisableTrim bool `json:"disable_trim" yaml:"disable_trim" toml:"disable_trim"`
	// TelemetryFile is an optional JSON sidecar for per-key access counts.
	TelemetryFile string `json:"telemetry_file" yaml:"telemetry_file" toml:"telemetry_file"`
	// StatsAddr is the listen address of the diagnostics HTTP server
	// (empty disables it).
	StatsAddr string `json:"stats_addr" yaml:"stats_addr" toml:"stats_addr"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	if err := Decode(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode unmarshals a yaml/json/toml file into v, switching on extension.
// Shared by Load and by the requirement-catalog file loader.
func Decode(path string, v any) error {
	p, err := ExpandHome(path)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, v); err != nil {
			return fmt.Errorf("decode yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, v); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, v); err != nil {
			return fmt.Errorf("decode toml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
	return nil
}

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/runs/catalog.yaml
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
