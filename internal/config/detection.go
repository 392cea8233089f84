package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talentflow/dedupe/internal/match"
)

// LoadDetectionConfig builds the detection configuration: defaults, then the
// YAML file at path (if path is non-empty), then DEDUPE_* environment
// overrides. Fields missing from the file keep their default values.
func LoadDetectionConfig(path string) (match.Config, error) {
	cfg := match.DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading detection config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing detection config %s: %w", path, err)
		}
		if err := cfg.Validate(); err != nil {
			return cfg, fmt.Errorf("detection config %s: %w", path, err)
		}
	}

	return cfg.ApplyEnv()
}

// WriteDetectionConfig writes cfg as YAML
func WriteDetectionConfig(path string, cfg match.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding detection config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing detection config: %w", err)
	}
	return nil
}
