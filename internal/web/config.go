package web

import (
	"encoding/json"
	"os"
)

// Config represents the web server configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Auth      AuthConfig      `json:"auth"`
	Detection DetectionConfig `json:"detection"`
	Features  FeatureConfig   `json:"features"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port           int      `json:"port"`
	Host           string   `json:"host"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver string `json:"driver"`
	URL    string `json:"url"`
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	Enabled bool   `json:"enabled"`
	APIKey  string `json:"api_key"`
}

// DetectionConfig points at the YAML detection configuration
type DetectionConfig struct {
	ConfigFile   string `json:"config_file"`
	GroupWorkers int    `json:"group_workers"`
}

// FeatureConfig contains feature toggles
type FeatureConfig struct {
	MergeEnabled        bool `json:"merge_enabled"`
	ConfigUpdateEnabled bool `json:"config_update_enabled"`
}

// LoadConfig loads configuration from a JSON file over the defaults
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			URL:    "candidates.db",
		},
		Auth: AuthConfig{
			Enabled: false,
		},
		Features: FeatureConfig{
			MergeEnabled:        true,
			ConfigUpdateEnabled: true,
		},
	}
}
