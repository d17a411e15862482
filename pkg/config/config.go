package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the prsync configuration
type Config struct {
	GitHub   GitHubConfig `yaml:"github"`
	Statuses StatusConfig `yaml:"statuses,omitempty"`
}

// GitHubConfig represents GitHub-specific configuration
type GitHubConfig struct {
	Token         string `yaml:"token,omitempty"`
	Organization  string `yaml:"organization,omitempty"`
	ProjectNumber int    `yaml:"project_number,omitempty"`
}

// StatusConfig allows overriding the board's status option names. Empty
// fields fall back to the defaults used by our project boards.
type StatusConfig struct {
	SelectedForDevelopment string `yaml:"selected_for_development,omitempty"`
	WeeklyBacklog          string `yaml:"weekly_backlog,omitempty"`
	InDevelopment          string `yaml:"in_development,omitempty"`
	ReadyForReview         string `yaml:"ready_for_review,omitempty"`
	OnHold                 string `yaml:"on_hold,omitempty"`
	Done                   string `yaml:"done,omitempty"`
}

// LoadConfig loads configuration from the default location and applies
// environment overrides
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadConfigFromPath loads configuration from a specific path
func LoadConfigFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil // Return empty config if file doesn't exist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// applyEnvOverrides lets CI runners override file settings without
// touching the config file
func (c *Config) applyEnvOverrides() {
	if org := os.Getenv("PRSYNC_ORG"); org != "" {
		c.GitHub.Organization = org
	}
	if number := os.Getenv("PRSYNC_PROJECT_NUMBER"); number != "" {
		if n, err := strconv.Atoi(number); err == nil {
			c.GitHub.ProjectNumber = n
		}
	}
}

// SaveConfig saves configuration to the default location
func (c *Config) SaveConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveConfigToPath(configPath)
}

// SaveConfigToPath saves configuration to a specific path
func (c *Config) SaveConfigToPath(path string) error {
	// Create config directory if it doesn't exist
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".prsync", "config.yaml"), nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.GitHub.Organization == "" {
		return fmt.Errorf("GitHub organization is required")
	}

	if c.GitHub.ProjectNumber < 0 {
		return fmt.Errorf("project number must be positive")
	}

	return nil
}
