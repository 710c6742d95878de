package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfigPath returns the config file inside the user's config directory.
func UserConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Save writes the config to UserConfigPath.
func (c *Config) Save() error {
	return c.SaveTo(UserConfigPath())
}

// SaveTo writes the config to a specific path, creating parent directories as needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
