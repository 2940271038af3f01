package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds the user's saved defaults, applied beneath command-line flags
type Config struct {
	Machine          string `json:"machine,omitempty"`
	MachinesFile     string `json:"machinesFile,omitempty"`
	Units            string `json:"units,omitempty"`
	Axes             string `json:"axes,omitempty"`
	Channels         []int  `json:"channels,omitempty"`
	Prefix           string `json:"prefix,omitempty"`
	Postfix          string `json:"postfix,omitempty"`
	SuppressComments bool   `json:"suppressComments,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Machine: DefaultMachine,
		Units:   "metric",
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-midicnc"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Options seeds resolution options from the saved defaults
func (c *Config) Options() Options {
	return Options{
		Machine:          c.Machine,
		Units:            c.Units,
		Axes:             c.Axes,
		Channels:         c.Channels,
		SuppressComments: c.SuppressComments,
	}
}
