package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CompileConfig holds the defaults for `midi2bms compile`
type CompileConfig struct {
	TargetPPQN    int  `json:"targetPPQN"`
	Logarithmic   bool `json:"logarithmic"`
	TimingChannel int  `json:"timingChannel"` // -1 detects the "Timing" track
}

// OutputConfig controls where compiled files go
type OutputConfig struct {
	Dir     string `json:"dir,omitempty"` // empty writes next to the input
	Listing bool   `json:"listing,omitempty"`
}

// UIConfig stores viewer preferences
type UIConfig struct {
	Palette   string `json:"palette,omitempty"` // path to a GIMP .gpl palette
	ShowBytes bool   `json:"showBytes"`
}

// Config is the main configuration structure
type Config struct {
	Compile  CompileConfig `json:"compile"`
	Output   OutputConfig  `json:"output,omitempty"`
	UI       UIConfig      `json:"ui,omitempty"`
	DebugLog string        `json:"debugLog,omitempty"` // enables the debug log when set
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Compile: CompileConfig{
			TargetPPQN:    120,
			TimingChannel: -1,
		},
		UI: UIConfig{
			ShowBytes: true,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midi2bms"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
// Fields missing from the file keep their defaults.
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
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Compile.TargetPPQN <= 0 || c.Compile.TargetPPQN > 0xFFFF {
		return fmt.Errorf("targetPPQN %d out of range", c.Compile.TargetPPQN)
	}
	if c.Compile.TimingChannel < -1 || c.Compile.TimingChannel > 15 {
		return fmt.Errorf("timingChannel %d out of range", c.Compile.TimingChannel)
	}
	return nil
}

// OutputPath returns where a compiled file for input goes, with its
// extension replaced by ext.
func (c *Config) OutputPath(input, ext string) string {
	base := filepath.Base(input)
	name := base[:len(base)-len(filepath.Ext(base))] + ext
	if c.Output.Dir != "" {
		return filepath.Join(c.Output.Dir, name)
	}
	return filepath.Join(filepath.Dir(input), name)
}
