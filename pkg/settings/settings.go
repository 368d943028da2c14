// Package settings manages persistent user settings for the netapi CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Output formats
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Settings holds persistent user preferences
type Settings struct {
	// Inventory is the device inventory file used when -i is not given
	Inventory string `json:"inventory,omitempty" yaml:"inventory,omitempty"`

	// DefaultDevice is the device to use when -d is not specified
	DefaultDevice string `json:"default_device,omitempty" yaml:"default_device,omitempty"`

	// Output is the default output format: table, json or yaml
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// LogLevel is the default log level
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "netapi_settings.json"
	}
	return filepath.Join(home, ".netapi", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetInventory returns the inventory path (with fallback)
func (s *Settings) GetInventory() string {
	if s.Inventory != "" {
		return s.Inventory
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "inventory.yaml"
	}
	return filepath.Join(home, ".netapi", "inventory.yaml")
}

// GetOutput returns the output format (with fallback)
func (s *Settings) GetOutput() string {
	if s.Output != "" {
		return s.Output
	}
	return OutputTable
}

// GetLogLevel returns the log level (with fallback)
func (s *Settings) GetLogLevel() string {
	if s.LogLevel != "" {
		return s.LogLevel
	}
	return "warn"
}

// Keys lists the setting names accepted by Set
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var setters = map[string]func(s *Settings, v string) error{
	"inventory": func(s *Settings, v string) error {
		s.Inventory = v
		return nil
	},
	"default_device": func(s *Settings, v string) error {
		s.DefaultDevice = v
		return nil
	},
	"output": func(s *Settings, v string) error {
		switch v {
		case "", OutputTable, OutputJSON, OutputYAML:
			s.Output = v
			return nil
		}
		return fmt.Errorf("output must be one of %s, %s, %s", OutputTable, OutputJSON, OutputYAML)
	},
	"log_level": func(s *Settings, v string) error {
		switch strings.ToLower(v) {
		case "", "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
			s.LogLevel = strings.ToLower(v)
			return nil
		}
		return fmt.Errorf("unknown log level %q", v)
	},
}

// Set assigns one setting by its JSON name
func (s *Settings) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return set(s, value)
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
