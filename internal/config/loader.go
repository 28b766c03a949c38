package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadConsole loads the console configuration.
// Search order: customPath -> ~/.handheld/configs/console.yaml -> ./configs/console.yaml -> embedded default
func LoadConsole(customPath string) (ConsoleConfig, error) {
	return load("console.yaml", customPath, defaultConsoleYAML, DefaultConsoleConfig)
}

// LoadMario loads the platformer configuration.
// Search order: customPath -> ~/.handheld/configs/mario.yaml -> ./configs/mario.yaml -> embedded default
func LoadMario(customPath string) (MarioConfig, error) {
	return load("mario.yaml", customPath, defaultMarioYAML, DefaultMarioConfig)
}

// load reads the first readable config for filename. Fields missing from
// a file keep their default values.
func load[T any](filename, customPath string, embedded []byte, fallback func() T) (T, error) {
	cfg := fallback()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(filename); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
			cfg = fallback()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", filename)); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
		cfg = fallback()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(embedded, &cfg); err != nil {
		return fallback(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".handheld", "configs", filename)
}
