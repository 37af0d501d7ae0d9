package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - VSHIELD_CONFIG_PATH: config file location (default: ~/.config/vshield.toml)
//   - VSHIELD_HOME: base directory for vshield data (default: ~/.local/share/vshield)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking VSHIELD_CONFIG_PATH
// first, then falling back to ~/.config/vshield.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("VSHIELD_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "vshield.toml"), nil
}

// getBaseDir returns the base data directory, checking VSHIELD_HOME first,
// then falling back to the XDG default ~/.local/share/vshield.
func getBaseDir() (string, error) {
	if path := os.Getenv("VSHIELD_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "vshield"), nil
}
