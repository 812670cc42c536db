package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - JASYPT_CONFIG_PATH: config file location (default: ~/.config/jasypt.toml)
//   - JASYPT_HOME: base directory for jasypt data (default: ~/.local/share/jasypt)
func GetDefaults() (map[string]string, error) {
	configPath, err := envOrHome("JASYPT_CONFIG_PATH", ".config", "jasypt.toml")
	if err != nil {
		return nil, err
	}

	baseDir, err := envOrHome("JASYPT_HOME", ".local", "share", "jasypt")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// envOrHome returns the value of env when set, else the path made of elem
// under the user's home directory.
func envOrHome(env string, elem ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
