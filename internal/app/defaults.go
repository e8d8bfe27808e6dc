package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - TODO_CONFIG_PATH: config file location (default: ~/.config/todo.toml)
//   - TODO_HOME: base directory for todo data (default: ~/.local/share/todo)
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
		"sqlite_path": filepath.Join(baseDir, "todo.db"),
	}, nil
}

func getConfigPath() (string, error) {
	if path := os.Getenv("TODO_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "todo.toml"), nil
}

// getBaseDir returns the base directory for todo data, checking TODO_HOME first,
// then falling back to the XDG default ~/.local/share/todo.
func getBaseDir() (string, error) {
	if path := os.Getenv("TODO_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "todo"), nil
}
