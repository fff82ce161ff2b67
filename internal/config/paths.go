package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chester"

// Dir returns the platform-specific configuration directory.
// - macOS: ~/Library/Application Support/chester/
// - Linux: $XDG_CONFIG_HOME/chester/ or ~/.config/chester/
// - Windows: %APPDATA%/chester/
func Dir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		// Check XDG_CONFIG_HOME first
		baseDir = os.Getenv("XDG_CONFIG_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".config")
		}
	}

	return filepath.Join(baseDir, appName), nil
}

// Path returns the config file to load: the one named by CHESTER_CONFIG,
// else config.json in Dir if it exists, else "".
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}

	dir, err := Dir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, "config.json")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
