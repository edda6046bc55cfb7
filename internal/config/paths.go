package config

import (
	"os"
	"path/filepath"
)

var (
	homeDir string
)

func init() {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		homeDir = "~"
	}
}

// MatrixStoreDir returns the matrixstore config directory path
// ~/.config/matrixstore/
func MatrixStoreDir() string {
	return filepath.Join(homeDir, ".config", "matrixstore")
}

// ConfigPath returns the config.json file path
// ~/.config/matrixstore/config.json
func ConfigPath() string {
	return filepath.Join(MatrixStoreDir(), "config.json")
}

// RegistryCachePath returns the cached registry document path
// ~/.config/matrixstore/registry.json
func RegistryCachePath() string {
	return filepath.Join(MatrixStoreDir(), "registry.json")
}

// DefaultPluginsDir returns the default plugin installation directory
// ~/.config/matrixstore/plugins/
func DefaultPluginsDir() string {
	return filepath.Join(MatrixStoreDir(), "plugins")
}

// StagingDir returns the staging directory used for in-flight installs.
// Kept under the config root so the final rename into the plugins
// directory stays on the same filesystem.
// ~/.config/matrixstore/staging/
func StagingDir() string {
	return filepath.Join(MatrixStoreDir(), "staging")
}

// LogDir returns the log directory path
// ~/.config/matrixstore/logs/
func LogDir() string {
	return filepath.Join(MatrixStoreDir(), "logs")
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
