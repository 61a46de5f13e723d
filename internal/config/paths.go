package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appDirName     = "filebox"
	configFileName = "config.ini"
)

// ConfigDirectory returns the per-user configuration directory.
//
// Locations:
//   - Windows: %APPDATA%\filebox
//   - Unix: ~/.config/filebox
func ConfigDirectory() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), appDirName)
		}
		if runtime.GOOS == "windows" {
			return filepath.Join(homeDir, "AppData", "Roaming", appDirName)
		}
		return filepath.Join(homeDir, ".config", appDirName)
	}
	return filepath.Join(configDir, appDirName)
}

// GetDefaultConfigPath returns the default config file path.
func GetDefaultConfigPath() string {
	return filepath.Join(ConfigDirectory(), configFileName)
}

// LogDirectory returns the directory used for the default log file.
func LogDirectory() string {
	return filepath.Join(ConfigDirectory(), "logs")
}

// DefaultLogFilePath returns the path used when logging.file is set to "default".
func DefaultLogFilePath() string {
	return filepath.Join(LogDirectory(), "filebox.log")
}

// EnsureLogDirectory creates the log directory if it doesn't exist.
// Uses 0700 permissions to restrict log access to owner only.
func EnsureLogDirectory() error {
	return os.MkdirAll(LogDirectory(), 0700)
}
