package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDir returns the platform-specific configuration directory.
// Linux/Mac: ~/.config/skycast
// Windows: C:\Users\username\.config\skycast
func ConfigDir() string {
	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		return filepath.Join(userProfile, ".config", "skycast")
	}

	home := os.Getenv("HOME")
	return filepath.Join(home, ".config", "skycast")
}

// SettingsFilePath returns the path to settings.toml.
func SettingsFilePath() string {
	return filepath.Join(ConfigDir(), "settings.toml")
}

// FileExists reports whether path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// EnsureDir creates dir (and parents) with user-only access.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0700)
}
