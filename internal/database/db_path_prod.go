//go:build prod

package database

import (
	"log"
	"os"
	"path/filepath"
)

// GetDataDir returns the per-user config directory for txtension, creating
// it when missing. It falls back to the working directory.
func GetDataDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Printf("database: user config dir unavailable: %v, using working directory", err)
		return "."
	}

	appDir := filepath.Join(configDir, "txtension")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		log.Printf("database: create %s: %v, using working directory", appDir, err)
		return "."
	}
	return appDir
}

// GetDefaultDBPath returns the production database path inside GetDataDir.
func GetDefaultDBPath() string {
	return filepath.Join(GetDataDir(), "txtension.db")
}

func IsDevelopment() bool {
	return false
}
