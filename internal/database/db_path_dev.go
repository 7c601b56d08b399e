//go:build !prod

package database

// GetDataDir returns the directory holding local state in development mode:
// the working directory, so the database and keyring files sit next to the
// checkout.
func GetDataDir() string {
	return "."
}

// GetDefaultDBPath returns the development database path.
func GetDefaultDBPath() string {
	return "txtension.db"
}

func IsDevelopment() bool {
	return true
}
