package user

import (
	"os"
	"path/filepath"
)

// HomeDir returns the current user's home directory. WGDASH_HOME overrides it,
// which tests and containers use to isolate state.
func HomeDir() (string, error) {
	if dir := os.Getenv("WGDASH_HOME"); dir != "" {
		return dir, nil
	}
	return os.UserHomeDir()
}

// StateDir is the directory holding the wgdash config file and database.
func StateDir() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".wgdash"), nil
}
