package app

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/modesync if set, otherwise ~/.local/share/modesync.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok && dir != "" {
		return filepath.Join(dir, "modesync")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "modesync")
}
