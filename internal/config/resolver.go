package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// SearchPaths returns the candidate configuration files in lookup order:
// $XDG_CONFIG_HOME/modesync/modesync.yaml (or ~/.config/modesync/modesync.yaml)
// then ./modesync.yaml.
func SearchPaths() []string {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "modesync", "modesync.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "modesync", "modesync.yaml"))
	}

	return append(candidates, "modesync.yaml")
}

// ResolvePath returns the first existing file from SearchPaths.
func ResolvePath() (string, error) {
	candidates := SearchPaths()
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("config: no configuration file found (searched: %v)", candidates)
}

// DefaultPath is where `modesync init` writes when no path is given.
func DefaultPath() string {
	return SearchPaths()[0]
}
