package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/flemzord/modesync/internal/ordering"
	"gopkg.in/yaml.v3"
)

// envPattern matches ${VAR} and ${VAR:-default} expressions.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load reads a YAML configuration file, expands environment variables,
// and parses it into a Config struct. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(raw, path)
}

// Parse decodes raw YAML. name is only used in error messages. An empty
// document yields an empty Config.
func Parse(raw []byte, name string) (*Config, error) {
	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, fmt.Errorf("config: expanding variables in %s: %w", name, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parsing %s: %w: %w", name, ordering.ErrConfiguration, err)
	}

	return &cfg, nil
}

// LoadOrDefault loads the file at path, or the first file found by
// ResolvePath when path is empty. A missing implicit file is not an error:
// an empty Config is returned with an empty source path.
func LoadOrDefault(path string) (*Config, string, error) {
	if path == "" {
		resolved, err := ResolvePath()
		if err != nil {
			return &Config{}, "", nil
		}
		path = resolved
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Finalize applies environment overrides and defaults, then validates.
// Every loaded configuration goes through it before use.
func Finalize(cfg *Config, dataDir string) error {
	ApplyEnv(cfg)
	cfg.Defaults(dataDir)
	return Validate(cfg)
}

// ApplyEnv applies environment overrides to cfg.
func ApplyEnv(cfg *Config) {
	if dir, ok := os.LookupEnv(EnvModesDir); ok && dir != "" {
		cfg.ModesDir = dir
	}
}

// expandEnv replaces ${VAR} and ${VAR:-default} patterns in raw YAML bytes.
// Returns an error listing all unresolved variables (no default, no env value).
func expandEnv(raw []byte) ([]byte, error) {
	var errs []error

	result := envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		subs := envPattern.FindSubmatch(match)
		name := string(subs[1])
		hasDefault := len(subs) > 2 && subs[2] != nil

		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		if hasDefault {
			return subs[2]
		}

		errs = append(errs, fmt.Errorf("unresolved variable: %s", name))
		return match
	})

	return result, errors.Join(errs...)
}
