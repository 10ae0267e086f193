package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/xraph/kiln/internal/errors"
)

// Find searches for a config file from dir up the directory tree. It returns
// the default configuration and an empty path when none exists.
func Find(dir string) (*Config, string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", errors.ErrConfigError("failed to resolve directory", err)
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, statErr := os.Stat(path); statErr != nil {
				continue
			}
			cfg, loadErr := Load(path)
			if loadErr != nil {
				return nil, "", loadErr
			}
			cfg.RootDir = dir
			return cfg, path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return DefaultConfig(), "", nil
		}
		dir = parent
	}
}

// FindFromWorkingDir searches from the current directory.
func FindFromWorkingDir() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", errors.ErrConfigError("failed to get current directory", err)
	}
	return Find(dir)
}

// Load reads and validates the config file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ErrConfigError("failed to read config file", err).WithContext("path", path)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.ErrConfigError("failed to parse config file", err).WithContext("path", path)
	}
	cfg.ConfigPath = path
	cfg.RootDir = filepath.Dir(path)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.ErrConfigError("failed to marshal config", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.ErrConfigError(fmt.Sprintf("failed to write config file %s", path), err)
	}
	return nil
}
