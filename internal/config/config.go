// Package config loads optional YAML defaults for the command-line surface.
// Values given as flags always win over file values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File holds defaults for the invocation options. Every field is optional.
type File struct {
	Repo     string `yaml:"repo"`
	Output   string `yaml:"output"`
	Keys     string `yaml:"keys"`
	Verbose  bool   `yaml:"verbose"`
	Progress bool   `yaml:"progress"`
}

// DefaultPath returns the conventional config file location:
// $XDG_CONFIG_HOME/get-cmake/config.yaml, falling back to
// ~/.config/get-cmake/config.yaml. Empty when no home directory is known.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "get-cmake", "config.yaml")
}

// Load reads a config file. Unknown keys are rejected so a typo in the file
// surfaces instead of silently doing nothing.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cfg File
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault loads the conventional config file if it exists. A missing
// file is not an error; there simply are no file defaults.
func LoadDefault() (*File, error) {
	path := DefaultPath()
	if path == "" {
		return &File{}, nil
	}
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &File{}, nil
		}
		return nil, err
	}
	return cfg, nil
}
