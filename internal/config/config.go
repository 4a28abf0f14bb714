// Package config loads the optional user configuration file. Everything in
// it is additive policy; a missing or malformed file produces a warning and
// an empty config, never a failed run.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dazzletools/wingather/internal/concern"
	"github.com/dazzletools/wingather/internal/trust"
)

// Config is the user-editable policy overlay.
type Config struct {
	// Trust entries appended after the packaged defaults.
	Trust []trust.Entry `yaml:"trust,omitempty"`
	// Deny patterns appended to the packaged deny list.
	Deny []string `yaml:"deny,omitempty"`
	// Weights overrides the indicator weights when set.
	Weights *concern.Weights `yaml:"weights,omitempty"`
	// Processes always excluded from gathering.
	ExcludeProcesses []string `yaml:"exclude_processes,omitempty"`
}

// DefaultPath returns ~/.config/wingather/config.yaml, honoring
// XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "wingather", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "wingather", "config.yaml"), nil
}

// Load reads the config at path; path == "" uses DefaultPath. A missing
// file is normal and returns an empty config silently; anything else wrong
// with the file is logged and likewise yields an empty config.
func Load(path string, log *slog.Logger) *Config {
	if log == nil {
		log = slog.Default()
	}
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			log.Warn("could not resolve config path", "error", err)
			return &Config{}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("could not read config", "path", path, "error", err)
		}
		return &Config{}
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		log.Warn("could not parse config", "path", path, "error", err)
		return &Config{}
	}

	for i := range cfg.Trust {
		if cfg.Trust[i].Source == "" {
			cfg.Trust[i].Source = trust.SourceUser
		}
	}
	return &cfg
}
