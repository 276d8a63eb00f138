package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// candidatePaths are tried in order when no explicit path is given.
var candidatePaths = []string{".config.yaml", "config.yaml"}

// Loader reads configuration from an optional yaml file layered over the
// defaults, with secrets pulled from the environment.
type Loader struct {
	useDotEnv bool
	path      string
}

// NewLoader creates a loader with .env support enabled.
func NewLoader() *Loader {
	return &Loader{useDotEnv: true}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath pins the loader to an explicit config file (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// Result captures the loaded configuration and its origin path. Path is empty
// when only defaults and environment were used.
type Result struct {
	Config *Config
	Path   string
}

// Load builds the effective configuration: defaults, then yaml file, then
// environment overrides.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		// no .env file is fine, the process environment still applies
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()

	path, err := l.readFile(cfg)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return &Result{Config: cfg, Path: path}, nil
}

func (l *Loader) readFile(cfg *Config) (string, error) {
	paths := candidatePaths
	if l.path != "" {
		paths = []string{l.path}
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) && l.path == "" {
				continue
			}
			return "", fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return "", fmt.Errorf("parse config file %s: %w", path, err)
		}
		return path, nil
	}
	return "", nil
}

// applyEnvOverrides layers environment values on top of the file. Secrets are
// expected here rather than in checked-in yaml: each provider block reads
// <NAME>_API_KEY, and FACEGATE_PROVIDER switches the active block.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FACEGATE_PROVIDER"); v != "" {
		cfg.Selected.Provider = v
	}
	if v := os.Getenv("FACEGATE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	for name, pc := range cfg.Providers {
		envKey := strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_API_KEY"
		if v := os.Getenv(envKey); v != "" {
			pc.APIKey = v
			cfg.Providers[name] = pc
		}
	}
}
