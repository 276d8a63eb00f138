package config

import (
	"fmt"
	"strings"
	"time"
)

// Provider protocol types supported by the gateway.
const (
	ProviderTypeSync      = "sync"
	ProviderTypeAsyncPoll = "asyncpoll"
	ProviderTypeMultiStep = "multistep"
	ProviderTypeVision    = "vision"
)

type Config struct {
	Server      ServerConfig              `yaml:"server"`
	Log         LogConfig                 `yaml:"log"`
	Web         WebConfig                 `yaml:"web"`
	Selected    SelectedConfig            `yaml:"selected_module"`
	Security    SecurityConfig            `yaml:"security"`
	Compression CompressionConfig         `yaml:"compression"`
	Providers   map[string]ProviderConfig `yaml:"providers"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	Enabled     bool     `yaml:"enabled"`
	StaticDir   string   `yaml:"static_dir"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// SelectedConfig names the active provider block. The adapter is constructed
// once at startup from this selection; requests never re-route.
type SelectedConfig struct {
	Provider string `yaml:"provider"`
}

// SecurityConfig bounds what the image validator accepts before any
// compression or provider call happens.
type SecurityConfig struct {
	MaxFileSize    int64    `yaml:"max_file_size"`
	MaxPixels      int64    `yaml:"max_pixels"`
	MaxWidth       int      `yaml:"max_width"`
	MaxHeight      int      `yaml:"max_height"`
	AllowedFormats []string `yaml:"allowed_formats"`
	EnableDeepScan bool     `yaml:"enable_deep_scan"`
}

// CompressionConfig is the payload budget handed to the image compressor.
type CompressionConfig struct {
	TargetSizeKB int `yaml:"target_size_kb"`
}

// ProviderConfig describes one vendor integration. Fields beyond Type and
// BaseURL apply only to some protocol types.
type ProviderConfig struct {
	Type            string        `yaml:"type"`
	BaseURL         string        `yaml:"url"`
	PollURL         string        `yaml:"poll_url,omitempty"`
	APIKey          string        `yaml:"api_key"`
	ModelName       string        `yaml:"model_name,omitempty"`
	Temperature     float64       `yaml:"temperature,omitempty"`
	MaxTokens       int           `yaml:"max_tokens,omitempty"`
	Timeout         time.Duration `yaml:"timeout"`
	PollInterval    time.Duration `yaml:"poll_interval,omitempty"`
	MaxPollAttempts int           `yaml:"max_poll_attempts,omitempty"`
	DocTypeRequired bool          `yaml:"doc_type_required"`

	// Field-priority chains for the result normalizer. Vendors disagree on
	// response field names, so the chains stay configurable per block.
	ScoreFields []string `yaml:"score_fields,omitempty"`
	MatchFields []string `yaml:"match_fields,omitempty"`
	BandFields  []string `yaml:"band_fields,omitempty"`

	Extra map[string]interface{} `yaml:",inline"`
}

// SelectedProvider resolves the configured provider block.
func (c *Config) SelectedProvider() (string, ProviderConfig, error) {
	name := c.Selected.Provider
	if name == "" {
		return "", ProviderConfig{}, fmt.Errorf("selected_module.provider is empty")
	}
	pc, ok := c.Providers[name]
	if !ok {
		return "", ProviderConfig{}, fmt.Errorf("provider %q not found in providers section", name)
	}
	return name, pc, nil
}

// Validate checks that the configuration can actually drive the gateway.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	name, pc, err := c.SelectedProvider()
	if err != nil {
		return err
	}

	switch strings.ToLower(pc.Type) {
	case ProviderTypeSync, ProviderTypeAsyncPoll, ProviderTypeMultiStep, ProviderTypeVision:
	default:
		return fmt.Errorf("provider %q has unsupported type %q", name, pc.Type)
	}

	if pc.BaseURL == "" {
		return fmt.Errorf("provider %q is missing a url", name)
	}
	if pc.Type == ProviderTypeVision && pc.ModelName == "" {
		return fmt.Errorf("provider %q requires model_name", name)
	}
	if c.Compression.TargetSizeKB <= 0 {
		return fmt.Errorf("compression.target_size_kb must be positive")
	}
	return nil
}
