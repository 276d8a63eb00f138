package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoader_Load(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, ".config.yaml")

	configContent := `
server:
  ip: "127.0.0.1"
  port: 9090
log:
  log_level: "DEBUG"
selected_module:
  provider: "pollvendor"
compression:
  target_size_kb: 300
providers:
  pollvendor:
    type: asyncpoll
    url: "https://vendor.example.com/verify"
    poll_url: "https://vendor.example.com/result"
    poll_interval: 1s
    max_poll_attempts: 30
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader().WithDotEnv(false).WithPath(configFile)
	result, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg := result.Config

	if cfg.Server.IP != "127.0.0.1" {
		t.Errorf("expected server IP 127.0.0.1, got %s", cfg.Server.IP)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected server port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "DEBUG" {
		t.Errorf("expected log level DEBUG, got %s", cfg.Log.Level)
	}
	if cfg.Selected.Provider != "pollvendor" {
		t.Errorf("expected selected provider pollvendor, got %s", cfg.Selected.Provider)
	}
	if cfg.Compression.TargetSizeKB != 300 {
		t.Errorf("expected target size 300, got %d", cfg.Compression.TargetSizeKB)
	}

	_, pc, err := cfg.SelectedProvider()
	if err != nil {
		t.Fatalf("selected provider lookup failed: %v", err)
	}
	if pc.Type != ProviderTypeAsyncPoll {
		t.Errorf("expected asyncpoll type, got %s", pc.Type)
	}
	if pc.PollInterval != time.Second {
		t.Errorf("expected 1s poll interval, got %v", pc.PollInterval)
	}
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	result, err := NewLoader().WithDotEnv(false).Load()
	if err != nil {
		t.Fatalf("expected defaults, got error: %v", err)
	}
	if result.Path != "" {
		t.Errorf("expected empty path, got %s", result.Path)
	}
	if result.Config.Selected.Provider != "faceapi" {
		t.Errorf("expected default provider, got %s", result.Config.Selected.Provider)
	}
}

func TestLoader_EnvOverrides(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	t.Setenv("FACEGATE_PROVIDER", "visionllm")
	t.Setenv("VISIONLLM_API_KEY", "sk-test")

	result, err := NewLoader().WithDotEnv(false).Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	cfg := result.Config

	if cfg.Selected.Provider != "visionllm" {
		t.Errorf("expected env to switch provider, got %s", cfg.Selected.Provider)
	}
	if cfg.Providers["visionllm"].APIKey != "sk-test" {
		t.Errorf("expected api key from env, got %q", cfg.Providers["visionllm"].APIKey)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid server port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "unknown selected provider",
			mutate:  func(c *Config) { c.Selected.Provider = "nope" },
			wantErr: true,
		},
		{
			name: "unsupported provider type",
			mutate: func(c *Config) {
				pc := c.Providers["faceapi"]
				pc.Type = "carrier-pigeon"
				c.Providers["faceapi"] = pc
			},
			wantErr: true,
		},
		{
			name: "missing url",
			mutate: func(c *Config) {
				pc := c.Providers["faceapi"]
				pc.BaseURL = ""
				c.Providers["faceapi"] = pc
			},
			wantErr: true,
		},
		{
			name: "vision without model",
			mutate: func(c *Config) {
				c.Selected.Provider = "visionllm"
				pc := c.Providers["visionllm"]
				pc.ModelName = ""
				c.Providers["visionllm"] = pc
			},
			wantErr: true,
		},
		{
			name:    "zero compression budget",
			mutate:  func(c *Config) { c.Compression.TargetSizeKB = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
