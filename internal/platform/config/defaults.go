package config

import "time"

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			Enabled:     true,
			StaticDir:   "web",
			CORSOrigins: []string{"*"},
		},
		Selected: SelectedConfig{
			Provider: "faceapi",
		},
		Security: SecurityConfig{
			MaxFileSize:    10 * 1024 * 1024, // 10MB per uploaded image
			MaxPixels:      16777216,         // 16M pixels
			MaxWidth:       8192,
			MaxHeight:      8192,
			AllowedFormats: []string{"jpeg", "jpg", "png", "webp", "gif"},
			EnableDeepScan: true,
		},
		Compression: CompressionConfig{
			TargetSizeKB: 500,
		},
		Providers: map[string]ProviderConfig{
			"faceapi": {
				Type:    ProviderTypeSync,
				BaseURL: "https://api.example-faceapi.com/v1/match",
				Timeout: 30 * time.Second,
			},
			"idqueue": {
				Type:            ProviderTypeAsyncPoll,
				BaseURL:         "https://api.example-idqueue.com/v2/verify",
				PollURL:         "https://api.example-idqueue.com/v2/result",
				Timeout:         30 * time.Second,
				PollInterval:    time.Second,
				MaxPollAttempts: 30,
			},
			"subjectkyc": {
				Type:            ProviderTypeMultiStep,
				BaseURL:         "https://api.example-subjectkyc.com",
				Timeout:         60 * time.Second,
				DocTypeRequired: true,
			},
			"visionllm": {
				Type:      ProviderTypeVision,
				BaseURL:   "https://api.openai.com/v1",
				ModelName: "gpt-4o-mini",
				Timeout:   60 * time.Second,
			},
		},
	}
}
