package providers

import (
	"fmt"
	"strings"

	"facegate-server-go/internal/platform/config"
	"facegate-server-go/internal/utils"
)

// Factory builds an adapter from its config block. name is the config block
// name, not the protocol type.
type Factory func(name string, cfg config.ProviderConfig, logger *utils.Logger) (Provider, error)

var factories = make(map[string]Factory)

// Register registers an adapter factory for a protocol type. Called from the
// adapter packages' init functions.
func Register(protocolType string, factory Factory) {
	factories[strings.ToLower(protocolType)] = factory
}

// Create instantiates the adapter for a provider config block.
func Create(name string, cfg config.ProviderConfig, logger *utils.Logger) (Provider, error) {
	factory, ok := factories[strings.ToLower(cfg.Type)]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}

	provider, err := factory(name, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create provider %s: %w", name, err)
	}

	return provider, nil
}
