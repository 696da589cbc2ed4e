package api

import (
	"errors"
	"fmt"

	"github.com/notexe/medimind/internal/config"
)

// ErrNotConfigured is returned when no vision provider is configured.
var ErrNotConfigured = errors.New("no vision provider configured")

// NewProvider creates a Provider based on the configuration.
func NewProvider(cfg *config.ExtractConfig) (Provider, error) {
	switch cfg.Provider {
	case "", config.ProviderNone:
		return nil, ErrNotConfigured

	case config.ProviderOllama:
		return NewOllamaProvider(cfg.Ollama)

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s)",
			cfg.Provider, config.ProviderOllama)
	}
}
