package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted when the config leaves fields unset.
const (
	EnvProvider     = "DOCCHUNK_EMBEDDING_PROVIDER"
	EnvOllamaURL    = "OLLAMA_URL"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Config holds embedder configuration
type Config struct {
	Provider  string
	BaseURL   string
	APIKey    string
	Model     string
	CacheSize int
}

// New creates an embedder from configuration. An empty provider falls
// back to environment detection via DetectProvider.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = DetectProvider()
	}

	switch provider {
	case ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = os.Getenv(EnvOllamaURL)
		}
		return NewOllamaProvider(baseURL, cfg.Model, cache)
	case ProviderOpenAI:
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv(EnvOpenAIAPIKey)
		}
		return NewOpenAIProvider(cfg.BaseURL, apiKey, cfg.Model, cache)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

// DetectProvider picks a provider from the environment.
// Priority:
// 1. DOCCHUNK_EMBEDDING_PROVIDER (ollama, openai)
// 2. OPENAI_API_KEY present -> openai
// 3. Default to a local Ollama server
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}

	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}

	return ProviderOllama
}
