package embedding

import "fmt"

// NewProvider creates an embedding provider based on the configured name.
func NewProvider(provider, baseURL, apiKey, model string) (EmbeddingProvider, error) {
	switch provider {
	case "ollama", "":
		return NewOllamaProvider(baseURL, model), nil
	case "openai":
		return NewOpenAIProvider(baseURL, apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", provider)
	}
}
