package factory

import (
	"fmt"

	"petsc-chat-be/pkg/llm"
	"petsc-chat-be/pkg/llm/ollama"
	"petsc-chat-be/pkg/llm/openai"
)

// NewLLMProvider creates an LLM provider based on the configured provider name.
func NewLLMProvider(provider, model, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch provider {
	case "openai", "llamacpp", "":
		return openai.NewOpenAIProvider(baseURL, apiKey, model), nil
	case "ollama":
		return ollama.NewOllamaProvider(baseURL, model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", provider)
	}
}
