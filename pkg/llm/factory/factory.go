package factory

import (
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/llm/ollama"
	"fmt"
)

// NewLLMProvider builds the configured generative backend. Only Ollama is
// wired today; the answer pipeline depends solely on the LLMProvider
// interface, so adding a backend is a new case here.
func NewLLMProvider(providerType, modelName, baseURL string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", providerType)
	}
}
