package providers

import (
	"fmt"

	"github.com/companion-cli/companion/providers/contracts"
	"github.com/companion-cli/companion/providers/mistral"
	"github.com/companion-cli/companion/providers/ollama"
)

// AIProviderConfig holds the provider-related part of the configuration.
type AIProviderConfig struct {
	Provider    string   `mapstructure:"provider"`
	BaseURL     string   `mapstructure:"base_url"`
	Model       string   `mapstructure:"model"`
	ApiKey      string   `mapstructure:"api_key"`
	Temperature *float32 `mapstructure:"temperature"`
}

// ChatProviderFactory creates the chat provider named by the config.
func ChatProviderFactory(config *AIProviderConfig) (contracts.IChatProvider, error) {
	mistralConfig := &mistral.MistralConfig{
		BaseURL:     config.BaseURL,
		Model:       config.Model,
		ApiKey:      config.ApiKey,
		Temperature: config.Temperature,
	}

	switch config.Provider {
	case "mistral":
		return mistral.NewMistralChatProvider(mistralConfig), nil
	case "codestral":
		return mistral.NewCodestralChatProvider(mistralConfig), nil
	case "ollama":
		return ollama.NewOllamaChatProvider(&ollama.OllamaConfig{
			BaseURL:     config.BaseURL,
			Model:       config.Model,
			Temperature: config.Temperature,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}
}
