package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/companion-cli/companion/providers/contracts"
	"github.com/companion-cli/companion/providers/models"
)

const (
	mistralBaseURL   = "https://api.mistral.ai/v1"
	codestralBaseURL = "https://codestral.mistral.ai/v1"

	defaultMistralModel   = "mistral-large-latest"
	defaultCodestralModel = "codestral-latest"

	requestTimeout = 60 * time.Second
)

// MistralConfig implements the chat provider contract against the
// Mistral platform and its Codestral variant.
type MistralConfig struct {
	BaseURL     string
	Model       string
	ApiKey      string
	Temperature *float32
	client      *http.Client
}

// NewMistralChatProvider creates a provider for the regular Mistral API.
func NewMistralChatProvider(config *MistralConfig) contracts.IChatProvider {
	return newProvider(config, mistralBaseURL, defaultMistralModel)
}

// NewCodestralChatProvider creates a provider for the Codestral endpoint.
func NewCodestralChatProvider(config *MistralConfig) contracts.IChatProvider {
	return newProvider(config, codestralBaseURL, defaultCodestralModel)
}

func newProvider(config *MistralConfig, defaultURL, defaultModel string) contracts.IChatProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultURL
	}
	model := config.Model
	if model == "" {
		model = defaultModel
	}
	return &MistralConfig{
		BaseURL:     baseURL,
		Model:       model,
		ApiKey:      config.ApiKey,
		Temperature: config.Temperature,
		client:      &http.Client{Timeout: requestTimeout},
	}
}

// Chat performs a single non-streaming chat completion request.
func (provider *MistralConfig) Chat(ctx context.Context, messages []models.Message) (string, *models.Usage, error) {
	reqBody := models.ChatRequest{
		Model:       provider.Model,
		Messages:    messages,
		Stream:      false,
		Temperature: provider.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("error marshalling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/chat/completions", provider.BaseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+provider.ApiKey)

	resp, err := provider.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiError models.AIError
		if err := json.Unmarshal(body, &apiError); err == nil && apiError.Error.Message != "" {
			return "", nil, fmt.Errorf("API request failed with status code '%d' - %s", resp.StatusCode, apiError.Error.Message)
		}
		return "", nil, fmt.Errorf("API request failed with status code '%d'", resp.StatusCode)
	}

	var chatResponse models.ChatResponse
	if err := json.Unmarshal(body, &chatResponse); err != nil {
		return "", nil, fmt.Errorf("error unmarshalling response: %w", err)
	}

	if len(chatResponse.Choices) == 0 {
		return "", nil, fmt.Errorf("no response content found")
	}

	return chatResponse.Choices[0].Message.Content, &chatResponse.Usage, nil
}
