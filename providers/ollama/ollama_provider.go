package ollama

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
	defaultBaseURL = "http://localhost:11434/api"
	defaultModel   = "qwen2.5-coder"

	requestTimeout = 300 * time.Second
)

// OllamaConfig implements the chat provider contract against a local
// Ollama server. Local inference is slow, hence the generous timeout.
type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature *float32
	client      *http.Client
}

type chatRequest struct {
	Model    string           `json:"model"`
	Messages []models.Message `json:"messages"`
	Stream   bool             `json:"stream"`
	Options  *chatOptions     `json:"options,omitempty"`
}

type chatOptions struct {
	Temperature *float32 `json:"temperature,omitempty"`
}

type chatResponse struct {
	Message         models.Message `json:"message"`
	PromptEvalCount int            `json:"prompt_eval_count"`
	EvalCount       int            `json:"eval_count"`
}

// NewOllamaChatProvider creates a provider for a local Ollama server.
func NewOllamaChatProvider(config *OllamaConfig) contracts.IChatProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultModel
	}
	return &OllamaConfig{
		BaseURL:     baseURL,
		Model:       model,
		Temperature: config.Temperature,
		client:      &http.Client{Timeout: requestTimeout},
	}
}

// Chat performs a single non-streaming chat request.
func (provider *OllamaConfig) Chat(ctx context.Context, messages []models.Message) (string, *models.Usage, error) {
	reqBody := chatRequest{
		Model:    provider.Model,
		Messages: messages,
		Stream:   false,
	}
	if provider.Temperature != nil {
		reqBody.Options = &chatOptions{Temperature: provider.Temperature}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("error marshalling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/chat", provider.BaseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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
		return "", nil, fmt.Errorf("API request failed with status code '%d'", resp.StatusCode)
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", nil, fmt.Errorf("error unmarshalling response: %w", err)
	}

	usage := &models.Usage{
		PromptTokens:     response.PromptEvalCount,
		CompletionTokens: response.EvalCount,
		TotalTokens:      response.PromptEvalCount + response.EvalCount,
	}
	return response.Message.Content, usage, nil
}
