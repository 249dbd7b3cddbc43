package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	ProviderGemini     = "gemini"
	DefaultGeminiModel = "gemini-2.0-flash"
)

type GeminiConfig struct {
	APIKey string
	// BaseURL optionally overrides the Gemini endpoint.
	BaseURL string
	Model   string
}

type GeminiProvider struct {
	model  string
	models geminiModelsClient
}

type geminiModelsClient interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &LLMError{
			Message:   "GEMINI_API_KEY is empty",
			Retryable: false,
			Cause:     ErrCauseMissingAPIKey,
		}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: strings.TrimSpace(cfg.BaseURL),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}
	if client == nil || client.Models == nil {
		return nil, fmt.Errorf("new gemini client: models client is nil")
	}

	return newGeminiProvider(cfg.Model, client.Models), nil
}

func newGeminiProvider(model string, models geminiModelsClient) *GeminiProvider {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{model: model, models: models}
}

func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

func (p *GeminiProvider) Model() string {
	return p.model
}

func (p *GeminiProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	contents, config := mapGeminiPrompt(prompt)
	resp, err := p.models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", p.model, err)
	}
	if resp == nil {
		return "", fmt.Errorf("gemini %s: nil response", p.model)
	}
	return resp.Text(), nil
}

func mapGeminiPrompt(prompt Prompt) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := []*genai.Content{
		{
			Role:  string(genai.RoleUser),
			Parts: []*genai.Part{{Text: prompt.User}},
		},
	}
	config := &genai.GenerateContentConfig{}
	if prompt.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		}
	}
	if prompt.Temperature > 0 {
		temperature := float32(prompt.Temperature)
		config.Temperature = &temperature
	}
	return contents, config
}

var _ Provider = (*GeminiProvider)(nil)
