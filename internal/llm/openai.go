package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	ProviderOpenAI     = "openai"
	DefaultOpenAIModel = "gpt-4o-mini"
)

type OpenAIConfig struct {
	APIKey string
	// BaseURL optionally overrides the OpenAI endpoint.
	BaseURL string
	Model   string
}

type OpenAIProvider struct {
	model     string
	responses openAIResponsesClient
}

type openAIResponsesClient interface {
	New(ctx context.Context, body responses.ResponseNewParams, opts ...option.RequestOption) (*responses.Response, error)
}

type openAIResponseServiceAdapter struct {
	service responses.ResponseService
}

func (a openAIResponseServiceAdapter) New(
	ctx context.Context,
	body responses.ResponseNewParams,
	opts ...option.RequestOption,
) (*responses.Response, error) {
	return a.service.New(ctx, body, opts...)
}

func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &LLMError{
			Message:   "OPENAI_API_KEY is empty",
			Retryable: false,
			Cause:     ErrCauseMissingAPIKey,
		}
	}

	options := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(options...)

	return newOpenAIProvider(cfg.Model, openAIResponseServiceAdapter{service: client.Responses}), nil
}

func newOpenAIProvider(model string, client openAIResponsesClient) *OpenAIProvider {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{model: model, responses: client}
}

func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

func (p *OpenAIProvider) Model() string {
	return p.model
}

func (p *OpenAIProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := p.responses.New(ctx, mapOpenAIPrompt(p.model, prompt))
	if err != nil {
		return "", fmt.Errorf("openai %s: %w", p.model, err)
	}
	if resp == nil {
		return "", fmt.Errorf("openai %s: nil response", p.model)
	}
	return resp.OutputText(), nil
}

func mapOpenAIPrompt(model string, prompt Prompt) responses.ResponseNewParams {
	params := responses.ResponseNewParams{
		Model: model,
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(prompt.User),
		},
	}
	if prompt.System != "" {
		params.Instructions = openai.String(prompt.System)
	}
	if prompt.Temperature > 0 {
		params.Temperature = openai.Float(prompt.Temperature)
	}
	return params
}

var _ Provider = (*OpenAIProvider)(nil)
