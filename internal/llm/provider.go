package llm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rohmanhakim/paper-review/internal/metadata"
)

// Prompt is a single-turn request: one system instruction, one user message.
type Prompt struct {
	System      string
	User        string
	Temperature float64
}

// Provider completes prompts against one hosted model.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Registry resolves providers by name. It is immutable after NewRegistry.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) (*Registry, error) {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		name := strings.ToLower(p.Name())
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("duplicate provider %q", name)
		}
		byName[name] = p
	}
	return &Registry{providers: byName}, nil
}

func (r *Registry) Resolve(name string) (Provider, error) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, &LLMError{
			Message:   fmt.Sprintf("%q is not configured (available: %s)", name, strings.Join(r.Names(), ", ")),
			Retryable: false,
			Cause:     ErrCauseUnknownProvider,
		}
	}
	return p, nil
}

// Names lists the configured providers in ascending order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// complete runs one prompt and normalizes the answer. Failures are
// reported to the sink and returned as *LLMError.
func complete(
	ctx context.Context,
	provider Provider,
	prompt Prompt,
	metadataSink metadata.MetadataSink,
	action string,
	key string,
) (string, error) {
	answer, err := provider.Complete(ctx, prompt)
	var llmErr *LLMError
	switch {
	case err != nil && !errors.As(err, &llmErr):
		llmErr = &LLMError{
			Message:   err.Error(),
			Retryable: ctx.Err() == nil,
			Cause:     ErrCauseRequestFailed,
		}
	case err == nil && strings.TrimSpace(answer) == "":
		llmErr = &LLMError{
			Message:   "model returned no text",
			Retryable: true,
			Cause:     ErrCauseEmptyCompletion,
		}
	case err == nil:
		return strings.TrimSpace(answer), nil
	}

	metadataSink.RecordError(
		time.Now(),
		"llm",
		action,
		mapLLMErrorToMetadataCause(llmErr),
		llmErr.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrKey, key),
			metadata.NewAttr(metadata.AttrModel, provider.Name()+"/"+provider.Model()),
		},
	)
	return "", llmErr
}
