package llm

import (
	"context"
	"fmt"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/internal/respcache"
)

const (
	readerSystemPrompt = "You are an AI assistant that helps reading academic papers."
	tldrUserTemplate   = "Give a summary or tldr of a research paper given its title and abstract in three sentences or less.\n\ntitle: %s\nabstract: %s"
)

// Summarizer produces short TL;DRs, one per arXiv id.
type Summarizer struct {
	provider     Provider
	cache        *respcache.Cache[string]
	metadataSink metadata.MetadataSink
}

func NewSummarizer(
	provider Provider,
	cache *respcache.Cache[string],
	metadataSink metadata.MetadataSink,
) *Summarizer {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &Summarizer{
		provider:     provider,
		cache:        cache,
		metadataSink: metadataSink,
	}
}

func (s *Summarizer) TLDR(ctx context.Context, arxivID string, title string, abstract string) (string, error) {
	return respcache.FetchOrCompute(ctx, s.cache, arxivID, func(ctx context.Context) (string, error) {
		return complete(ctx, s.provider, tldrPrompt(title, abstract), s.metadataSink, "Summarizer.TLDR", arxivID)
	})
}

func tldrPrompt(title string, abstract string) Prompt {
	return Prompt{
		System: readerSystemPrompt,
		User:   fmt.Sprintf(tldrUserTemplate, title, abstract),
	}
}
