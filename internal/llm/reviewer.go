package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/internal/respcache"
)

const (
	reviewUserTemplate   = "Write a short review of this research paper for a weekly reading digest. In one paragraph, explain what the paper contributes and why it matters.\n\ntitle: %s\nabstract: %s"
	overviewUserTemplate = "Below are the papers picked for the week of %s. Write one paragraph that gives an overview of the themes they share.\n\n%s"
)

// PaperBrief is what the reviewer knows about a picked paper.
type PaperBrief struct {
	ArxivID  string
	Title    string
	Abstract string
	TLDR     string
}

// Reviewer writes the prose of the weekly digest.
type Reviewer struct {
	provider     Provider
	reviews      *respcache.Cache[string]
	overviews    *respcache.Cache[string]
	metadataSink metadata.MetadataSink
}

func NewReviewer(
	provider Provider,
	reviews *respcache.Cache[string],
	overviews *respcache.Cache[string],
	metadataSink metadata.MetadataSink,
) *Reviewer {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &Reviewer{
		provider:     provider,
		reviews:      reviews,
		overviews:    overviews,
		metadataSink: metadataSink,
	}
}

// Review is cached by arXiv id.
func (r *Reviewer) Review(ctx context.Context, paper PaperBrief) (string, error) {
	return respcache.FetchOrCompute(ctx, r.reviews, paper.ArxivID, func(ctx context.Context) (string, error) {
		prompt := Prompt{
			System: readerSystemPrompt,
			User:   fmt.Sprintf(reviewUserTemplate, paper.Title, paper.Abstract),
		}
		return complete(ctx, r.provider, prompt, r.metadataSink, "Reviewer.Review", paper.ArxivID)
	})
}

// Overview is cached by week, so a week keeps its overview even when
// the set of picks changes later.
func (r *Reviewer) Overview(ctx context.Context, week string, papers []PaperBrief) (string, error) {
	return respcache.FetchOrCompute(ctx, r.overviews, week, func(ctx context.Context) (string, error) {
		prompt := Prompt{
			System: readerSystemPrompt,
			User:   fmt.Sprintf(overviewUserTemplate, week, briefList(papers)),
		}
		return complete(ctx, r.provider, prompt, r.metadataSink, "Reviewer.Overview", week)
	})
}

func briefList(papers []PaperBrief) string {
	var b strings.Builder
	for i, p := range papers {
		summary := p.TLDR
		if summary == "" {
			summary = p.Abstract
		}
		fmt.Fprintf(&b, "%d. %s\n%s\n\n", i+1, p.Title, summary)
	}
	return strings.TrimSpace(b.String())
}
