package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewer_ReviewCachedByArxivID(t *testing.T) {
	provider := &fakeProvider{answer: "Worth reading."}
	r := NewReviewer(provider, openRawCache(t, "paper_review_cache.jsonl"), openRawCache(t, "overview_cache.jsonl"), nil)
	paper := PaperBrief{ArxivID: "2408.05147", Title: "T", Abstract: "A"}

	for range 3 {
		got, err := r.Review(context.Background(), paper)
		require.NoError(t, err)
		assert.Equal(t, "Worth reading.", got)
	}

	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0].User, "title: T\nabstract: A")
}

func TestReviewer_OverviewCachedByWeek(t *testing.T) {
	provider := &fakeProvider{answer: "A week about agents."}
	reviews := openRawCache(t, "paper_review_cache.jsonl")
	overviews := openRawCache(t, "overview_cache.jsonl")
	r := NewReviewer(provider, reviews, overviews, nil)
	papers := []PaperBrief{
		{ArxivID: "1", Title: "First", TLDR: "first tldr"},
		{ArxivID: "2", Title: "Second", Abstract: "second abstract"},
	}

	got, err := r.Overview(context.Background(), "2024-08-12", papers)
	require.NoError(t, err)
	_, err = r.Overview(context.Background(), "2024-08-12", papers[:1])
	require.NoError(t, err)

	assert.Equal(t, "A week about agents.", got)
	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0].User, "1. First\nfirst tldr")
	assert.Contains(t, provider.prompts[0].User, "2. Second\nsecond abstract")
	assert.Equal(t, []string{"2024-08-12"}, overviews.Keys())
	assert.Equal(t, 0, reviews.Len())
}
