package respcache

import (
	"fmt"
	"path/filepath"

	"github.com/rohmanhakim/paper-review/internal/metadata"
)

const (
	FeedPagesFile    = "hf_cache.jsonl"
	PaperPagesFile   = "hfp_cache.jsonl"
	AffiliationsFile = "affiliation_cache.jsonl"
	SummariesFile    = "tldr_cache.jsonl"
	OverviewsFile    = "overview_cache.jsonl"
	ReviewsFile      = "paper_review_cache.jsonl"
	StatsFile        = "emergent_cache.jsonl"
)

// Registry holds every named cache of a run. It is opened once at
// startup and handed to the components that need it.
type Registry struct {
	// FeedPages maps an ISO date to the daily listing HTML.
	FeedPages *Cache[string]
	// PaperPages maps an arXiv id to the paper page HTML.
	PaperPages *Cache[string]
	// Affiliations maps an arXiv id to the raw LLM answer listing institutions.
	Affiliations *Cache[string]
	Summaries    *Cache[string]
	// Overviews maps the Monday of a week to its digest overview.
	Overviews *Cache[string]
	Reviews   *Cache[string]
	// Stats maps an arXiv id to its social counters.
	Stats *Cache[map[string]int]
}

// Info describes one cache for diagnostics.
type Info struct {
	Name    string
	Path    string
	Entries int
}

func OpenRegistry(cacheDir string, metadataSink metadata.MetadataSink) (*Registry, error) {
	r := &Registry{}
	var err error

	raw := []struct {
		file   string
		target **Cache[string]
	}{
		{FeedPagesFile, &r.FeedPages},
		{PaperPagesFile, &r.PaperPages},
		{AffiliationsFile, &r.Affiliations},
		{SummariesFile, &r.Summaries},
		{OverviewsFile, &r.Overviews},
		{ReviewsFile, &r.Reviews},
	}
	for _, entry := range raw {
		*entry.target, err = Open(filepath.Join(cacheDir, entry.file), Raw(), metadataSink)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", entry.file, err)
		}
	}

	r.Stats, err = Open(filepath.Join(cacheDir, StatsFile), Structured[map[string]int](), metadataSink)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", StatsFile, err)
	}
	return r, nil
}

func (r *Registry) Info() []Info {
	return []Info{
		infoOf(r.FeedPages),
		infoOf(r.PaperPages),
		infoOf(r.Affiliations),
		infoOf(r.Summaries),
		infoOf(r.Overviews),
		infoOf(r.Reviews),
		infoOf(r.Stats),
	}
}

func infoOf[V any](c *Cache[V]) Info {
	return Info{Name: c.Name(), Path: c.Path(), Entries: c.Len()}
}
