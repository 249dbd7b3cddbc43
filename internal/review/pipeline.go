package review

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/rohmanhakim/paper-review/internal/feed"
	"github.com/rohmanhakim/paper-review/internal/fetcher"
	"github.com/rohmanhakim/paper-review/internal/llm"
	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/internal/respcache"
	"github.com/rohmanhakim/paper-review/internal/stats"
	"github.com/rohmanhakim/paper-review/pkg/retry"
)

/*
 Pipeline is the sole control-plane authority of a review run.

 - Days are processed in the given order, papers in listing order.
 - Every network or model result goes through a response cache first,
   so a rerun only pays for what the previous run did not finish.
 - Any paper-level failure aborts the run. Work cached before the
   failure stays cached.

 Metadata emission is observational only and MUST NOT influence
 control flow.
*/

type Summarizer interface {
	TLDR(ctx context.Context, arxivID string, title string, abstract string) (string, error)
}

type AffiliationSource interface {
	Affiliations(ctx context.Context, arxivID string, pdfURL string) (string, error)
}

type StatsSource interface {
	Stats(ctx context.Context, arxivID string) (stats.SocialStats, error)
}

type PipelineParam struct {
	FeedURL    url.URL
	UserAgent  string
	RetryParam retry.RetryParam
}

type Pipeline struct {
	metadataSink metadata.MetadataSink
	runFinalizer metadata.RunFinalizer
	fetcher      fetcher.Fetcher
	parser       *feed.Parser
	feedPages    *respcache.Cache[string]
	paperPages   *respcache.Cache[string]
	summarizer   Summarizer
	affiliations AffiliationSource
	stats        StatsSource
	param        PipelineParam
}

// NewPipeline wires a pipeline. statsSource may be nil to skip social
// statistics.
func NewPipeline(
	metadataSink metadata.MetadataSink,
	runFinalizer metadata.RunFinalizer,
	pageFetcher fetcher.Fetcher,
	parser *feed.Parser,
	caches *respcache.Registry,
	summarizer Summarizer,
	affiliations AffiliationSource,
	statsSource StatsSource,
	param PipelineParam,
) *Pipeline {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if runFinalizer == nil {
		runFinalizer = &metadata.NoopSink{}
	}
	return &Pipeline{
		metadataSink: metadataSink,
		runFinalizer: runFinalizer,
		fetcher:      pageFetcher,
		parser:       parser,
		feedPages:    caches.FeedPages,
		paperPages:   caches.PaperPages,
		summarizer:   summarizer,
		affiliations: affiliations,
		stats:        statsSource,
		param:        param,
	}
}

// WithStats reports whether rows carry social statistics.
func (p *Pipeline) WithStats() bool {
	return p.stats != nil
}

// Run collects every paper listed on days and returns them ordered by
// upvotes, highest first. Ties keep listing order.
func (p *Pipeline) Run(ctx context.Context, days []string) (Execution, error) {
	startedAt := time.Now()
	var papers []Paper
	var totalErrors int

	defer func() {
		p.runFinalizer.RecordFinalRunStats(len(papers), totalErrors, time.Since(startedAt))
	}()

	for _, day := range days {
		dayPapers, err := p.processDay(ctx, day)
		papers = append(papers, dayPapers...)
		if err != nil {
			totalErrors++
			return Execution{}, fmt.Errorf("process %s: %w", day, err)
		}
	}

	slices.SortStableFunc(papers, func(a, b Paper) int {
		return cmp.Compare(b.Upvotes, a.Upvotes)
	})

	execution := Execution{Days: days, Papers: papers}
	if len(days) > 0 {
		execution.Week = days[0]
	}
	return execution, nil
}

func (p *Pipeline) processDay(ctx context.Context, day string) ([]Paper, error) {
	listingURL := feed.ListingURL(p.param.FeedURL, day)
	html, err := p.page(ctx, p.feedPages, day, listingURL)
	if err != nil {
		return nil, err
	}

	entries, parseErr := p.parser.ParseListing(listingURL, html)
	if parseErr != nil {
		return nil, parseErr
	}

	papers := make([]Paper, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return papers, err
		}
		paper, err := p.processPaper(ctx, day, entry)
		if err != nil {
			return papers, fmt.Errorf("paper %s: %w", entry.ArxivID, err)
		}
		papers = append(papers, paper)
	}
	return papers, nil
}

func (p *Pipeline) processPaper(ctx context.Context, day string, entry feed.ListingEntry) (Paper, error) {
	html, err := p.page(ctx, p.paperPages, entry.ArxivID, entry.PaperURL)
	if err != nil {
		return Paper{}, err
	}

	page, parseErr := p.parser.ParsePaperPage(entry.PaperURL, html)
	if parseErr != nil {
		return Paper{}, parseErr
	}

	tldr, err := served(p.summarizer.TLDR(ctx, entry.ArxivID, entry.Title, page.Abstract))
	if err != nil {
		return Paper{}, err
	}

	rawAffiliations, err := served(p.affiliations.Affiliations(ctx, entry.ArxivID, page.PDFURL))
	if err != nil {
		return Paper{}, err
	}

	paper := Paper{
		Title:            entry.Title,
		TLDR:             tldr,
		Affiliations:     p.formatAffiliations(entry.ArxivID, rawAffiliations),
		Upvotes:          page.Upvotes,
		Abstract:         page.Abstract,
		AbstractMarkdown: page.AbstractMarkdown,
		Date:             day,
		ArxivID:          entry.ArxivID,
		ArxivURL:         page.ArxivURL,
		URL:              entry.PaperURL.String(),
		PDFURL:           page.PDFURL,
	}
	if page.PaperOfTheDay {
		paper.PaperOfTheDay = day
	}

	if p.stats != nil {
		socialStats, err := served(p.stats.Stats(ctx, entry.ArxivID))
		if err != nil {
			return Paper{}, err
		}
		paper.Stats = &socialStats
	}

	return paper, nil
}

// formatAffiliations falls back to the cleaned model text when the answer
// is not a JSON list, so one odd answer does not sink the week.
func (p *Pipeline) formatAffiliations(arxivID string, raw string) string {
	formatted, err := llm.FormatAffiliations(raw)
	if err == nil {
		return formatted
	}
	p.metadataSink.RecordError(
		time.Now(),
		"review",
		"Pipeline.formatAffiliations",
		metadata.CauseContentInvalid,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrArxivID, arxivID),
		},
	)
	return llm.CleanAffiliations(raw)
}

// page returns the HTML of pageURL through cache under key.
func (p *Pipeline) page(
	ctx context.Context,
	cache *respcache.Cache[string],
	key string,
	pageURL url.URL,
) (string, error) {
	html, err := respcache.FetchOrCompute(ctx, cache, key, func(ctx context.Context) (string, error) {
		result, fetchErr := p.fetcher.Fetch(ctx, fetcher.NewFetchParam(pageURL, p.param.UserAgent, fetcher.KindHTML), p.param.RetryParam)
		if fetchErr != nil {
			return "", fetchErr
		}
		return result.Text(), nil
	})
	return served(html, err)
}

// served drops persist failures: the value is good and the failure has
// already been recorded by the cache.
func served[V any](value V, err error) (V, error) {
	if err != nil && respcache.IsPersistError(err) {
		return value, nil
	}
	return value, err
}
