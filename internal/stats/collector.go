package stats

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rohmanhakim/paper-review/internal/fetcher"
	"github.com/rohmanhakim/paper-review/internal/respcache"
	"github.com/rohmanhakim/paper-review/pkg/retry"
	"github.com/rohmanhakim/paper-review/pkg/urlutil"
)

// Collector reads social counters from Emergent Mind paper pages.
type Collector struct {
	fetcher    fetcher.Fetcher
	cache      *respcache.Cache[map[string]int]
	baseURL    url.URL
	userAgent  string
	retryParam retry.RetryParam
	patterns   map[string]*regexp.Regexp
}

func NewCollector(
	pageFetcher fetcher.Fetcher,
	cache *respcache.Cache[map[string]int],
	baseURL url.URL,
	userAgent string,
	retryParam retry.RetryParam,
) *Collector {
	patterns := make(map[string]*regexp.Regexp, len(counters))
	for _, c := range counters {
		patterns[c.pageKey] = regexp.MustCompile(`"` + regexp.QuoteMeta(c.pageKey) + `":\s*([^"]*),`)
	}
	return &Collector{
		fetcher:    pageFetcher,
		cache:      cache,
		baseURL:    baseURL,
		userAgent:  userAgent,
		retryParam: retryParam,
		patterns:   patterns,
	}
}

// PageURL is the Emergent Mind page of an arXiv id.
func (c *Collector) PageURL(arxivID string) (url.URL, error) {
	return urlutil.Resolve(c.baseURL, url.PathEscape(arxivID))
}

func (c *Collector) Stats(ctx context.Context, arxivID string) (SocialStats, error) {
	m, err := respcache.FetchOrCompute(ctx, c.cache, arxivID, func(ctx context.Context) (map[string]int, error) {
		pageURL, err := c.PageURL(arxivID)
		if err != nil {
			return nil, &fetcher.FetchError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     fetcher.ErrCauseInvalidURL,
			}
		}
		result, fetchErr := c.fetcher.Fetch(ctx, fetcher.NewFetchParam(pageURL, c.userAgent, fetcher.KindHTML), c.retryParam)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return c.parse(result.Text()).toMap(), nil
	})
	if err != nil && m == nil {
		return SocialStats{}, err
	}
	return fromMap(m), err
}

func (c *Collector) parse(page string) SocialStats {
	page = strings.ReplaceAll(page, "&quot;", `"`)
	values := make(map[string]int, len(counters))
	for _, counter := range counters {
		values[counter.column] = c.extract(page, counter.pageKey)
	}
	return fromMap(values)
}

func (c *Collector) extract(page string, key string) int {
	match := c.patterns[key].FindStringSubmatch(page)
	if match == nil {
		return Missing
	}
	n, err := strconv.Atoi(strings.TrimSpace(match[1]))
	if err != nil {
		return Missing
	}
	return n
}
