package stats_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/paper-review/internal/fetcher"
	"github.com/rohmanhakim/paper-review/internal/respcache"
	"github.com/rohmanhakim/paper-review/internal/stats"
	"github.com/rohmanhakim/paper-review/pkg/limiter"
	"github.com/rohmanhakim/paper-review/pkg/retry"
	"github.com/rohmanhakim/paper-review/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statsPage = `<html><body>
<div data-props="{&quot;paper&quot;:{&quot;twitter_likes_count&quot;: 120,&quot;reddit_points_count&quot;: 7,&quot;hacker_news_points_count&quot;: null,&quot;github_stars_count&quot;: 3400,&quot;title&quot;:&quot;x&quot;}}"></div>
</body></html>`

func newCollector(t *testing.T, serverURL string) (*stats.Collector, *respcache.Cache[map[string]int]) {
	t.Helper()
	cache, err := respcache.Open(filepath.Join(t.TempDir(), respcache.StatsFile), respcache.Structured[map[string]int](), nil)
	require.NoError(t, err)

	base, err := url.Parse(serverURL + "/papers/")
	require.NoError(t, err)

	rl := limiter.NewHostRateLimiter(0, 0, 1, timeutil.NewBackoffParam(time.Millisecond, 2, 10*time.Millisecond))
	f := fetcher.NewHttpFetcher(nil, &http.Client{}, rl, 5*time.Second)
	retryParam := retry.NewRetryParam(1, 0, timeutil.NewBackoffParam(time.Millisecond, 2, 10*time.Millisecond))

	return stats.NewCollector(f, cache, *base, "paper-review-test", retryParam), cache
}

func TestCollector_ExtractsCountersAndCaches(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/papers/2408.06292", r.URL.Path)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(statsPage))
	}))
	defer server.Close()

	collector, cache := newCollector(t, server.URL)

	got, err := collector.Stats(context.Background(), "2408.06292")
	require.NoError(t, err)
	again, err := collector.Stats(context.Background(), "2408.06292")
	require.NoError(t, err)

	want := stats.SocialStats{
		TwitterLikes:     120,
		RedditPoints:     7,
		HackerNewsPoints: stats.Missing,
		GithubRepos:      stats.Missing,
		GithubStars:      3400,
	}
	assert.Equal(t, want, got)
	assert.Equal(t, want, again)
	assert.Equal(t, 1, requests)

	cached, ok := cache.Get("2408.06292")
	require.True(t, ok)
	assert.Equal(t, 3400, cached["githubStarsCount"])
	assert.Equal(t, -1, cached["githubReposCount"])
}

func TestCollector_StatsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, respcache.StatsFile)
	cache, err := respcache.Open(path, respcache.Structured[map[string]int](), nil)
	require.NoError(t, err)
	require.NoError(t, cache.Put("1", map[string]int{"twitterLikesCount": 5}))

	reopened, err := respcache.Open(path, respcache.Structured[map[string]int](), nil)
	require.NoError(t, err)
	value, ok := reopened.Get("1")

	require.True(t, ok)
	assert.Equal(t, map[string]int{"twitterLikesCount": 5}, value)
}

func TestCollector_FetchFailureIsNotCached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	collector, cache := newCollector(t, server.URL)

	_, err := collector.Stats(context.Background(), "2408.06292")

	var fetchErr *fetcher.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, fetcher.ErrCauseRequestNotFound, fetchErr.Cause)
	assert.Equal(t, 0, cache.Len())
}

func TestColumnsMatchValues(t *testing.T) {
	s := stats.SocialStats{TwitterLikes: 1, RedditPoints: 2, HackerNewsPoints: 3, GithubRepos: 4, GithubStars: 5}

	assert.Equal(t,
		[]string{"twitterLikesCount", "redditPointsCount", "hackerNewsPointsCount", "githubReposCount", "githubStarsCount"},
		stats.Columns(),
	)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, s.Values())
}
