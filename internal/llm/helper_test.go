package llm

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/paper-review/internal/fetcher"
	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/internal/respcache"
	"github.com/rohmanhakim/paper-review/pkg/failure"
	"github.com/rohmanhakim/paper-review/pkg/retry"
	"github.com/stretchr/testify/require"
)

// fakeProvider answers prompts from a fixed script and records them.
type fakeProvider struct {
	answer  string
	err     error
	prompts []Prompt
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-1" }

func (f *fakeProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeFetcher struct {
	body  []byte
	err   failure.ClassifiedError
	calls []fetcher.FetchParam
}

func (f *fakeFetcher) Fetch(
	ctx context.Context,
	fetchParam fetcher.FetchParam,
	retryParam retry.RetryParam,
) (fetcher.FetchResult, failure.ClassifiedError) {
	f.calls = append(f.calls, fetchParam)
	if f.err != nil {
		return fetcher.FetchResult{}, f.err
	}
	u := fetchParam.URL()
	return fetcher.NewFetchResultForTest(u, f.body, 200, "application/pdf"), nil
}

type errorSink struct {
	metadata.NoopSink
	causes []metadata.ErrorCause
}

func (s *errorSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.causes = append(s.causes, cause)
}

func openRawCache(t *testing.T, name string) *respcache.Cache[string] {
	t.Helper()
	c, err := respcache.Open(filepath.Join(t.TempDir(), name), respcache.Raw(), nil)
	require.NoError(t, err)
	return c
}

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

var errBoom = errors.New("boom")
