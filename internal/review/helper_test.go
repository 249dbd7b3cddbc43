package review_test

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/paper-review/internal/fetcher"
	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/internal/stats"
	"github.com/rohmanhakim/paper-review/pkg/failure"
	"github.com/rohmanhakim/paper-review/pkg/retry"
	"github.com/stretchr/testify/mock"
)

// fetcherMock is a testify mock for the Fetcher
type fetcherMock struct {
	mock.Mock
}

func (f *fetcherMock) Fetch(
	ctx context.Context,
	fetchParam fetcher.FetchParam,
	retryParam retry.RetryParam,
) (fetcher.FetchResult, failure.ClassifiedError) {
	args := f.Called(ctx, fetchParam, retryParam)
	result := args.Get(0).(fetcher.FetchResult)
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return result, err
}

// servePage makes the mock answer requests for rawURL with body, once.
func (f *fetcherMock) servePage(rawURL string, body string) {
	u, _ := url.Parse(rawURL)
	result := fetcher.NewFetchResultForTest(*u, []byte(body), 200, "text/html")
	f.On("Fetch", mock.Anything, mock.MatchedBy(func(p fetcher.FetchParam) bool {
		got := p.URL()
		return got.String() == rawURL
	}), mock.Anything).Return(result, nil).Once()
}

type summarizerMock struct {
	mock.Mock
}

func (s *summarizerMock) TLDR(ctx context.Context, arxivID string, title string, abstract string) (string, error) {
	args := s.Called(ctx, arxivID, title, abstract)
	return args.String(0), args.Error(1)
}

type affiliationsMock struct {
	mock.Mock
}

func (a *affiliationsMock) Affiliations(ctx context.Context, arxivID string, pdfURL string) (string, error) {
	args := a.Called(ctx, arxivID, pdfURL)
	return args.String(0), args.Error(1)
}

type statsMock struct {
	mock.Mock
}

func (s *statsMock) Stats(ctx context.Context, arxivID string) (stats.SocialStats, error) {
	args := s.Called(ctx, arxivID)
	return args.Get(0).(stats.SocialStats), args.Error(1)
}

type finalizerMock struct {
	mock.Mock
}

func (f *finalizerMock) RecordFinalRunStats(totalPapers int, totalErrors int, duration time.Duration) {
	f.Called(totalPapers, totalErrors, duration)
}

type errorSink struct {
	metadata.NoopSink
	actions []string
}

func (s *errorSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.actions = append(s.actions, action)
}

type listedPaper struct {
	id      string
	title   string
	upvotes int
	potd    bool
}

func listingHTML(papers ...listedPaper) string {
	var b strings.Builder
	b.WriteString("<html><body><main>")
	for _, p := range papers {
		fmt.Fprintf(&b,
			`<article><div class="from-gray-50-to-white"><h3><a href="/papers/%s">%s</a></h3></div></article>`,
			p.id, p.title,
		)
	}
	b.WriteString("</main></body></html>")
	return b.String()
}

func paperHTML(p listedPaper) string {
	badge := ""
	if p.potd {
		badge = `<a href="/papers?date=x">Paper of the day</a>`
	}
	return fmt.Sprintf(`<html><body><main>%s
<h1>%s</h1>
<a href="https://arxiv.org/abs/%s">View arXiv page</a>
<a href="https://arxiv.org/pdf/%s">View PDF</a>
<div class="font-semibold text-orange-500">%d</div>
<div><h2>Abstract</h2><p>Abstract of %s.</p></div>
</main></body></html>`, badge, p.title, p.id, p.id, p.upvotes, p.title)
}
