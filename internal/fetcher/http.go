package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/pkg/failure"
	"github.com/rohmanhakim/paper-review/pkg/limiter"
	"github.com/rohmanhakim/paper-review/pkg/retry"
)

/*
Responsibilities

- Perform HTTP GET requests for listing pages, paper pages and PDFs
- Pace requests per host and back off on 429/5xx
- Classify responses into retryable and fatal errors
- Check the content type against the expected kind

The fetcher never parses content; it only returns bytes and metadata.
*/

const maxRedirects = 10

type HttpFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	rateLimiter  limiter.RateLimiter
}

// NewHttpFetcher builds a fetcher. A nil client gets a default one with
// the given timeout; a nil rateLimiter disables pacing.
func NewHttpFetcher(
	metadataSink metadata.MetadataSink,
	httpClient *http.Client,
	rateLimiter limiter.RateLimiter,
	timeout time.Duration,
) *HttpFetcher {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &HttpFetcher{
		metadataSink: metadataSink,
		httpClient:   httpClient,
		rateLimiter:  rateLimiter,
	}
}

func (h *HttpFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HttpFetcher.Fetch"
	startTime := time.Now()

	result := retry.Retry(ctx, retryParam, func() (FetchResult, failure.ClassifiedError) {
		return h.performFetch(ctx, fetchParam)
	})

	duration := time.Since(startTime)
	retryCount := max(result.Attempts()-1, 0)

	if result.IsFailure() {
		err := result.Err()
		statusCode := 0
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			statusCode = fetchErr.StatusCode
		}
		h.metadataSink.RecordFetch(fetchParam.fetchUrl.String(), statusCode, duration, "", retryCount)
		h.recordError(callerMethod, fetchParam, err)
		return FetchResult{}, err
	}

	fetched := result.Value()
	fetched.meta.attempts = result.Attempts()
	h.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		fetched.Code(),
		duration,
		fetched.ContentType(),
		retryCount,
	)
	return fetched, nil
}

func (h *HttpFetcher) recordError(callerMethod string, fetchParam FetchParam, err failure.ClassifiedError) {
	cause := metadata.CauseUnknown
	var fetchErr *FetchError
	var retryErr *retry.RetryError
	switch {
	case errors.As(err, &fetchErr):
		cause = mapFetchErrorToMetadataCause(fetchErr)
	case errors.As(err, &retryErr):
		cause = metadata.CauseNetworkFailure
	}
	h.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		callerMethod,
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, fetchParam.fetchUrl.String()),
			metadata.NewAttr(metadata.AttrHost, fetchParam.fetchUrl.Host),
		},
	)
}

func (h *HttpFetcher) performFetch(ctx context.Context, fetchParam FetchParam) (FetchResult, failure.ClassifiedError) {
	fetchUrl := fetchParam.fetchUrl
	host := fetchUrl.Host

	if h.rateLimiter != nil {
		if err := h.rateLimiter.Wait(ctx, host); err != nil {
			return FetchResult{}, &FetchError{
				Message:   fmt.Sprintf("waiting for %s: %v", host, err),
				Retryable: false,
				Cause:     ErrCauseNetworkFailure,
			}
		}
		defer h.rateLimiter.MarkLastFetchAsNow(host)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseInvalidURL,
		}
	}
	for key, value := range requestHeaders(fetchParam.userAgent, fetchParam.kind) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		// a canceled context is final, everything else at the transport level is retryable
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: ctx.Err() == nil,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	if statusErr := classifyStatus(resp.StatusCode); statusErr != nil {
		if h.rateLimiter != nil && statusErr.Retryable {
			h.rateLimiter.Backoff(host)
		}
		return FetchResult{}, statusErr
	}

	contentType := resp.Header.Get("Content-Type")
	if !matchesKind(contentType, fetchParam.kind) {
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("expected %s, got content type %q", fetchParam.kind, contentType),
			Retryable:  false,
			Cause:      ErrCauseContentTypeInvalid,
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			Retryable:  true,
			Cause:      ErrCauseReadResponseBodyError,
			StatusCode: resp.StatusCode,
		}
	}

	if h.rateLimiter != nil {
		h.rateLimiter.ResetBackoff(host)
	}

	return FetchResult{
		url:  fetchUrl,
		body: body,
		meta: ResponseMeta{
			statusCode:          resp.StatusCode,
			contentType:         contentType,
			transferredSizeByte: uint64(len(body)),
		},
	}, nil
}

func classifyStatus(statusCode int) *FetchError {
	switch {
	case statusCode >= 500:
		return &FetchError{
			Message:    fmt.Sprintf("server error: %d", statusCode),
			Retryable:  true,
			Cause:      ErrCauseRequest5xx,
			StatusCode: statusCode,
		}
	case statusCode == http.StatusTooManyRequests:
		return &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseRequestTooMany,
			StatusCode: statusCode,
		}
	case statusCode == http.StatusForbidden:
		return &FetchError{
			Message:    "access forbidden (403)",
			Retryable:  false,
			Cause:      ErrCauseRequestPageForbidden,
			StatusCode: statusCode,
		}
	case statusCode == http.StatusNotFound:
		return &FetchError{
			Message:    "page not found (404)",
			Retryable:  false,
			Cause:      ErrCauseRequestNotFound,
			StatusCode: statusCode,
		}
	case statusCode >= 400:
		return &FetchError{
			Message:    fmt.Sprintf("client error: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRequestClientError,
			StatusCode: statusCode,
		}
	case statusCode >= 300:
		return &FetchError{
			Message:    fmt.Sprintf("redirect error: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRedirectLimitExceeded,
			StatusCode: statusCode,
		}
	}
	return nil
}

func matchesKind(contentType string, kind ContentKind) bool {
	contentType = strings.ToLower(contentType)
	switch kind {
	case KindPDF:
		// arXiv sometimes labels PDFs as octet-stream
		return strings.Contains(contentType, "application/pdf") ||
			strings.Contains(contentType, "application/octet-stream")
	default:
		return strings.Contains(contentType, "text/html") ||
			strings.Contains(contentType, "application/xhtml")
	}
}

func requestHeaders(userAgent string, kind ContentKind) map[string]string {
	accept := "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	if kind == KindPDF {
		accept = "application/pdf,*/*;q=0.8"
	}
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          accept,
		"Accept-Language": "en-US,en;q=0.5",
	}
}
