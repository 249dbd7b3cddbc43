package llm

import (
	"context"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/rohmanhakim/paper-review/internal/fetcher"
	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/internal/respcache"
	"github.com/rohmanhakim/paper-review/pkg/retry"
)

const (
	affiliationSystemPrompt = "You are an AI assistant that extracts author affiliations from academic papers."
	affiliationUserPrompt   = "Extract the author affiliations from this arXiv paper text. Return only a json list of unique institutions.The text is from the first two pages of the paper:\n\n"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AffiliationExtractor asks the model for the institutions behind a paper.
// The raw model answer is cached; FormatAffiliations turns it into a cell.
type AffiliationExtractor struct {
	provider     Provider
	fetcher      fetcher.Fetcher
	cache        *respcache.Cache[string]
	retryParam   retry.RetryParam
	userAgent    string
	metadataSink metadata.MetadataSink
}

func NewAffiliationExtractor(
	provider Provider,
	pdfFetcher fetcher.Fetcher,
	cache *respcache.Cache[string],
	retryParam retry.RetryParam,
	userAgent string,
	metadataSink metadata.MetadataSink,
) *AffiliationExtractor {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &AffiliationExtractor{
		provider:     provider,
		fetcher:      pdfFetcher,
		cache:        cache,
		retryParam:   retryParam,
		userAgent:    userAgent,
		metadataSink: metadataSink,
	}
}

func (a *AffiliationExtractor) Affiliations(ctx context.Context, arxivID string, pdfURL string) (string, error) {
	return respcache.FetchOrCompute(ctx, a.cache, arxivID, func(ctx context.Context) (string, error) {
		text, err := a.paperText(ctx, pdfURL)
		if err != nil {
			return "", err
		}
		return complete(ctx, a.provider, affiliationPrompt(text), a.metadataSink, "AffiliationExtractor.Affiliations", arxivID)
	})
}

func (a *AffiliationExtractor) paperText(ctx context.Context, pdfURL string) (string, error) {
	u, err := url.Parse(pdfURL)
	if err != nil {
		return "", &fetcher.FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     fetcher.ErrCauseInvalidURL,
		}
	}

	result, fetchErr := a.fetcher.Fetch(ctx, fetcher.NewFetchParam(*u, a.userAgent, fetcher.KindPDF), a.retryParam)
	if fetchErr != nil {
		return "", fetchErr
	}

	return ExtractPDFText(result.Body(), PDFTextLimit)
}

func affiliationPrompt(paperText string) Prompt {
	return Prompt{
		System: affiliationSystemPrompt,
		User:   affiliationUserPrompt + paperText,
	}
}

// FormatAffiliations turns a raw model answer such as
// "```json\n[\"MIT\", \"Google\"]\n```" into "MIT; Google".
func FormatAffiliations(raw string) (string, error) {
	cleaned := CleanAffiliations(raw)

	var institutions []string
	if err := json.Unmarshal([]byte(cleaned), &institutions); err != nil {
		return "", &LLMError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseMalformedAffiliations,
		}
	}

	kept := make([]string, 0, len(institutions))
	for _, inst := range institutions {
		if inst = strings.TrimSpace(inst); inst != "" {
			kept = append(kept, inst)
		}
	}
	return strings.Join(kept, "; "), nil
}

// CleanAffiliations strips code fences and the json language tag.
func CleanAffiliations(raw string) string {
	cleaned := strings.Trim(strings.TrimSpace(raw), "`")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "json")
	return strings.TrimSpace(cleaned)
}
