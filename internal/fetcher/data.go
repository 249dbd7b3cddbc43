package fetcher

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// HTTP boundary

// ContentKind is the kind of document a caller expects back.
type ContentKind int

const (
	KindHTML ContentKind = iota
	KindPDF
)

func (k ContentKind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	default:
		return "html"
	}
}

type FetchParam struct {
	fetchUrl  url.URL
	userAgent string
	kind      ContentKind
}

func NewFetchParam(fetchUrl url.URL, userAgent string, kind ContentKind) FetchParam {
	return FetchParam{
		fetchUrl:  fetchUrl,
		userAgent: userAgent,
		kind:      kind,
	}
}

func (p FetchParam) URL() url.URL {
	return p.fetchUrl
}

func (p FetchParam) Kind() ContentKind {
	return p.kind
}

type FetchResult struct {
	url  url.URL
	body []byte
	meta ResponseMeta
}

func (f *FetchResult) URL() url.URL {
	return f.url
}

func (f *FetchResult) Body() []byte {
	return f.body
}

// Text returns the body as UTF-8 text; invalid sequences are replaced
// with U+FFFD.
func (f *FetchResult) Text() string {
	if utf8.Valid(f.body) {
		return string(f.body)
	}
	return strings.ToValidUTF8(string(f.body), "�")
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) ContentType() string {
	return f.meta.contentType
}

func (f *FetchResult) SizeByte() uint64 {
	return f.meta.transferredSizeByte
}

func (f *FetchResult) Attempts() int {
	return f.meta.attempts
}

type ResponseMeta struct {
	statusCode          int
	contentType         string
	transferredSizeByte uint64
	attempts            int
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	url url.URL,
	body []byte,
	statusCode int,
	contentType string,
) FetchResult {
	return FetchResult{
		url:  url,
		body: body,
		meta: ResponseMeta{
			statusCode:          statusCode,
			contentType:         contentType,
			transferredSizeByte: uint64(len(body)),
			attempts:            1,
		},
	}
}
