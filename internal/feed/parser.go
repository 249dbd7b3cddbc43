package feed

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/paper-review/internal/mdconvert"
	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/pkg/failure"
	"github.com/rohmanhakim/paper-review/pkg/urlutil"
)

/*
Responsibilities
- Parse a daily listing page into paper entries
- Parse a paper page into abstract, links and upvotes

Parsing never touches the network; callers hand in cached or freshly
fetched HTML.
*/

type Parser struct {
	metadataSink metadata.MetadataSink
	converter    mdconvert.Converter
}

func NewParser(
	metadataSink metadata.MetadataSink,
	converter mdconvert.Converter,
) *Parser {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if converter == nil {
		converter = mdconvert.NewFragmentConverter(metadataSink)
	}
	return &Parser{
		metadataSink: metadataSink,
		converter:    converter,
	}
}

// ListingURL returns the listing page address for an ISO date.
func ListingURL(feedURL url.URL, date string) url.URL {
	u := feedURL
	q := u.Query()
	q.Set("date", date)
	u.RawQuery = q.Encode()
	return u
}

// ParseListing returns the paper cards of a listing page in page order.
// Relative paper links are resolved against pageURL.
func (p *Parser) ParseListing(pageURL url.URL, html string) ([]ListingEntry, failure.ClassifiedError) {
	entries, err := parseListing(pageURL, html)
	if err != nil {
		p.record("Parser.ParseListing", err, pageURL.String())
		return nil, err
	}
	return entries, nil
}

// ParsePaperPage extracts the abstract, links and upvote count. The PDF
// and arXiv links are required; the paper-of-the-day badge is optional.
func (p *Parser) ParsePaperPage(pageURL url.URL, html string) (PaperPage, failure.ClassifiedError) {
	page, err := p.parsePaperPage(html)
	if err != nil {
		p.record("Parser.ParsePaperPage", err, pageURL.String())
		return PaperPage{}, err
	}
	return page, nil
}

func (p *Parser) record(action string, err *ExtractionError, pageURL string) {
	p.metadataSink.RecordError(
		time.Now(),
		"feed",
		action,
		mapExtractionErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, pageURL),
		},
	)
}

func parseListing(pageURL url.URL, html string) ([]ListingEntry, *ExtractionError) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ExtractionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}

	var entries []ListingEntry
	var entryErr *ExtractionError
	doc.Find(listingCardSelector).EachWithBreak(func(i int, card *goquery.Selection) bool {
		anchor := card.Find(cardTitleSelector).First()
		href, ok := anchor.Attr("href")
		if anchor.Length() == 0 || !ok || strings.TrimSpace(href) == "" {
			entryErr = &ExtractionError{
				Message:   fmt.Sprintf("card %d has no title link", i),
				Retryable: false,
				Cause:     ErrCauseBadEntry,
			}
			return false
		}

		paperURL, err := urlutil.Resolve(pageURL, href)
		if err != nil {
			entryErr = &ExtractionError{
				Message:   fmt.Sprintf("card %d: %v", i, err),
				Retryable: false,
				Cause:     ErrCauseBadEntry,
			}
			return false
		}

		entries = append(entries, ListingEntry{
			Title:    strings.TrimSpace(anchor.Text()),
			PaperURL: paperURL,
			ArxivID:  urlutil.LastSegment(paperURL),
		})
		return true
	})
	if entryErr != nil {
		return nil, entryErr
	}
	return entries, nil
}

func (p *Parser) parsePaperPage(html string) (PaperPage, *ExtractionError) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return PaperPage{}, &ExtractionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}

	abstract, abstractHTML, extractErr := extractAbstract(doc)
	if extractErr != nil {
		return PaperPage{}, extractErr
	}

	pdfURL, found := hrefWithText(doc, linkTextPDF)
	if !found {
		return PaperPage{}, &ExtractionError{
			Message:   fmt.Sprintf("no %q link", linkTextPDF),
			Retryable: false,
			Cause:     ErrCauseLinkNotFound,
		}
	}
	arxivURL, found := hrefWithText(doc, linkTextArxiv)
	if !found {
		return PaperPage{}, &ExtractionError{
			Message:   fmt.Sprintf("no %q link", linkTextArxiv),
			Retryable: false,
			Cause:     ErrCauseLinkNotFound,
		}
	}
	_, paperOfTheDay := hrefWithText(doc, linkTextPaperOfTheDay)

	markdown := abstract
	if converted, convErr := p.converter.Convert(abstractHTML); convErr == nil {
		markdown = converted.Markdown()
	}

	return PaperPage{
		Abstract:         abstract,
		AbstractMarkdown: markdown,
		PDFURL:           pdfURL,
		ArxivURL:         arxivURL,
		PaperOfTheDay:    paperOfTheDay,
		Upvotes:          extractUpvotes(doc),
	}, nil
}

// extractAbstract finds the first <p> sibling following the "Abstract"
// heading and returns its text and inner HTML.
func extractAbstract(doc *goquery.Document) (string, string, *ExtractionError) {
	var paragraph *goquery.Selection
	doc.Find("h2").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		if strings.TrimSpace(heading.Text()) != abstractHeading {
			return true
		}
		next := heading.NextAllFiltered("p").First()
		if next.Length() > 0 {
			paragraph = next
		}
		return false
	})
	if paragraph == nil {
		return "", "", &ExtractionError{
			Message:   "no paragraph after the Abstract heading",
			Retryable: false,
			Cause:     ErrCauseAbstractNotFound,
		}
	}

	inner, err := paragraph.Html()
	if err != nil {
		return "", "", &ExtractionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseAbstractNotFound,
		}
	}
	return mdconvert.CollapseWhitespace(paragraph.Text()), "<p>" + inner + "</p>", nil
}

// hrefWithText returns the href of the first anchor whose text contains text.
func hrefWithText(doc *goquery.Document, text string) (string, bool) {
	var href string
	var found bool
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !strings.Contains(a.Text(), text) {
			return true
		}
		href, found = a.Attr("href")
		return !found
	})
	return href, found
}

func extractUpvotes(doc *goquery.Document) int {
	node := doc.Find(upvoteSelector).First()
	if node.Length() == 0 {
		return 0
	}
	count, err := strconv.Atoi(strings.TrimSpace(node.Text()))
	if err != nil {
		return 0
	}
	return count
}
