package digest

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/paper-review/internal/feed"
	"github.com/rohmanhakim/paper-review/internal/llm"
	"github.com/rohmanhakim/paper-review/internal/respcache"
	"github.com/rohmanhakim/paper-review/internal/review"
	"github.com/rohmanhakim/paper-review/internal/sheet"
	"github.com/rohmanhakim/paper-review/internal/storage"
	"github.com/rohmanhakim/paper-review/pkg/urlutil"
)

type Reviewer interface {
	Review(ctx context.Context, paper llm.PaperBrief) (string, error)
	Overview(ctx context.Context, week string, papers []llm.PaperBrief) (string, error)
}

// Compiler turns the curated rows of a review sheet into a digest.
type Compiler struct {
	reviewer   Reviewer
	paperPages *respcache.Cache[string]
	parser     *feed.Parser
	now        func() time.Time
}

// NewCompiler builds a compiler. paperPages may be nil, in which case
// abstracts are not recovered and the TL;DR stands in.
func NewCompiler(
	reviewer Reviewer,
	paperPages *respcache.Cache[string],
	parser *feed.Parser,
	now func() time.Time,
) *Compiler {
	if now == nil {
		now = time.Now
	}
	if parser == nil {
		parser = feed.NewParser(nil, nil)
	}
	return &Compiler{
		reviewer:   reviewer,
		paperPages: paperPages,
		parser:     parser,
		now:        now,
	}
}

// Picks keeps the rows a curator marked in the pick column, highest
// upvotes first.
func Picks(rows []sheet.Row) []sheet.Row {
	var picked []sheet.Row
	for _, row := range rows {
		if strings.TrimSpace(row[review.ColPick]) != "" {
			picked = append(picked, row)
		}
	}
	slices.SortStableFunc(picked, func(a, b sheet.Row) int {
		return cmp.Compare(upvotes(b), upvotes(a))
	})
	return picked
}

func (c *Compiler) Compile(ctx context.Context, week string, rows []sheet.Row) (Digest, error) {
	picked := Picks(rows)
	if len(picked) == 0 {
		return Digest{}, fmt.Errorf("week %s has no picked papers", week)
	}

	entries := make([]Entry, 0, len(picked))
	briefs := make([]llm.PaperBrief, 0, len(picked))
	for _, row := range picked {
		entry := c.entry(row)
		entries = append(entries, entry)
		briefs = append(briefs, brief(entry))
	}

	overview, err := c.reviewer.Overview(ctx, week, briefs)
	if err != nil && !respcache.IsPersistError(err) {
		return Digest{}, fmt.Errorf("overview: %w", err)
	}
	for i := range entries {
		text, err := c.reviewer.Review(ctx, briefs[i])
		if err != nil && !respcache.IsPersistError(err) {
			return Digest{}, fmt.Errorf("review %s: %w", entries[i].ArxivID, err)
		}
		entries[i].Review = text
	}

	return Digest{
		Frontmatter: Frontmatter{
			Title:       review.SpreadsheetTitle(week),
			Week:        week,
			GeneratedAt: c.now().UTC(),
			Papers:      len(entries),
		},
		Overview: overview,
		Entries:  entries,
	}, nil
}

// Document renders d for storage under the name digest-<week>.
func Document(d Digest) storage.Document {
	markdown, hash := RenderMarkdown(d)
	return storage.NewDocument("digest-"+d.Frontmatter.Week, markdown, RenderHTML(d), hash)
}

func (c *Compiler) entry(row sheet.Row) Entry {
	e := Entry{
		Title:        strings.TrimSpace(row[review.ColTitle]),
		TLDR:         strings.TrimSpace(row[review.ColTLDR]),
		Affiliations: strings.TrimSpace(row[review.ColAffiliations]),
		Notes:        strings.TrimSpace(row[review.ColNotes]),
		Upvotes:      upvotes(row),
		Date:         row[review.ColDate],
		ArxivURL:     row[review.ColArxiv],
		PaperURL:     row[review.ColURL],
		PDFURL:       row[review.ColArxivPDF],
	}
	e.ArxivID = arxivID(e)

	if page, ok := c.cachedPage(e); ok {
		e.Abstract = page.Abstract
		e.AbstractMarkdown = page.AbstractMarkdown
	}
	return e
}

// cachedPage recovers the abstract from the paper page fetched during
// the review run, without touching the network.
func (c *Compiler) cachedPage(e Entry) (feed.PaperPage, bool) {
	if c.paperPages == nil || e.ArxivID == "" {
		return feed.PaperPage{}, false
	}
	html, ok := c.paperPages.Get(e.ArxivID)
	if !ok {
		return feed.PaperPage{}, false
	}
	pageURL, _ := url.Parse(e.PaperURL)
	if pageURL == nil {
		pageURL = &url.URL{}
	}
	page, err := c.parser.ParsePaperPage(*pageURL, html)
	if err != nil {
		return feed.PaperPage{}, false
	}
	return page, true
}

func arxivID(e Entry) string {
	for _, raw := range []string{e.PaperURL, e.ArxivURL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err == nil {
			if id := urlutil.LastSegment(*u); id != "" {
				return id
			}
		}
	}
	return ""
}

func brief(e Entry) llm.PaperBrief {
	abstract := e.Abstract
	if abstract == "" {
		abstract = e.TLDR
	}
	return llm.PaperBrief{
		ArxivID:  e.ArxivID,
		Title:    e.Title,
		Abstract: abstract,
		TLDR:     e.TLDR,
	}
}

func upvotes(row sheet.Row) int {
	n, err := strconv.Atoi(strings.TrimSpace(row[review.ColUpvote]))
	if err != nil {
		return 0
	}
	return n
}
