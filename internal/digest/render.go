package digest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"
	"github.com/rohmanhakim/paper-review/pkg/hashutil"
)

// RenderMarkdown returns the digest as Markdown with a frontmatter block
// and the content hash of the body.
func RenderMarkdown(d Digest) ([]byte, string) {
	body := renderBody(d)
	hash := hashutil.ContentHash(body)

	fm := d.Frontmatter
	fm.ContentHash = hash

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %s\n", strconv.Quote(fm.Title))
	fmt.Fprintf(&b, "week: %s\n", fm.Week)
	fmt.Fprintf(&b, "generated_at: %s\n", fm.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "papers: %d\n", fm.Papers)
	fmt.Fprintf(&b, "content_hash: %s\n", fm.ContentHash)
	b.WriteString("---\n\n")
	b.Write(body)

	return []byte(b.String()), hash
}

// RenderHTML renders the digest body as a standalone HTML page.
func RenderHTML(d Digest) []byte {
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions | mdparser.AutoHeadingIDs)
	doc := p.Parse(renderBody(d))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank | mdhtml.CompletePage,
		Title: d.Frontmatter.Title,
	})
	return markdown.Render(doc, renderer)
}

func renderBody(d Digest) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Frontmatter.Title)
	if overview := strings.TrimSpace(d.Overview); overview != "" {
		b.WriteString(overview)
		b.WriteString("\n\n")
	}

	for i, e := range d.Entries {
		title := e.Title
		if e.PDFURL != "" {
			title = fmt.Sprintf("[%s](%s)", e.Title, e.PDFURL)
		}
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, title)

		facts := []string{fmt.Sprintf("**Upvotes:** %d", e.Upvotes)}
		if e.Affiliations != "" {
			facts = append(facts, "**Affiliations:** "+e.Affiliations)
		}
		if e.ArxivURL != "" {
			facts = append(facts, fmt.Sprintf("[arXiv](%s)", e.ArxivURL))
		}
		if e.PaperURL != "" {
			facts = append(facts, fmt.Sprintf("[Hugging Face](%s)", e.PaperURL))
		}
		b.WriteString(strings.Join(facts, " | "))
		b.WriteString("\n\n")

		if e.TLDR != "" {
			fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(e.TLDR, "\n", " "))
		}
		if e.Notes != "" {
			fmt.Fprintf(&b, "**Notes:** %s\n\n", e.Notes)
		}
		if review := strings.TrimSpace(e.Review); review != "" {
			b.WriteString(review)
			b.WriteString("\n\n")
		}
		if e.AbstractMarkdown != "" {
			fmt.Fprintf(&b, "### Abstract\n\n%s\n\n", strings.TrimSpace(e.AbstractMarkdown))
		}
	}
	return []byte(strings.TrimRight(b.String(), "\n") + "\n")
}
