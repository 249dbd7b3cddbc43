package digest

import (
	"time"
)

// Frontmatter heads every digest Markdown file.
type Frontmatter struct {
	Title       string
	Week        string
	GeneratedAt time.Time
	Papers      int
	// ContentHash is the blake3 digest of the body below the frontmatter.
	ContentHash string
}

// Entry is one picked paper in the digest.
type Entry struct {
	ArxivID          string
	Title            string
	TLDR             string
	Affiliations     string
	Notes            string
	Upvotes          int
	Abstract         string
	AbstractMarkdown string
	Review           string
	Date             string
	ArxivURL         string
	PaperURL         string
	PDFURL           string
}

// Digest is the compiled week before rendering to files.
type Digest struct {
	Frontmatter Frontmatter
	Overview    string
	Entries     []Entry
}
