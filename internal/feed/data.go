package feed

import "net/url"

// ListingEntry is one paper card on a daily listing page.
type ListingEntry struct {
	Title    string
	PaperURL url.URL
	ArxivID  string
}

// PaperPage holds what the pipeline needs from a paper page.
type PaperPage struct {
	// Abstract is plain text with whitespace collapsed.
	Abstract         string
	AbstractMarkdown string
	PDFURL           string
	ArxivURL         string
	PaperOfTheDay    bool
	Upvotes          int
}
