package review

import (
	"github.com/rohmanhakim/paper-review/internal/stats"
)

// Column names of the review spreadsheet, in sheet order. Stats columns
// are inserted after ColPaperOfTheDay when collected.
const (
	ColNotes         = "notes"
	ColPick          = "pick"
	ColTitle         = "title"
	ColTLDR          = "tldr"
	ColAffiliations  = "affiliations"
	ColUpvote        = "upvote"
	ColPaperOfTheDay = "paperOfTheDay"
	ColDate          = "date"
	ColArxiv         = "arXiv"
	ColURL           = "url"
	ColArxivPDF      = "arXivPdf"
)

// Paper is one row of the weekly review.
type Paper struct {
	Notes        string
	Pick         string
	Title        string
	TLDR         string
	Affiliations string
	Upvotes      int
	// PaperOfTheDay holds the listing date when the paper carried the
	// badge, empty otherwise.
	PaperOfTheDay string
	Stats         *stats.SocialStats

	// Abstract goes into cell notes, not into a column.
	Abstract         string
	AbstractMarkdown string

	Date     string
	ArxivID  string
	ArxivURL string
	URL      string
	PDFURL   string
}

// Execution is the outcome of one pipeline run.
type Execution struct {
	Week   string
	Days   []string
	Papers []Paper
}
