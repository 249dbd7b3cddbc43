package review

import (
	"github.com/rohmanhakim/paper-review/internal/sheet"
	"github.com/rohmanhakim/paper-review/internal/stats"
)

// Columns returns the header of the review sheet.
func Columns(withStats bool) []string {
	cols := []string{ColNotes, ColPick, ColTitle, ColTLDR, ColAffiliations, ColUpvote, ColPaperOfTheDay}
	if withStats {
		cols = append(cols, stats.Columns()...)
	}
	return append(cols, ColDate, ColArxiv, ColURL, ColArxivPDF)
}

// BuildTable lays papers out as sheet rows. Titles link to the PDF and
// abstracts become notes.
func BuildTable(papers []Paper, withStats bool) sheet.Table {
	table := sheet.Table{
		Header: Columns(withStats),
		Rows:   make([][]any, 0, len(papers)),
		Links:  make([]string, 0, len(papers)),
		Notes:  make([]string, 0, len(papers)),
	}
	for _, p := range papers {
		row := []any{p.Notes, p.Pick, p.Title, p.TLDR, p.Affiliations, p.Upvotes, p.PaperOfTheDay}
		if withStats {
			values := stats.SocialStats{
				TwitterLikes:     stats.Missing,
				RedditPoints:     stats.Missing,
				HackerNewsPoints: stats.Missing,
				GithubRepos:      stats.Missing,
				GithubStars:      stats.Missing,
			}
			if p.Stats != nil {
				values = *p.Stats
			}
			for _, v := range values.Values() {
				row = append(row, v)
			}
		}
		row = append(row, p.Date, p.ArxivURL, p.URL, p.PDFURL)

		table.Rows = append(table.Rows, row)
		table.Links = append(table.Links, p.PDFURL)
		table.Notes = append(table.Notes, p.Abstract)
	}
	return table
}
