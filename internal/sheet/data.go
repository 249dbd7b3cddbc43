package sheet

import "fmt"

// SheetRange addresses the first sheet of a freshly created spreadsheet.
const SheetRange = "Sheet1"

// Table is what gets written into a new spreadsheet. Rows follow Header.
type Table struct {
	Header []string
	Rows   [][]any
	// Links holds, per row, the target of the hyperlink put on the
	// layout's link column. Empty entries are left as plain text.
	Links []string
	// Notes holds, per row, the cell note put on the layout's note column.
	Notes []string
}

// ColumnIndex returns the position of name in the header, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

func (t Table) cell(row int, col int) string {
	if row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) || t.Rows[row][col] == nil {
		return ""
	}
	return fmt.Sprint(t.Rows[row][col])
}

// values returns header and rows in the shape of the values API.
func (t Table) values() [][]any {
	out := make([][]any, 0, len(t.Rows)+1)
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	out = append(out, header)
	for _, row := range t.Rows {
		r := make([]any, len(row))
		for i, v := range row {
			if v == nil {
				v = ""
			}
			r[i] = v
		}
		out = append(out, r)
	}
	return out
}

type ColumnWidth struct {
	Column string
	Pixels int64
}

// Layout describes the formatting applied after the values are written.
type Layout struct {
	LinkColumn   string
	NoteColumn   string
	WrapColumns  []string
	WrapStrategy string
	Widths       []ColumnWidth
}

// DefaultLayout links titles, notes abstracts on the tldr column and
// widens the free-text columns.
func DefaultLayout() Layout {
	return Layout{
		LinkColumn:   "title",
		NoteColumn:   "tldr",
		WrapColumns:  []string{"notes", "title", "tldr", "affiliations"},
		WrapStrategy: "WRAP",
		Widths: []ColumnWidth{
			{Column: "notes", Pixels: 400},
			{Column: "title", Pixels: 200},
			{Column: "tldr", Pixels: 500},
			{Column: "affiliations", Pixels: 200},
		},
	}
}

// Row is one data row read back from a spreadsheet, keyed by header.
type Row map[string]string
