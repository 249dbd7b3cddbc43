package sheet

import (
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"
)

// formatRequests builds the batch update that applies layout to a sheet
// holding table. Columns missing from the table are skipped.
func formatRequests(sheetID int64, table Table, layout Layout) []*sheets.Request {
	var requests []*sheets.Request

	if col := table.ColumnIndex(layout.LinkColumn); col >= 0 && len(table.Links) > 0 {
		requests = append(requests, hyperlinkRequest(sheetID, table, col))
	}
	if col := table.ColumnIndex(layout.NoteColumn); col >= 0 && len(table.Notes) > 0 {
		requests = append(requests, notesRequest(sheetID, table.Notes, col))
	}
	for _, name := range layout.WrapColumns {
		if col := table.ColumnIndex(name); col >= 0 {
			requests = append(requests, wrapRequest(sheetID, col, layout.WrapStrategy))
		}
	}
	for _, width := range layout.Widths {
		if col := table.ColumnIndex(width.Column); col >= 0 {
			requests = append(requests, widthRequest(sheetID, col, width.Pixels))
		}
	}
	return requests
}

func hyperlinkRequest(sheetID int64, table Table, col int) *sheets.Request {
	rows := make([]*sheets.RowData, len(table.Rows))
	for i := range table.Rows {
		text := table.cell(i, col)
		cell := &sheets.CellData{}
		if i < len(table.Links) && table.Links[i] != "" {
			formula := HyperlinkFormula(table.Links[i], text)
			cell.UserEnteredValue = &sheets.ExtendedValue{FormulaValue: &formula}
		} else {
			cell.UserEnteredValue = &sheets.ExtendedValue{StringValue: &text}
		}
		rows[i] = &sheets.RowData{Values: []*sheets.CellData{cell}}
	}
	return &sheets.Request{
		UpdateCells: &sheets.UpdateCellsRequest{
			Range:  columnRange(sheetID, col, 1, int64(len(table.Rows))+1),
			Rows:   rows,
			Fields: "userEnteredValue",
		},
	}
}

func notesRequest(sheetID int64, notes []string, col int) *sheets.Request {
	rows := make([]*sheets.RowData, len(notes))
	for i, note := range notes {
		rows[i] = &sheets.RowData{Values: []*sheets.CellData{{Note: note}}}
	}
	return &sheets.Request{
		UpdateCells: &sheets.UpdateCellsRequest{
			Range:  columnRange(sheetID, col, 1, int64(len(notes))+1),
			Rows:   rows,
			Fields: "note",
		},
	}
}

func wrapRequest(sheetID int64, col int, strategy string) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: columnRange(sheetID, col, 0, 0),
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{WrapStrategy: strategy},
			},
			Fields: "userEnteredFormat.wrapStrategy",
		},
	}
}

func widthRequest(sheetID int64, col int, pixels int64) *sheets.Request {
	return &sheets.Request{
		UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
			Range: &sheets.DimensionRange{
				SheetId:         sheetID,
				Dimension:       "COLUMNS",
				StartIndex:      int64(col),
				EndIndex:        int64(col) + 1,
				ForceSendFields: []string{"SheetId", "StartIndex"},
			},
			Properties: &sheets.DimensionProperties{PixelSize: pixels},
			Fields:     "pixelSize",
		},
	}
}

// columnRange spans one column. endRow 0 leaves the rows unbounded.
func columnRange(sheetID int64, col int, startRow int64, endRow int64) *sheets.GridRange {
	r := &sheets.GridRange{
		SheetId:          sheetID,
		StartColumnIndex: int64(col),
		EndColumnIndex:   int64(col) + 1,
		StartRowIndex:    startRow,
		EndRowIndex:      endRow,
		ForceSendFields:  []string{"SheetId", "StartColumnIndex"},
	}
	return r
}

// HyperlinkFormula returns a HYPERLINK formula showing text and pointing
// at target.
func HyperlinkFormula(target string, text string) string {
	return fmt.Sprintf(`=HYPERLINK("%s", "%s")`, quoteFormula(target), quoteFormula(text))
}

func quoteFormula(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}
