package sheet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes the publisher needs from its credentials.
var Scopes = []string{sheets.SpreadsheetsScope, drive.DriveFileScope}

// Publisher writes review tables to Google Sheets.
type Publisher struct {
	sheets       *sheets.Service
	drive        *drive.Service
	layout       Layout
	metadataSink metadata.MetadataSink
}

// NewPublisher builds the Sheets and Drive clients from opts, typically
// option.WithCredentialsFile.
func NewPublisher(
	ctx context.Context,
	metadataSink metadata.MetadataSink,
	layout Layout,
	opts ...option.ClientOption,
) (*Publisher, error) {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, newSheetError(ErrCauseClientInit, fmt.Errorf("sheets: %w", err))
	}
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, newSheetError(ErrCauseClientInit, fmt.Errorf("drive: %w", err))
	}
	return &Publisher{
		sheets:       sheetsService,
		drive:        driveService,
		layout:       layout,
		metadataSink: metadataSink,
	}, nil
}

// Publish creates a spreadsheet titled title, writes table into it and
// applies the layout. It returns the spreadsheet id.
func (p *Publisher) Publish(ctx context.Context, title string, table Table) (string, error) {
	if len(table.Header) == 0 {
		return "", p.fail("Publisher.Publish", "", &SheetError{
			Message: "table has no header",
			Cause:   ErrCauseEmptyTable,
		})
	}

	created, err := p.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return "", p.fail("Publisher.Publish", "", newSheetError(ErrCauseCreateFailure, err))
	}
	id := created.SpreadsheetId

	var sheetID int64
	if len(created.Sheets) > 0 && created.Sheets[0].Properties != nil {
		sheetID = created.Sheets[0].Properties.SheetId
	}

	_, err = p.sheets.Spreadsheets.Values.Update(id, SheetRange, &sheets.ValueRange{
		Values: table.values(),
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return id, p.fail("Publisher.Publish", id, newSheetError(ErrCauseWriteFailure, err))
	}

	if requests := formatRequests(sheetID, table, p.layout); len(requests) > 0 {
		_, err = p.sheets.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: requests,
		}).Context(ctx).Do()
		if err != nil {
			return id, p.fail("Publisher.Publish", id, newSheetError(ErrCauseFormatFailure, err))
		}
	}

	p.metadataSink.RecordArtifact(metadata.ArtifactSpreadsheet, FullURL(id), []metadata.Attribute{
		metadata.NewAttr(metadata.AttrMessage, title),
	})
	return id, nil
}

// Share makes the spreadsheet readable by anyone with the link.
func (p *Publisher) Share(ctx context.Context, id string) error {
	_, err := p.drive.Permissions.Create(id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return p.fail("Publisher.Share", id, newSheetError(ErrCauseShareFailure, err))
	}
	return nil
}

// ReadRows reads back the data rows of a spreadsheet, keyed by header.
func (p *Publisher) ReadRows(ctx context.Context, id string) ([]Row, error) {
	resp, err := p.sheets.Spreadsheets.Values.Get(id, SheetRange).Context(ctx).Do()
	if err != nil {
		return nil, p.fail("Publisher.ReadRows", id, newSheetError(ErrCauseReadFailure, err))
	}
	return rowsFromValues(resp.Values), nil
}

func rowsFromValues(values [][]any) []Row {
	if len(values) == 0 {
		return nil
	}
	header := make([]string, len(values[0]))
	for i, h := range values[0] {
		header[i] = strings.TrimSpace(fmt.Sprint(h))
	}

	rows := make([]Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(raw) && raw[i] != nil {
				row[name] = fmt.Sprint(raw[i])
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (p *Publisher) fail(action string, id string, err *SheetError) error {
	attrs := []metadata.Attribute{}
	if id != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrURL, FullURL(id)))
	}
	p.metadataSink.RecordError(
		time.Now(),
		"sheet",
		action,
		mapSheetErrorToMetadataCause(err),
		err.Error(),
		attrs,
	)
	return err
}

// FullURL is the browser address of a spreadsheet.
func FullURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id
}
