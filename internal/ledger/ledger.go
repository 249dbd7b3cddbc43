package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rohmanhakim/paper-review/internal/sheet"
	"github.com/rohmanhakim/paper-review/pkg/fileutil"
)

// FileName is the ledger file inside the data directory.
const FileName = "spreadsheets.tsv"

// Entry ties a review week to the spreadsheet created for it.
type Entry struct {
	Week          string
	SpreadsheetID string
}

func (e Entry) URL() string {
	return sheet.FullURL(e.SpreadsheetID)
}

// Ledger is an append-only TSV of week and spreadsheet id pairs. A week
// published twice keeps its latest spreadsheet.
type Ledger struct {
	path string
}

func New(dataDir string) *Ledger {
	return &Ledger{path: filepath.Join(dataDir, FileName)}
}

func (l *Ledger) Path() string {
	return l.path
}

func (l *Ledger) Append(week string, spreadsheetID string) error {
	if week == "" || spreadsheetID == "" {
		return fmt.Errorf("ledger entry needs a week and a spreadsheet id")
	}
	if err := fileutil.EnsureDir(filepath.Dir(l.path)); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	if err := w.Write([]string{week, spreadsheetID}); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// All returns every entry in file order. A missing ledger is empty.
func (l *Ledger) All() ([]Entry, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var entries []Entry
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ledger: %w", err)
		}
		if len(record) < 2 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		entries = append(entries, Entry{
			Week:          strings.TrimSpace(record[0]),
			SpreadsheetID: strings.TrimSpace(record[1]),
		})
	}
	return entries, nil
}

// Lookup returns the latest spreadsheet recorded for week.
func (l *Ledger) Lookup(week string) (Entry, bool, error) {
	entries, err := l.All()
	if err != nil {
		return Entry{}, false, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Week == week {
			return entries[i], true, nil
		}
	}
	return Entry{}, false, nil
}
