package ledger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/paper-review/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_AppendAndLookup(t *testing.T) {
	l := ledger.New(filepath.Join(t.TempDir(), ".data"))

	require.NoError(t, l.Append("2024-08-05", "sheet-a"))
	require.NoError(t, l.Append("2024-08-12", "sheet-b"))

	entry, ok, err := l.Lookup("2024-08-05")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sheet-a", entry.SpreadsheetID)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/sheet-a", entry.URL())

	content, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, "2024-08-05\tsheet-a\n2024-08-12\tsheet-b\n", string(content))
}

func TestLedger_LatestEntryWins(t *testing.T) {
	l := ledger.New(t.TempDir())
	require.NoError(t, l.Append("2024-08-05", "old"))
	require.NoError(t, l.Append("2024-08-05", "new"))

	entry, ok, err := l.Lookup("2024-08-05")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new", entry.SpreadsheetID)
}

func TestLedger_MissingFileIsEmpty(t *testing.T) {
	l := ledger.New(t.TempDir())

	entries, err := l.All()
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, ok, err := l.Lookup("2024-08-05")
	require.NoError(t, err)
	assert.False(t, ok)
	_, statErr := os.Stat(l.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestLedger_SkipsBlankAndShortLines(t *testing.T) {
	dir := t.TempDir()
	l := ledger.New(dir)
	require.NoError(t, os.WriteFile(l.Path(), []byte("2024-08-05\tsheet-a\n\nbroken\n2024-08-12\tsheet-b\n"), 0644))

	entries, err := l.All()

	require.NoError(t, err)
	assert.Equal(t, []ledger.Entry{
		{Week: "2024-08-05", SpreadsheetID: "sheet-a"},
		{Week: "2024-08-12", SpreadsheetID: "sheet-b"},
	}, entries)
}

func TestLedger_AppendRejectsEmptyFields(t *testing.T) {
	l := ledger.New(t.TempDir())

	assert.Error(t, l.Append("", "id"))
	assert.Error(t, l.Append("2024-08-05", ""))
}
