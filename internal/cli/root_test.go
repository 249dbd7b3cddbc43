package cmd_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	cmd "github.com/rohmanhakim/paper-review/internal/cli"
	"github.com/rohmanhakim/paper-review/internal/config"
	"github.com/rohmanhakim/paper-review/internal/ledger"
	"github.com/rohmanhakim/paper-review/internal/llm"
	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/internal/respcache"
	"github.com/rohmanhakim/paper-review/internal/review"
	"github.com/rohmanhakim/paper-review/internal/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitConfigNoFlags tests that InitConfigWithError returns the defaults when no flag is set
func TestInitConfigNoFlags(t *testing.T) {
	cmd.ResetFlags()

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)

	defaultCfg, err := config.WithDefault().Build()
	require.NoError(t, err)
	assert.Equal(t, defaultCfg.CacheDir(), cfg.CacheDir())
	assert.Equal(t, defaultCfg.OutputDir(), cfg.OutputDir())
	assert.Equal(t, defaultCfg.LLMProvider(), cfg.LLMProvider())
	assert.Equal(t, defaultCfg.Timeout(), cfg.Timeout())
	assert.Equal(t, defaultCfg.Share(), cfg.Share())
	assert.False(t, cfg.DryRun())
	assert.False(t, cfg.StatsEnabled())
}

func TestInitConfigWithFlags(t *testing.T) {
	cmd.ResetFlags()
	t.Cleanup(cmd.ResetFlags)

	cmd.SetCacheDirForTest("/tmp/papers-cache")
	cmd.SetDryRunForTest(true)
	cmd.SetLLMProviderForTest("Gemini")
	cmd.SetTimeoutForTest(3 * time.Second)
	cmd.SetWithStatsForTest(true)
	cmd.SetNoShareForTest(true)

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/papers-cache", cfg.CacheDir())
	assert.True(t, cfg.DryRun())
	assert.Equal(t, "gemini", cfg.LLMProvider())
	assert.Equal(t, 3*time.Second, cfg.Timeout())
	assert.True(t, cfg.StatsEnabled())
	assert.False(t, cfg.Share())
}

func TestInitConfigWithNonExistentFile(t *testing.T) {
	cmd.ResetFlags()
	t.Cleanup(cmd.ResetFlags)
	cmd.SetConfigFileForTest(filepath.Join(t.TempDir(), "nope.json"))

	_, err := cmd.InitConfigWithError()
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrFileDoesNotExist))
}

func TestInitConfigFileWinsOverFlags(t *testing.T) {
	cmd.ResetFlags()
	t.Cleanup(cmd.ResetFlags)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cacheDir": "from-file"}`), 0644))
	cmd.SetConfigFileForTest(path)
	cmd.SetCacheDirForTest("from-flag")

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.CacheDir())
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	err := cmd.ExecuteArgs(context.Background(), []string{"version"}, &out, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "paper-review ")
	assert.Contains(t, out.String(), "+")
}

func TestCacheStatsCommand(t *testing.T) {
	dir := t.TempDir()
	feedPages, err := respcache.Open(filepath.Join(dir, respcache.FeedPagesFile), respcache.Raw(), nil)
	require.NoError(t, err)
	require.NoError(t, feedPages.Put("2024-08-05", "<html></html>"))
	require.NoError(t, feedPages.Put("2024-08-06", "<html></html>"))

	var out bytes.Buffer
	err = cmd.ExecuteArgs(context.Background(), []string{"cache", "stats", "--cache-dir", dir}, &out, &bytes.Buffer{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 8)
	assert.Contains(t, lines[0], "CACHE")
	assert.Regexp(t, `^hf_cache\s+2\s+`, lines[1])
	assert.Regexp(t, `^emergent_cache\s+0\s+`, lines[7])
}

func TestReviewAndDigestCommands(t *testing.T) {
	server := newFeedServer(t)
	workdir := t.TempDir()
	t.Chdir(workdir)

	// Affiliations are served from the cache, so no PDF is downloaded.
	affiliations, err := respcache.Open(filepath.Join(".cache", respcache.AffiliationsFile), respcache.Raw(), nil)
	require.NoError(t, err)
	require.NoError(t, affiliations.Put("2408.00001", "```json\n[\"MIT\", \"Stanford\"]\n```"))

	configPath := filepath.Join(workdir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(`{
		"feedUrl": %q,
		"baseDelay": 1,
		"jitter": 1,
		"maxAttempt": 1,
		"metricsFile": "run.prom"
	}`, server.URL+"/papers")), 0644))

	provider := &stubProvider{answer: "A short answer."}
	restoreProvider := cmd.SetProviderFactoryForTest(func(context.Context, config.Config, config.Secrets) (llm.Provider, error) {
		return provider, nil
	})
	defer restoreProvider()
	publisher := &fakePublisher{id: "sheet-123"}
	restorePublisher := cmd.SetPublisherFactoryForTest(func(context.Context, config.Config, config.Secrets, metadata.MetadataSink) (cmd.SpreadsheetPublisher, error) {
		return publisher, nil
	})
	defer restorePublisher()

	var out bytes.Buffer
	err = cmd.ExecuteArgs(context.Background(),
		[]string{"review", "--config-file", configPath, "--today", "2024-08-14"},
		&out, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "1 papers published to "+sheet.FullURL("sheet-123"))
	assert.Equal(t, "Paper Review: 2024-08-05", publisher.title)
	assert.Equal(t, []string{"sheet-123"}, publisher.shared)
	require.Len(t, publisher.table.Rows, 1)
	assert.Equal(t, "MIT; Stanford", publisher.table.Rows[0][publisher.table.ColumnIndex(review.ColAffiliations)])

	entry, found, err := ledger.New(".data").Lookup("2024-08-05")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "sheet-123", entry.SpreadsheetID)

	_, err = os.Stat("run.prom")
	assert.NoError(t, err, "metrics textfile should be written")
	_, err = os.Stat(".gitignore")
	assert.NoError(t, err, "workspace init should add .gitignore")

	// The curator picks the paper; digest finds the sheet through the ledger.
	publisher.pickFirst = true
	out.Reset()
	err = cmd.ExecuteArgs(context.Background(),
		[]string{"digest", "--config-file", configPath, "--week", "2024-08-05"},
		&out, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "1 picks written to ")

	markdown, err := os.ReadFile(filepath.Join("output", "digest-2024-08-05.md"))
	require.NoError(t, err)
	assert.Contains(t, string(markdown), "Paper One")
	assert.Contains(t, string(markdown), "Abstract of Paper One.")
	_, err = os.Stat(filepath.Join("output", "digest-2024-08-05.html"))
	assert.NoError(t, err)
}

func TestReviewCommand_DryRunSkipsPublishing(t *testing.T) {
	server := newFeedServer(t)
	workdir := t.TempDir()
	t.Chdir(workdir)

	affiliations, err := respcache.Open(filepath.Join(".cache", respcache.AffiliationsFile), respcache.Raw(), nil)
	require.NoError(t, err)
	require.NoError(t, affiliations.Put("2408.00001", `["MIT"]`))

	configPath := filepath.Join(workdir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(
		`{"feedUrl": %q, "baseDelay": 1, "jitter": 1, "maxAttempt": 1, "dryRun": true}`,
		server.URL+"/papers",
	)), 0644))

	restoreProvider := cmd.SetProviderFactoryForTest(func(context.Context, config.Config, config.Secrets) (llm.Provider, error) {
		return &stubProvider{answer: "tldr"}, nil
	})
	defer restoreProvider()
	restorePublisher := cmd.SetPublisherFactoryForTest(func(context.Context, config.Config, config.Secrets, metadata.MetadataSink) (cmd.SpreadsheetPublisher, error) {
		t.Fatal("publisher must not be built in dry run")
		return nil, nil
	})
	defer restorePublisher()

	var out bytes.Buffer
	err = cmd.ExecuteArgs(context.Background(),
		[]string{"review", "--config-file", configPath, "--today", "2024-08-14"},
		&out, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "dry run: 1 papers for week 2024-08-05")

	_, found, err := ledger.New(".data").Lookup("2024-08-05")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReviewCommand_InvalidToday(t *testing.T) {
	err := cmd.ExecuteArgs(context.Background(),
		[]string{"review", "--today", "14/08/2024"},
		&bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestDigestCommand_WeekNotInLedger(t *testing.T) {
	t.Chdir(t.TempDir())

	err := cmd.ExecuteArgs(context.Background(),
		[]string{"digest", "--week", "2024-08-05"},
		&bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no spreadsheet recorded for week 2024-08-05")
}

// newFeedServer serves one paper on the first weekday of the week of
// 2024-08-05 and empty listings on the other days.
func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case "/papers":
			if r.URL.Query().Get("date") == "2024-08-05" {
				fmt.Fprint(w, `<html><body><article><div class="from-gray-50-to-white">`+
					`<h3><a href="/papers/2408.00001">Paper One</a></h3></div></article></body></html>`)
				return
			}
			fmt.Fprint(w, `<html><body><main></main></body></html>`)
		case "/papers/2408.00001":
			fmt.Fprint(w, `<html><body><main><h1>Paper One</h1>
<a href="https://arxiv.org/abs/2408.00001">View arXiv page</a>
<a href="https://arxiv.org/pdf/2408.00001">View PDF</a>
<div class="font-semibold text-orange-500">42</div>
<div><h2>Abstract</h2><p>Abstract of Paper One.</p></div>
</main></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

type stubProvider struct {
	answer string
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-1" }

func (s *stubProvider) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	return s.answer, nil
}

// fakePublisher keeps the published table and serves it back as rows.
type fakePublisher struct {
	mu        sync.Mutex
	id        string
	title     string
	table     sheet.Table
	shared    []string
	pickFirst bool
}

func (f *fakePublisher) Publish(ctx context.Context, title string, table sheet.Table) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = title
	f.table = table
	return f.id, nil
}

func (f *fakePublisher) Share(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shared = append(f.shared, id)
	return nil
}

func (f *fakePublisher) ReadRows(ctx context.Context, id string) ([]sheet.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.id {
		return nil, fmt.Errorf("unknown spreadsheet %s", id)
	}
	rows := make([]sheet.Row, 0, len(f.table.Rows))
	for i, values := range f.table.Rows {
		row := sheet.Row{}
		for j, column := range f.table.Header {
			row[column] = fmt.Sprint(values[j])
		}
		if f.pickFirst && i == 0 {
			row[review.ColPick] = "x"
		}
		rows = append(rows, row)
	}
	return rows, nil
}
