package cmd

import (
	"fmt"

	"github.com/rohmanhakim/paper-review/internal/digest"
	"github.com/rohmanhakim/paper-review/internal/feed"
	"github.com/rohmanhakim/paper-review/internal/ledger"
	"github.com/rohmanhakim/paper-review/internal/llm"
	"github.com/rohmanhakim/paper-review/internal/review"
	"github.com/rohmanhakim/paper-review/internal/storage"
	"github.com/spf13/cobra"
)

var (
	week          string
	spreadsheetID string
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Turn the picked papers of a week into a Markdown digest.",
	Long: `digest reads the review spreadsheet of a week, keeps the rows a curator
marked in the pick column and writes digest-<week>.md and .html to the
output directory, with an LLM overview of the week and a short review of
every pick.

The spreadsheet is looked up in the ledger written by the review command
unless --spreadsheet-id is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		monday := week
		if monday == "" {
			now, err := parseToday("")
			if err != nil {
				return err
			}
			_, monday = review.LastWeek(now)
		} else if _, err := parseToday(monday); err != nil {
			return err
		}

		a, err := newApp(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.close()

		id := spreadsheetID
		if id == "" {
			entry, found, err := ledger.New(cfg.DataDir()).Lookup(monday)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no spreadsheet recorded for week %s, run review first or pass --spreadsheet-id", monday)
			}
			id = entry.SpreadsheetID
		}

		ctx := cmd.Context()
		publisher, err := newPublisher(ctx, cfg, a.secrets, a.recorder)
		if err != nil {
			return fmt.Errorf("spreadsheet client: %w", err)
		}
		rows, err := publisher.ReadRows(ctx, id)
		if err != nil {
			return err
		}

		provider, err := newProvider(ctx, cfg, a.secrets)
		if err != nil {
			return fmt.Errorf("llm provider: %w", err)
		}
		compiler := digest.NewCompiler(
			llm.NewReviewer(provider, a.caches.Reviews, a.caches.Overviews, a.recorder),
			a.caches.PaperPages,
			feed.NewParser(a.recorder, nil),
			nil,
		)
		d, err := compiler.Compile(ctx, monday, rows)
		if err != nil {
			return err
		}
		doc := digest.Document(d)

		out := cmd.OutOrStdout()
		if cfg.DryRun() {
			_, err := out.Write(doc.Markdown())
			return err
		}

		result, writeErr := storage.NewLocalSink(a.recorder).Write(cfg.OutputDir(), doc)
		if writeErr != nil {
			return writeErr
		}
		fmt.Fprintf(out, "%d picks written to %s\n", d.Frontmatter.Papers, result.MarkdownPath())
		return nil
	},
}

func init() {
	digestCmd.Flags().StringVar(&week, "week", "", "Monday of the week to digest (YYYY-MM-DD), defaults to last week")
	digestCmd.Flags().StringVar(&spreadsheetID, "spreadsheet-id", "", "read this spreadsheet instead of the ledger entry")
}
