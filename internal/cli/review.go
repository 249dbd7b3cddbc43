package cmd

import (
	"fmt"
	"time"

	"github.com/rohmanhakim/paper-review/internal/feed"
	"github.com/rohmanhakim/paper-review/internal/ledger"
	"github.com/rohmanhakim/paper-review/internal/llm"
	"github.com/rohmanhakim/paper-review/internal/review"
	"github.com/rohmanhakim/paper-review/internal/sheet"
	"github.com/rohmanhakim/paper-review/internal/stats"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

var (
	withStats bool
	noShare   bool
	today     string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Collect last week's papers into a review spreadsheet.",
	Long: `review scrapes the five weekdays of the previous week from the daily
papers feed, asks the LLM for a TL;DR and the affiliations of each paper
and publishes the rows, highest upvotes first, to a new Google
spreadsheet. The spreadsheet id is appended to the ledger in the data
directory so the digest command can find it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		runDate, err := parseToday(today)
		if err != nil {
			return err
		}

		a, err := newApp(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		provider, err := newProvider(ctx, cfg, a.secrets)
		if err != nil {
			return fmt.Errorf("llm provider: %w", err)
		}

		var statsSource review.StatsSource
		if cfg.StatsEnabled() {
			statsSource = stats.NewCollector(a.fetcher, a.caches.Stats, cfg.StatsBaseURL(), cfg.UserAgent(), a.retryParam)
		}

		pipeline := review.NewPipeline(
			a.recorder,
			a.recorder,
			a.fetcher,
			feed.NewParser(a.recorder, nil),
			a.caches,
			llm.NewSummarizer(provider, a.caches.Summaries, a.recorder),
			llm.NewAffiliationExtractor(provider, a.fetcher, a.caches.Affiliations, a.retryParam, cfg.UserAgent(), a.recorder),
			statsSource,
			review.PipelineParam{
				FeedURL:    cfg.FeedURL(),
				UserAgent:  cfg.UserAgent(),
				RetryParam: a.retryParam,
			},
		)

		days, monday := review.LastWeek(runDate)
		a.logger.WithField("week", monday).Infof("collecting papers for %s to %s", days[0], days[len(days)-1])

		execution, err := pipeline.Run(ctx, days)
		if err != nil {
			return err
		}
		table := review.BuildTable(execution.Papers, pipeline.WithStats())

		out := cmd.OutOrStdout()
		if cfg.DryRun() {
			fmt.Fprintf(out, "dry run: %d papers for week %s, spreadsheet not published\n", len(execution.Papers), monday)
			return nil
		}

		publisher, err := newPublisher(ctx, cfg, a.secrets, a.recorder)
		if err != nil {
			return fmt.Errorf("spreadsheet client: %w", err)
		}
		id, err := publisher.Publish(ctx, review.SpreadsheetTitle(monday), table)
		if err != nil {
			return err
		}
		if err := ledger.New(cfg.DataDir()).Append(monday, id); err != nil {
			return err
		}
		if cfg.Share() {
			if err := publisher.Share(ctx, id); err != nil {
				return err
			}
		}

		fmt.Fprintf(out, "%d papers published to %s\n", len(execution.Papers), sheet.FullURL(id))
		return nil
	},
}

func init() {
	reviewCmd.Flags().BoolVar(&withStats, "with-stats", false, "add social statistics columns")
	reviewCmd.Flags().BoolVar(&noShare, "no-share", false, "keep the spreadsheet private")
	reviewCmd.Flags().StringVar(&today, "today", "", "run as if today were this date (YYYY-MM-DD)")
}

// parseToday returns the local date value, or now when value is empty.
func parseToday(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return t, nil
}
