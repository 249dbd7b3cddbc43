package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/rohmanhakim/paper-review/internal/respcache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the response caches.",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the entry count of every cache file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		// Read-only: no workspace init, missing files read as empty.
		caches, err := respcache.OpenRegistry(cfg.CacheDir(), nil)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CACHE\tENTRIES\tPATH")
		for _, info := range caches.Info() {
			fmt.Fprintf(w, "%s\t%d\t%s\n", info.Name, info.Entries, info.Path)
		}
		return w.Flush()
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
}
