package main

import (
	"github.com/matsen/confpapers/internal/loader"
	"github.com/spf13/cobra"
)

var conferencesParallel int

func init() {
	conferencesCmd.Flags().IntVarP(&conferencesParallel, "parallel", "p", 0, "Load up to N conferences at once (0 loads them one by one)")
	rootCmd.AddCommand(conferencesCmd)
}

var conferencesCmd = &cobra.Command{
	Use:   "conferences",
	Short: "Load every registry conference",
	Long: `Load every conference in the registry from the data root.

Conferences whose table is missing or unreadable are left out and listed under
"skipped" with the reason; the command still succeeds.

Examples:
  confpapers conferences
  confpapers conferences --parallel 4 --human`,
	Args: cobra.NoArgs,
	RunE: runConferences,
}

func runConferences(cmd *cobra.Command, args []string) error {
	l, log := mustNewLoader(true)
	defer log.Sync()

	c := mustLoadCollection(cmd, l, conferencesParallel)
	resp := newConferencesResponse(c)

	if !humanOutput {
		return outputJSON(resp)
	}

	for _, conf := range resp.Loaded {
		outputHuman("%-8s %d  %5d papers\n", conf.Name, conf.Year, conf.PaperCount)
		printSkippedRowsHuman(conf.SkippedRows)
	}
	for _, s := range resp.Skipped {
		outputHuman("%-8s skipped (%s)\n", s.Name, s.Kind)
	}
	outputHuman("\n%d conferences, %d papers\n", len(resp.Loaded), resp.PaperCount)
	return nil
}

// mustLoadCollection loads all registry conferences, concurrently when
// parallel is positive, exits on cancellation.
func mustLoadCollection(cmd *cobra.Command, l *loader.Loader, parallel int) *loader.Collection {
	if parallel <= 0 {
		return l.LoadAll()
	}
	c, err := l.LoadAllConcurrent(cmd.Context(), parallel)
	if err != nil {
		exitWithError(ExitError, "loading conferences: %v", err)
	}
	return c
}
