package main

import (
	"os"

	"github.com/matsen/confpapers/internal/storage"
	"github.com/spf13/cobra"
)

var (
	papersJSONL    bool
	papersParallel int
)

func init() {
	papersCmd.Flags().BoolVar(&papersJSONL, "jsonl", false, "Write one JSON paper per line")
	papersCmd.Flags().IntVarP(&papersParallel, "parallel", "p", 0, "Load up to N conferences at once (0 loads them one by one)")
	rootCmd.AddCommand(papersCmd)
}

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List the papers of every loadable conference",
	Long: `List the papers of every conference that loads, in registry order.

Conferences that fail to load are left out; use 'confpapers conferences' to see
which ones and why.

Examples:
  confpapers papers --jsonl > all.jsonl
  confpapers papers --human`,
	Args: cobra.NoArgs,
	RunE: runPapers,
}

func runPapers(cmd *cobra.Command, args []string) error {
	l, log := mustNewLoader(true)
	defer log.Sync()

	papers := mustLoadCollection(cmd, l, papersParallel).Papers()

	switch {
	case papersJSONL:
		return storage.WriteJSONL(os.Stdout, papers)
	case humanOutput:
		printPapersHuman(papers)
		outputHuman("\n%d papers\n", len(papers))
		return nil
	default:
		return outputJSON(papers)
	}
}
