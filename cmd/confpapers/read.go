package main

import (
	"github.com/matsen/confpapers/internal/loader"
	"github.com/spf13/cobra"
)

var readStrict bool

func init() {
	readCmd.Flags().BoolVar(&readStrict, "strict", false, "Fail on the first malformed row instead of skipping it")
	rootCmd.AddCommand(readCmd)
}

var readCmd = &cobra.Command{
	Use:   "read <csv>...",
	Short: "Load papers from CSV files by path",
	Long: `Load papers from one or more CSV files given by path.

No data root is needed. Malformed rows are skipped and listed per file unless
--strict is set. A file that cannot be read or parsed is an error.

Examples:
  confpapers read data/NEURIPS/neurips_papers.csv
  confpapers read a.csv b.csv --strict --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
	var extra []loader.Option
	if readStrict {
		extra = append(extra, loader.WithStrictRows())
	}
	l, log := mustNewLoader(false, extra...)
	defer log.Sync()

	resp := ReadResponse{Files: make([]*loader.TableResult, 0, len(args))}
	for _, path := range args {
		result, err := l.ReadTable(path)
		if err != nil {
			exitWithLoadError(err)
		}
		resp.Files = append(resp.Files, result)
		resp.PaperCount += len(result.Papers)
	}

	if !humanOutput {
		return outputJSON(resp)
	}

	for _, f := range resp.Files {
		outputHuman("%s: %d papers from %d rows\n", f.Path, len(f.Papers), f.Rows)
		printSkippedRowsHuman(f.Skipped)
	}
	if len(resp.Files) > 1 {
		outputHuman("total: %d papers\n", resp.PaperCount)
	}
	return nil
}
