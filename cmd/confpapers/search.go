package main

import (
	"github.com/matsen/confpapers/internal/loader"
	"github.com/matsen/confpapers/internal/storage"
	"github.com/spf13/cobra"
)

var (
	searchLimit      int
	searchConference string
	searchYear       int
	searchType       string
	searchKeyword    string
	searchParallel   int
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return (0 for no limit)")
	searchCmd.Flags().StringVarP(&searchConference, "conference", "c", "", "Only papers from this conference")
	searchCmd.Flags().IntVar(&searchYear, "year", 0, "Only papers from this year")
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "", "Only papers with this presentation type (case-insensitive)")
	searchCmd.Flags().StringVarP(&searchKeyword, "keyword", "k", "", "Only papers with a keyword containing this text (case-insensitive)")
	searchCmd.Flags().IntVarP(&searchParallel, "parallel", "p", 4, "Load up to N conferences at once (0 loads them one by one)")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search papers across all conferences",
	Long: `Search papers across all loadable conferences.

The query is matched full-text against titles, abstracts and keywords, best
matches first. Without a query, papers matching the filters are listed in
registry order. At least a query or one filter is required.

Examples:
  confpapers search "video generation"
  confpapers search "retrieval" --conference iclr --type poster
  confpapers search --keyword "reinforcement learning" --year 2024 --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	filter := storage.Filter{
		Conference:       searchConference,
		Year:             searchYear,
		PresentationType: searchType,
		Keyword:          searchKeyword,
	}

	var query string
	if len(args) > 0 {
		query = args[0]
	}
	if query == "" && filter.IsZero() {
		exitWithError(ExitError, "must specify a query or at least one filter (--conference, --year, --type, --keyword)")
	}
	filter.Limit = searchLimit

	l, log := mustNewLoader(true)
	defer log.Sync()

	idx, err := buildIndex(mustLoadCollection(cmd, l, searchParallel))
	if err != nil {
		exitWithError(ExitError, "building index: %v", err)
	}
	defer idx.Close()

	var hits []storage.Hit
	if query != "" {
		hits, err = idx.SearchFiltered(query, filter)
	} else {
		hits, err = idx.Filter(filter)
	}
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if !humanOutput {
		return outputJSON(SearchResponse{Query: query, Count: len(hits), Hits: hits})
	}

	if len(hits) == 0 {
		outputHuman("No papers found\n")
		return nil
	}
	outputHuman("Found %d papers:\n\n", len(hits))
	printHitsHuman(hits)
	return nil
}

// buildIndex loads every conference of the collection into a new in-memory
// index. The caller must Close it.
func buildIndex(c *loader.Collection) (*storage.Index, error) {
	idx, err := storage.Open()
	if err != nil {
		return nil, err
	}
	for _, name := range c.Order {
		if err := idx.Add(name, c.Conferences[name].Papers); err != nil {
			idx.Close()
			return nil, err
		}
	}
	return idx, nil
}
