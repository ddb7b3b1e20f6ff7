package main

import (
	"fmt"

	"github.com/matsen/confpapers/internal/config"
	"github.com/matsen/confpapers/internal/loader"
	"github.com/matsen/confpapers/internal/paper"
	"github.com/spf13/cobra"
)

var (
	conferenceKeyword    string
	conferenceType       string
	conferenceListPapers bool
)

func init() {
	conferenceCmd.Flags().StringVarP(&conferenceKeyword, "keyword", "k", "", "Only papers with a keyword containing this text (case-insensitive)")
	conferenceCmd.Flags().StringVarP(&conferenceType, "type", "t", "", "Only papers with this presentation type (case-insensitive)")
	conferenceCmd.Flags().BoolVar(&conferenceListPapers, "papers", false, "Include the papers in the output")
	rootCmd.AddCommand(conferenceCmd)
}

var conferenceCmd = &cobra.Command{
	Use:   "conference <name>",
	Short: "Load one conference",
	Long: `Load one conference from the data root.

The name is case-insensitive and must be in the registry (neurips, iclr, icml,
aaai, acl, emnlp, naacl, ijcai, aistats, plus any conferences from the config
file). The conference year is the most common paper year.

Examples:
  confpapers conference neurips
  confpapers conference ICLR --keyword diffusion --papers
  confpapers conference icml --type oral --human`,
	Args: cobra.ExactArgs(1),
	RunE: runConference,
}

func runConference(cmd *cobra.Command, args []string) error {
	l, log := mustNewLoader(false)
	defer log.Sync()

	if err := checkConference(l, args[0]); err != nil {
		if loader.IsUnsupportedConference(err) {
			exitWithLoadError(err)
		}
		exitWithDataRootError(err)
	}

	conf, skipped, err := l.ReadConference(args[0])
	if err != nil {
		exitWithLoadError(err)
	}

	papers := selectPapers(conf, conferenceKeyword, conferenceType)
	resp := newConferenceResponse(conf, skipped)
	if conferenceListPapers || conferenceKeyword != "" || conferenceType != "" {
		resp.Papers = papers
		resp.PaperCount = len(papers)
	}

	if !humanOutput {
		return outputJSON(resp)
	}

	outputHuman("%s %d: %d papers\n", conf.Name, conf.Year, conf.PaperCount())
	printSkippedRowsHuman(skipped)
	if resp.Papers != nil {
		fmt.Printf("\n%d matching:\n", len(papers))
		for _, p := range papers {
			fmt.Printf("  %-12s [%s] %s\n", p.ID, deref(p.PresentationType, "-"), truncateString(p.Title, ListTitleMaxLen))
		}
	}
	return nil
}

// checkConference rejects an unsupported conference name before looking at
// the data root, so a bad name is reported as such even when nothing is
// configured.
func checkConference(l *loader.Loader, name string) error {
	if _, err := l.ConferencePath(name); err != nil && !loader.IsMissingConfiguration(err) {
		return err
	}
	return config.CheckDataRoot(l.DataRoot())
}

// selectPapers applies the keyword and presentation type filters; empty
// filters are ignored.
func selectPapers(conf *paper.Conference, keyword, ptype string) []paper.Paper {
	switch {
	case keyword == "" && ptype == "":
		return conf.Papers
	case keyword == "":
		return conf.PapersByPresentationType(ptype)
	case ptype == "":
		return conf.PapersByKeyword(keyword)
	}

	out := []paper.Paper{}
	for _, p := range conf.PapersByKeyword(keyword) {
		if p.IsPresentationType(ptype) {
			out = append(out, p)
		}
	}
	return out
}
