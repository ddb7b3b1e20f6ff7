package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/confpapers/internal/loader"
	"github.com/matsen/confpapers/internal/paper"
	"github.com/matsen/confpapers/internal/storage"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search results

	SearchTitleMaxLen = 70 // Used in search result summaries
	ListTitleMaxLen   = 60 // Used in paper listings
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitWithLoadError exits with the code matching the kind of a load error.
func exitWithLoadError(err error) {
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	} else {
		outputJSON(ErrorResponse{Error: err.Error(), Kind: loader.KindOf(err).String()})
	}
	os.Exit(exitCodeFor(err))
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// ConferenceResponse summarizes one loaded conference.
type ConferenceResponse struct {
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	PaperCount  int               `json:"paper_count"`
	Papers      []paper.Paper     `json:"papers,omitempty"`
	SkippedRows []loader.RowError `json:"skipped_rows,omitempty"`
}

// SkipResponse describes a conference left out of a multi-conference load.
type SkipResponse struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// ConferencesResponse is the response for the conferences command.
type ConferencesResponse struct {
	Loaded     []ConferenceResponse `json:"loaded"`
	Skipped    []SkipResponse       `json:"skipped"`
	PaperCount int                  `json:"paper_count"`
}

// ReadResponse is the response for the read command.
type ReadResponse struct {
	Files      []*loader.TableResult `json:"files"`
	PaperCount int                   `json:"paper_count"`
}

// SearchResponse is the response for the search command.
type SearchResponse struct {
	Query string        `json:"query,omitempty"`
	Count int           `json:"count"`
	Hits  []storage.Hit `json:"hits"`
}

// newConferenceResponse builds the summary for a loaded conference.
func newConferenceResponse(conf *paper.Conference, skipped []loader.RowError) ConferenceResponse {
	return ConferenceResponse{
		Name:        conf.Name,
		Year:        conf.Year,
		PaperCount:  conf.PaperCount(),
		SkippedRows: skipped,
	}
}

// newConferencesResponse converts a collection into its JSON form, keeping
// registry order for both loaded and skipped conferences.
func newConferencesResponse(c *loader.Collection) ConferencesResponse {
	resp := ConferencesResponse{
		Loaded:  []ConferenceResponse{},
		Skipped: []SkipResponse{},
	}
	for _, name := range c.Order {
		conf := c.Conferences[name]
		resp.Loaded = append(resp.Loaded, newConferenceResponse(conf, c.SkippedRows[name]))
		resp.PaperCount += conf.PaperCount()
	}
	for _, s := range c.Skipped {
		resp.Skipped = append(resp.Skipped, SkipResponse{
			Name:  s.Name,
			Kind:  loader.KindOf(s.Err).String(),
			Error: s.Err.Error(),
		})
	}
	return resp
}

// printPapersHuman prints one line per paper.
func printPapersHuman(papers []paper.Paper) {
	for _, p := range papers {
		fmt.Printf("  %-12s %s\n", p.ID, truncateString(p.Title, ListTitleMaxLen))
	}
}

// printSkippedRowsHuman prints skipped rows under a heading.
func printSkippedRowsHuman(skipped []loader.RowError) {
	if len(skipped) == 0 {
		return
	}
	fmt.Printf("  skipped %d malformed row(s):\n", len(skipped))
	for _, r := range skipped {
		fmt.Printf("    %s\n", r.Error())
	}
}

// printHitsHuman prints search hits in human-readable format.
func printHitsHuman(hits []storage.Hit) {
	for i, h := range hits {
		fmt.Printf("%d. [%s %d] %s\n", i+1, h.Conference, h.Paper.Year, h.Paper.ID)
		fmt.Printf("   %s\n", truncateString(h.Paper.Title, SearchTitleMaxLen))
		if len(h.Paper.Keywords) > 0 {
			fmt.Printf("   %s\n", truncateString(strings.Join(h.Paper.Keywords, ", "), SearchTitleMaxLen))
		}
		fmt.Println()
	}
}

// deref returns the pointed-to string, or fallback for nil.
func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
