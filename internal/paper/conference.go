package paper

import (
	"fmt"
	"strings"
)

// Conference is one conference's corpus for one year. It is built once per
// load and never mutated; query methods return fresh slices.
type Conference struct {
	Name   string  `json:"name"` // Upper-case identifier, e.g. NEURIPS
	Year   int     `json:"year"`
	Papers []Paper `json:"papers"`
}

// NewConference validates every paper and returns a Conference that owns a
// private copy of them. Paper order is preserved.
func NewConference(name string, year int, papers []Paper) (*Conference, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: conference name is empty", ErrInvalidPaper)
	}

	owned := make([]Paper, len(papers))
	for i, p := range papers {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("paper %d (%s): %w", i+1, p.ID, err)
		}
		owned[i] = p.clone()
	}

	return &Conference{Name: name, Year: year, Papers: owned}, nil
}

// PaperCount returns the number of papers in the conference.
func (c *Conference) PaperCount() int {
	return len(c.Papers)
}

// PapersByKeyword returns papers with at least one keyword containing keyword,
// ignoring case.
func (c *Conference) PapersByKeyword(keyword string) []Paper {
	return c.filter(func(p Paper) bool { return p.HasKeyword(keyword) })
}

// PapersByPresentationType returns papers whose presentation type equals ptype,
// ignoring case.
func (c *Conference) PapersByPresentationType(ptype string) []Paper {
	return c.filter(func(p Paper) bool { return p.IsPresentationType(ptype) })
}

func (c *Conference) filter(keep func(Paper) bool) []Paper {
	out := []Paper{}
	for _, p := range c.Papers {
		if keep(p) {
			out = append(out, p.clone())
		}
	}
	return out
}

// DominantYear returns the most common non-zero year among papers, or fallback
// when there is none. Ties go to the latest year.
func DominantYear(papers []Paper, fallback int) int {
	counts := make(map[int]int)
	for _, p := range papers {
		if p.Year != 0 {
			counts[p.Year]++
		}
	}
	if len(counts) == 0 {
		return fallback
	}

	best, bestCount := 0, 0
	for year, n := range counts {
		if n > bestCount || (n == bestCount && year > best) {
			best, bestCount = year, n
		}
	}
	return best
}
