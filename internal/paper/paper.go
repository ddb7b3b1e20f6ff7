// Package paper defines the validated record types for conference papers.
package paper

import (
	"errors"
	"fmt"
	"strings"
)

// UnknownID is the identifier used for rows that carry no id.
const UnknownID = "unknown"

// ErrInvalidPaper is returned when a record violates a structural invariant,
// typically because a field was not normalized before construction.
var ErrInvalidPaper = errors.New("invalid paper")

// Paper represents one conference submission.
type Paper struct {
	ID       string   `json:"id"`    // Not unique across conferences
	Title    string   `json:"title"` // Whitespace-collapsed, may be empty
	Keywords []string `json:"keywords"`
	Abstract string   `json:"abstract"`

	// URL-shaped, not validated; nil when absent
	PDF   *string `json:"pdf"`
	Forum *string `json:"forum"`

	Year             int     `json:"year"`
	PresentationType *string `json:"presentation_type"` // Oral, Poster, Spotlight, ...
}

// Validate checks the structural invariants of a paper. It does not repair
// anything: callers must normalize raw values before constructing a Paper.
func (p Paper) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return invalid("missing required field 'id'")
	}
	if p.ID != strings.TrimSpace(p.ID) {
		return invalid("id %q has surrounding whitespace", p.ID)
	}
	if p.Keywords == nil {
		return invalid("keywords must be a list, got nil")
	}
	for i, kw := range p.Keywords {
		if kw == "" || kw != strings.TrimSpace(kw) {
			return invalid("keyword %d (%q) is not normalized", i, kw)
		}
	}
	if !isCollapsed(p.Title) {
		return invalid("title is not normalized")
	}
	if !isCollapsed(p.Abstract) {
		return invalid("abstract is not normalized")
	}
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"pdf", p.PDF},
		{"forum", p.Forum},
		{"presentation_type", p.PresentationType},
	} {
		if f.value == nil {
			continue
		}
		if *f.value == "" || *f.value != strings.TrimSpace(*f.value) {
			return invalid("%s must be absent or a trimmed non-empty string", f.name)
		}
	}
	return nil
}

// HasKeyword reports whether needle appears, case-insensitively, inside any keyword.
func (p Paper) HasKeyword(needle string) bool {
	needle = strings.ToLower(needle)
	for _, kw := range p.Keywords {
		if strings.Contains(strings.ToLower(kw), needle) {
			return true
		}
	}
	return false
}

// IsPresentationType reports whether the paper's presentation type equals ptype,
// ignoring case. Papers without a presentation type never match.
func (p Paper) IsPresentationType(ptype string) bool {
	return p.PresentationType != nil && strings.EqualFold(*p.PresentationType, ptype)
}

// clone returns a copy that shares no mutable state with p.
func (p Paper) clone() Paper {
	c := p
	c.Keywords = append([]string{}, p.Keywords...)
	c.PDF = cloneString(p.PDF)
	c.Forum = cloneString(p.Forum)
	c.PresentationType = cloneString(p.PresentationType)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// isCollapsed reports whether s is already in whitespace-collapsed form.
func isCollapsed(s string) bool {
	return s == strings.Join(strings.Fields(s), " ")
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPaper, fmt.Sprintf(format, args...))
}
