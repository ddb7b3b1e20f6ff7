package paper

import (
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

func samplePapers() []Paper {
	return []Paper{
		{
			ID:               "p1",
			Title:            "Scaling Video Diffusion",
			Keywords:         []string{"Video Generation", "Diffusion"},
			Abstract:         "We scale video diffusion models.",
			PDF:              strPtr("https://example.com/p1.pdf"),
			Forum:            strPtr("https://example.com/forum?id=p1"),
			Year:             2024,
			PresentationType: strPtr("Oral"),
		},
		{
			ID:               "p2",
			Title:            "Retrieval Augmented Generation",
			Keywords:         []string{"RAG", "NLP"},
			Year:             2024,
			PresentationType: strPtr("poster"),
		},
		{
			ID:       "p3",
			Title:    "Unlabeled",
			Keywords: []string{},
			Year:     2023,
		},
	}
}

func TestPaper_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Paper)
		wantErr bool
	}{
		{"valid", func(p *Paper) {}, false},
		{"empty optional fields", func(p *Paper) { p.PDF, p.Forum, p.PresentationType = nil, nil, nil }, false},
		{"missing id", func(p *Paper) { p.ID = "" }, true},
		{"blank id", func(p *Paper) { p.ID = "   " }, true},
		{"nil keywords", func(p *Paper) { p.Keywords = nil }, true},
		{"empty keyword", func(p *Paper) { p.Keywords = []string{"ok", ""} }, true},
		{"untrimmed keyword", func(p *Paper) { p.Keywords = []string{" spaced "} }, true},
		{"raw title", func(p *Paper) { p.Title = "Line one\nline two" }, true},
		{"raw abstract", func(p *Paper) { p.Abstract = "  padded" }, true},
		{"empty pdf", func(p *Paper) { p.PDF = strPtr("") }, true},
		{"untrimmed forum", func(p *Paper) { p.Forum = strPtr(" https://x ") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := samplePapers()[0]
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPaper) {
				t.Errorf("Validate() error = %v, want ErrInvalidPaper", err)
			}
		})
	}
}

func TestNewConference(t *testing.T) {
	papers := samplePapers()
	conf, err := NewConference("NEURIPS", 2024, papers)
	if err != nil {
		t.Fatalf("NewConference() error = %v", err)
	}
	if conf.PaperCount() != 3 {
		t.Errorf("PaperCount() = %d, want 3", conf.PaperCount())
	}

	// The conference owns its papers.
	papers[0].Keywords[0] = "mutated"
	papers[0].Title = "mutated"
	if conf.Papers[0].Keywords[0] != "Video Generation" || conf.Papers[0].Title != "Scaling Video Diffusion" {
		t.Errorf("conference shares state with caller: %+v", conf.Papers[0])
	}

	for i, want := range []string{"p1", "p2", "p3"} {
		if conf.Papers[i].ID != want {
			t.Errorf("Papers[%d].ID = %s, want %s", i, conf.Papers[i].ID, want)
		}
	}
}

func TestNewConference_RejectsInvalid(t *testing.T) {
	papers := samplePapers()
	papers[1].Keywords = nil

	if _, err := NewConference("ICLR", 2024, papers); !errors.Is(err, ErrInvalidPaper) {
		t.Errorf("NewConference() error = %v, want ErrInvalidPaper", err)
	}
	if _, err := NewConference("  ", 2024, nil); err == nil {
		t.Error("NewConference() with empty name expected error")
	}
}

func TestConference_PapersByKeyword(t *testing.T) {
	conf, err := NewConference("NEURIPS", 2024, samplePapers())
	if err != nil {
		t.Fatalf("NewConference() error = %v", err)
	}

	tests := []struct {
		keyword string
		want    []string
	}{
		{"video generation", []string{"p1"}},
		{"VIDEO", []string{"p1"}},
		{"gen", []string{"p1"}},
		{"rag", []string{"p2"}},
		{"missing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			got := conf.PapersByKeyword(tt.keyword)
			if len(got) != len(tt.want) {
				t.Fatalf("PapersByKeyword(%q) returned %d papers, want %d", tt.keyword, len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("PapersByKeyword(%q)[%d] = %s, want %s", tt.keyword, i, got[i].ID, id)
				}
			}
		})
	}
}

func TestConference_PapersByPresentationType(t *testing.T) {
	conf, err := NewConference("NEURIPS", 2024, samplePapers())
	if err != nil {
		t.Fatalf("NewConference() error = %v", err)
	}

	if got := conf.PapersByPresentationType("oral"); len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("PapersByPresentationType(oral) = %+v, want [p1]", got)
	}
	if got := conf.PapersByPresentationType("POSTER"); len(got) != 1 || got[0].ID != "p2" {
		t.Errorf("PapersByPresentationType(POSTER) = %+v, want [p2]", got)
	}
	// Exact match only, not substring.
	if got := conf.PapersByPresentationType("Ora"); len(got) != 0 {
		t.Errorf("PapersByPresentationType(Ora) = %+v, want none", got)
	}
	if got := conf.PapersByPresentationType(""); len(got) != 0 {
		t.Errorf("PapersByPresentationType(\"\") matched papers without a type: %+v", got)
	}
}

func TestDominantYear(t *testing.T) {
	years := func(ys ...int) []Paper {
		papers := make([]Paper, len(ys))
		for i, y := range ys {
			papers[i] = Paper{ID: "x", Keywords: []string{}, Year: y}
		}
		return papers
	}

	tests := []struct {
		name   string
		papers []Paper
		want   int
	}{
		{"majority", years(2024, 2024, 2023), 2024},
		{"empty", nil, 2024},
		{"single", years(2019), 2019},
		{"tie goes to latest", years(2022, 2023, 2022, 2023), 2023},
		{"zero years ignored", years(0, 0, 0, 2021), 2021},
		{"only zero years", years(0, 0), 2024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DominantYear(tt.papers, 2024); got != tt.want {
				t.Errorf("DominantYear() = %d, want %d", got, tt.want)
			}
		})
	}
}
