package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matsen/confpapers/internal/paper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const sampleCSV = `id,title,keywords,abstract,pdf,forum,year,presentation_type
p1,"Scaling   Video
Diffusion","[""Video Generation"", "" Diffusion ""]","  A long
abstract.  ",https://example.com/p1.pdf,https://example.com/forum?id=p1,2024,Oral
p2,RAG Survey,"[""RAG""]",Abstract two,,,2024,Poster
p3,Third Paper,,Abstract three,,,2024,
`

// writeFile writes content to dir/name, creating parent directories.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func ids(papers []paper.Paper) []string {
	out := make([]string, len(papers))
	for i, p := range papers {
		out[i] = p.ID
	}
	return out
}

func TestLoadTable_Sample(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sample_papers.csv", sampleCSV)

	papers, err := New("").LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if len(papers) != 3 {
		t.Fatalf("LoadTable() returned %d papers, want 3", len(papers))
	}

	p := papers[0]
	if p.Title != "Scaling Video Diffusion" {
		t.Errorf("Title = %q, want collapsed whitespace", p.Title)
	}
	if !reflect.DeepEqual(p.Keywords, []string{"Video Generation", "Diffusion"}) {
		t.Errorf("Keywords = %q", p.Keywords)
	}
	if p.Abstract != "A long abstract." {
		t.Errorf("Abstract = %q", p.Abstract)
	}
	if p.PDF == nil || *p.PDF != "https://example.com/p1.pdf" {
		t.Errorf("PDF = %v", p.PDF)
	}
	if p.PresentationType == nil || *p.PresentationType != "Oral" {
		t.Errorf("PresentationType = %v, want Oral", p.PresentationType)
	}

	second := papers[1]
	if second.PDF != nil || second.Forum != nil {
		t.Errorf("empty pdf/forum should be nil, got %v %v", second.PDF, second.Forum)
	}

	third := papers[2]
	if third.Keywords == nil || len(third.Keywords) != 0 {
		t.Errorf("empty keywords cell = %#v, want empty non-nil slice", third.Keywords)
	}
	if third.PresentationType != nil {
		t.Errorf("PresentationType = %q, want nil", *third.PresentationType)
	}

	for _, p := range papers {
		if p.Year != 2024 {
			t.Errorf("%s Year = %d, want 2024", p.ID, p.Year)
		}
	}
}

func TestLoadTable_SkipsMalformedRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "extra fields",
			content: "id,title,year\n" +
				"a,First,2024\n" +
				"b,Second,2024,unexpected\n" +
				"c,Third,2023\n",
		},
		{
			name: "bare quote",
			content: "id,title,year\n" +
				"a,First,2024\n" +
				"b,Bad \"quote,2024\n" +
				"c,Third,2023\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "papers.csv", tt.content)

			res, err := New("").ReadTable(path)
			if err != nil {
				t.Fatalf("ReadTable() error = %v", err)
			}
			if got := ids(res.Papers); !reflect.DeepEqual(got, []string{"a", "c"}) {
				t.Errorf("papers = %v, want [a c]", got)
			}
			if res.Rows != 3 {
				t.Errorf("Rows = %d, want 3", res.Rows)
			}
			if len(res.Skipped) != 1 || res.Skipped[0].Line != 3 {
				t.Errorf("Skipped = %+v, want one row at line 3", res.Skipped)
			}
		})
	}
}

func TestLoadTable_UnterminatedQuoteFailsFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "papers.csv",
		"id,title,year\n"+
			"a,First,2024\n"+
			"b,\"Bad,2024\n"+
			"c,Third,2023\n"+
			"d,Fourth,2023\n")

	res, err := New("").ReadTable(path)
	if !IsParseFailure(err) {
		t.Fatalf("ReadTable() = %+v, %v, want parse failure", res, err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error = %v, want it to name line 3", err)
	}
	var pe *csv.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("error = %v, want wrapped csv.ParseError", err)
	}
}

func TestLoadTable_MultilineQuotedField(t *testing.T) {
	path := writeFile(t, t.TempDir(), "papers.csv",
		"id,abstract,year\n"+
			"a,\"spans\ntwo lines\",2024\n"+
			"b,plain,2024\n")

	res, err := New("").ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if got := ids(res.Papers); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("papers = %v, want [a b]", got)
	}
	if res.Papers[0].Abstract != "spans two lines" {
		t.Errorf("Abstract = %q, want %q", res.Papers[0].Abstract, "spans two lines")
	}
	if len(res.Skipped) != 0 {
		t.Errorf("Skipped = %+v, want none", res.Skipped)
	}
}

func TestLoadTable_StrictRows(t *testing.T) {
	path := writeFile(t, t.TempDir(), "papers.csv", "id,title\na,First\nb,Second,extra\n")

	_, err := New("", WithStrictRows()).LoadTable(path)
	if !IsParseFailure(err) {
		t.Fatalf("LoadTable() error = %v, want parse failure", err)
	}
	var rowErr RowError
	if !errors.As(err, &rowErr) || rowErr.Line != 3 {
		t.Errorf("error = %v, want wrapped RowError at line 3", err)
	}
}

func TestLoadTable_MissingColumnsUseDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "papers.csv", "title,year\n  Only   a title ,not-a-year\n,\n")

	papers, err := New("", WithFallbackYear(2020)).LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("LoadTable() returned %d papers, want 2", len(papers))
	}
	p := papers[0]
	if p.ID != paper.UnknownID {
		t.Errorf("ID = %q, want %q", p.ID, paper.UnknownID)
	}
	if p.Title != "Only a title" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Year != 2020 {
		t.Errorf("Year = %d, want fallback 2020", p.Year)
	}
	if p.Keywords == nil || p.Abstract != "" {
		t.Errorf("Keywords = %#v, Abstract = %q", p.Keywords, p.Abstract)
	}
	if papers[1].Title != "" {
		t.Errorf("blank row Title = %q, want empty", papers[1].Title)
	}
}

func TestLoadTable_ShortRowIsPadded(t *testing.T) {
	path := writeFile(t, t.TempDir(), "papers.csv", "id,title,year\nx,Short\n")

	papers, err := New("").LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if len(papers) != 1 || papers[0].Year != DefaultFallbackYear {
		t.Errorf("papers = %+v, want one paper with the fallback year", papers)
	}
}

func TestLoadTable_FileErrors(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.csv", "")

	tests := []struct {
		name string
		path string
		want Kind
	}{
		{"missing file", filepath.Join(dir, "nonexistent.csv"), KindNotFound},
		{"empty file", empty, KindParseFailure},
		{"directory", dir, KindParseFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("").LoadTable(tt.path)
			if err == nil {
				t.Fatal("LoadTable() expected error")
			}
			if got := KindOf(err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestLoadMany(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.csv", "id,title\na1,A1\na2,A2\n")
	second := writeFile(t, dir, "b.csv", "id,title\nb1,B1\n")

	l := New("")
	papers, err := l.LoadMany(first, second)
	if err != nil {
		t.Fatalf("LoadMany() error = %v", err)
	}
	if got := ids(papers); !reflect.DeepEqual(got, []string{"a1", "a2", "b1"}) {
		t.Errorf("LoadMany() = %v", got)
	}

	if _, err := l.LoadMany(first, filepath.Join(dir, "missing.csv")); !IsNotFound(err) {
		t.Errorf("LoadMany() with missing file error = %v, want not found", err)
	}

	none, err := l.LoadMany()
	if err != nil || len(none) != 0 {
		t.Errorf("LoadMany() with no paths = %v, %v", none, err)
	}
}

// setupDataRoot creates NEURIPS and ICLR exports under a temporary data root.
func setupDataRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "NEURIPS/neurips_papers.csv",
		"id,title,keywords,year,presentation_type\n"+
			"n1,Video,\"[\"\"Video Generation\"\"]\",2024,Oral\n"+
			"n2,Other,,2024,Poster\n"+
			"n3,Late,,2023,Poster\n"+
			"n4,Broken,,2024,Poster,extra\n")
	writeFile(t, root, "ICLR/iclr_papers.csv",
		"id,title,year\n"+
			"i1,First,2022\n"+
			"i2,Second,2023\n")
	return root
}

func TestLoadConference(t *testing.T) {
	root := setupDataRoot(t)
	l := New(root)

	conf, err := l.LoadConference("NeurIPS")
	if err != nil {
		t.Fatalf("LoadConference() error = %v", err)
	}
	if conf.Name != "NEURIPS" {
		t.Errorf("Name = %s, want NEURIPS", conf.Name)
	}
	if conf.Year != 2024 {
		t.Errorf("Year = %d, want 2024", conf.Year)
	}
	if got := ids(conf.Papers); !reflect.DeepEqual(got, []string{"n1", "n2", "n3"}) {
		t.Errorf("papers = %v", got)
	}
	if got := conf.PapersByKeyword("video generation"); len(got) != 1 || got[0].ID != "n1" {
		t.Errorf("PapersByKeyword() = %v", ids(got))
	}
	if got := conf.PapersByPresentationType("poster"); len(got) != 2 {
		t.Errorf("PapersByPresentationType() = %v", ids(got))
	}

	iclr, err := l.LoadConference("iclr")
	if err != nil {
		t.Fatalf("LoadConference(iclr) error = %v", err)
	}
	if iclr.Year != 2023 {
		t.Errorf("tied years: Year = %d, want latest (2023)", iclr.Year)
	}
}

func TestLoadConference_Errors(t *testing.T) {
	root := setupDataRoot(t)

	tests := []struct {
		name     string
		dataRoot string
		conf     string
		want     Kind
	}{
		{"unsupported", root, "notaconf", KindUnsupportedConference},
		{"unsupported without root", "", "notaconf", KindUnsupportedConference},
		{"missing configuration", "", "neurips", KindMissingConfiguration},
		{"missing file", root, "icml", KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, err := New(tt.dataRoot).LoadConference(tt.conf)
			if err == nil {
				t.Fatalf("LoadConference() = %+v, want error", conf)
			}
			if got := KindOf(err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestLoadConference_EmptyUsesFallbackYear(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "AAAI/aaai_papers.csv", "id,title,year\n")

	conf, err := New(root, WithFallbackYear(2019)).LoadConference("aaai")
	if err != nil {
		t.Fatalf("LoadConference() error = %v", err)
	}
	if conf.PaperCount() != 0 || conf.Year != 2019 {
		t.Errorf("conference = %+v, want empty with year 2019", conf)
	}
}

func TestLoadAll(t *testing.T) {
	root := setupDataRoot(t)
	l := New(root)

	coll := l.LoadAll()
	if !reflect.DeepEqual(coll.Order, []string{"NEURIPS", "ICLR"}) {
		t.Errorf("Order = %v, want [NEURIPS ICLR]", coll.Order)
	}
	if len(coll.Conferences) != 2 {
		t.Errorf("Conferences has %d entries, want 2", len(coll.Conferences))
	}
	if len(coll.Skipped) != len(DefaultRegistry)-2 {
		t.Errorf("Skipped = %d conferences, want %d", len(coll.Skipped), len(DefaultRegistry)-2)
	}
	for _, s := range coll.Skipped {
		if !IsNotFound(s.Err) {
			t.Errorf("skip %s: err = %v, want not found", s.Name, s.Err)
		}
	}
	if rows := coll.SkippedRows["NEURIPS"]; len(rows) != 1 || rows[0].Line != 5 {
		t.Errorf("SkippedRows[NEURIPS] = %+v", rows)
	}

	confs := l.LoadAllConferences()
	if _, ok := confs["ICLR"]; !ok {
		t.Errorf("LoadAllConferences() missing ICLR: %v", confs)
	}

	want := []string{"n1", "n2", "n3", "i1", "i2"}
	if got := ids(l.AllPapers()); !reflect.DeepEqual(got, want) {
		t.Errorf("AllPapers() = %v, want %v", got, want)
	}
}

func TestLoadAll_NoDataRoot(t *testing.T) {
	l := New("")
	coll := l.LoadAll()
	if len(coll.Conferences) != 0 {
		t.Errorf("Conferences = %v, want none", coll.Conferences)
	}
	for _, s := range coll.Skipped {
		if !IsMissingConfiguration(s.Err) {
			t.Errorf("skip %s: err = %v, want missing configuration", s.Name, s.Err)
		}
	}
	if papers := l.AllPapers(); len(papers) != 0 {
		t.Errorf("AllPapers() = %v, want none", ids(papers))
	}
}

func TestLoadAllConcurrent(t *testing.T) {
	root := setupDataRoot(t)
	l := New(root)

	coll, err := l.LoadAllConcurrent(context.Background(), 3)
	if err != nil {
		t.Fatalf("LoadAllConcurrent() error = %v", err)
	}
	serial := l.LoadAll()
	if !reflect.DeepEqual(coll.Order, serial.Order) {
		t.Errorf("Order = %v, want %v", coll.Order, serial.Order)
	}
	if !reflect.DeepEqual(ids(coll.Papers()), ids(serial.Papers())) {
		t.Errorf("Papers() = %v, want %v", ids(coll.Papers()), ids(serial.Papers()))
	}
	if len(coll.Skipped) != len(serial.Skipped) {
		t.Errorf("Skipped = %d, want %d", len(coll.Skipped), len(serial.Skipped))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.LoadAllConcurrent(ctx, 1); err == nil {
		t.Error("LoadAllConcurrent() with cancelled context expected error")
	}
}

func TestLoader_LogsSkips(t *testing.T) {
	root := setupDataRoot(t)
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(root, WithLogger(zap.New(core)))

	l.LoadAll()

	if n := logs.FilterMessage("skipping row").Len(); n != 1 {
		t.Errorf("logged %d skipped rows, want 1", n)
	}
	if n := logs.FilterMessage("skipping conference").Len(); n != len(DefaultRegistry)-2 {
		t.Errorf("logged %d skipped conferences, want %d", n, len(DefaultRegistry)-2)
	}
}
