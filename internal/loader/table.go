package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/matsen/confpapers/internal/normalize"
	"github.com/matsen/confpapers/internal/paper"
	"go.uber.org/zap"
)

// Column names recognized in conference CSV exports. All are optional.
const (
	ColumnID               = "id"
	ColumnTitle            = "title"
	ColumnKeywords         = "keywords"
	ColumnAbstract         = "abstract"
	ColumnPDF              = "pdf"
	ColumnForum            = "forum"
	ColumnYear             = "year"
	ColumnPresentationType = "presentation_type"
)

// RowError describes a data row that was skipped.
type RowError struct {
	Line   int    `json:"line"` // 1-based line in the source file
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// TableResult is the outcome of reading one CSV file.
type TableResult struct {
	Path    string        `json:"path"`
	Rows    int           `json:"rows"` // Data rows seen, including skipped ones
	Papers  []paper.Paper `json:"papers"`
	Skipped []RowError    `json:"skipped,omitempty"`
}

// columns holds the index of each known column in the header, -1 if absent.
type columns struct {
	id, title, keywords, abstract, pdf, forum, year, presentationType int

	width int // Header field count
}

func indexColumns(header []string) columns {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}
	at := func(name string) int {
		if i, ok := pos[name]; ok {
			return i
		}
		return -1
	}
	return columns{
		id:               at(ColumnID),
		title:            at(ColumnTitle),
		keywords:         at(ColumnKeywords),
		abstract:         at(ColumnAbstract),
		pdf:              at(ColumnPDF),
		forum:            at(ColumnForum),
		year:             at(ColumnYear),
		presentationType: at(ColumnPresentationType),
		width:            len(header),
	}
}

// rawRow holds the untyped cell values of one record. A nil field means the
// column is absent or the cell is blank.
type rawRow struct {
	ID, Title, Keywords, Abstract, PDF, Forum, Year, PresentationType any
}

// extract pulls every known column out of a record.
func (c columns) extract(record []string) rawRow {
	cell := func(i int) any {
		if i < 0 || i >= len(record) || strings.TrimSpace(record[i]) == "" {
			return nil
		}
		return record[i]
	}
	return rawRow{
		ID:               cell(c.id),
		Title:            cell(c.title),
		Keywords:         cell(c.keywords),
		Abstract:         cell(c.abstract),
		PDF:              cell(c.pdf),
		Forum:            cell(c.forum),
		Year:             cell(c.year),
		PresentationType: cell(c.presentationType),
	}
}

// toPaper normalizes a raw row and validates the result.
func (r rawRow) toPaper(fallbackYear int) (paper.Paper, error) {
	p := paper.Paper{
		ID:               normalize.Str(r.ID, paper.UnknownID),
		Title:            normalize.Text(r.Title),
		Keywords:         normalize.Keywords(r.Keywords),
		Abstract:         normalize.Text(r.Abstract),
		PDF:              normalize.OptionalStr(r.PDF),
		Forum:            normalize.OptionalStr(r.Forum),
		Year:             normalize.Int(r.Year, fallbackYear),
		PresentationType: normalize.OptionalStr(r.PresentationType),
	}
	if err := p.Validate(); err != nil {
		return paper.Paper{}, err
	}
	return p, nil
}

// LoadTable reads papers from a CSV file in row order. Rows that cannot be
// turned into a valid paper are skipped unless the loader is strict.
func (l *Loader) LoadTable(path string) ([]paper.Paper, error) {
	res, err := l.ReadTable(path)
	if err != nil {
		return nil, err
	}
	return res.Papers, nil
}

// ReadTable is LoadTable with a report of the rows that were skipped.
func (l *Loader) ReadTable(path string) (*TableResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(KindNotFound, path, nil, "CSV file not found: %s", path)
		}
		return nil, newError(KindParseFailure, path, err, "failed to open CSV")
	}
	defer f.Close()

	res, err := l.readCSV(f, path)
	if err != nil {
		return nil, err
	}

	if len(res.Skipped) > 0 {
		l.log.Info("skipped malformed rows",
			zap.String("path", path),
			zap.Int("rows", res.Rows),
			zap.Int("skipped", len(res.Skipped)))
	}
	return res, nil
}

func (l *Loader) readCSV(src io.Reader, path string) (*TableResult, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newError(KindParseFailure, path, nil, "failed to parse CSV: no columns to parse from file")
		}
		return nil, newError(KindParseFailure, path, err, "failed to parse CSV header")
	}
	cols := indexColumns(header)

	res := &TableResult{Path: path, Papers: []paper.Paper{}}

	// An open quote that runs to the end of the input swallows every later
	// line, so it fails the file rather than one row.
	var unterminated *csv.ParseError
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			if unterminated != nil {
				return nil, newError(KindParseFailure, path, unterminated,
					"failed to parse CSV: unterminated quoted field starting at line %d", unterminated.StartLine)
			}
			break
		}
		unterminated = nil

		var rowErr *RowError
		var pe *csv.ParseError
		switch {
		case errors.As(err, &pe):
			if errors.Is(pe.Err, csv.ErrQuote) && pe.Line > pe.StartLine {
				unterminated = pe
			}
			rowErr = &RowError{Line: pe.StartLine, Reason: pe.Err.Error()}
		case err != nil:
			return nil, newError(KindParseFailure, path, err, "failed to read CSV")
		default:
			line, _ := r.FieldPos(0)
			if len(record) > cols.width {
				rowErr = &RowError{Line: line, Reason: fmt.Sprintf("expected %d fields, saw %d", cols.width, len(record))}
			} else if p, perr := cols.extract(record).toPaper(l.fallbackYear); perr != nil {
				rowErr = &RowError{Line: line, Reason: perr.Error()}
			} else {
				res.Papers = append(res.Papers, p)
			}
		}
		res.Rows++

		if rowErr == nil {
			continue
		}
		if l.strictRows {
			return nil, newError(KindParseFailure, path, *rowErr, "malformed row")
		}
		l.log.Debug("skipping row",
			zap.String("path", path),
			zap.Int("line", rowErr.Line),
			zap.String("reason", rowErr.Reason))
		res.Skipped = append(res.Skipped, *rowErr)
	}

	return res, nil
}

// LoadMany reads each path in order and concatenates the papers. The first
// file-level error aborts the whole load.
func (l *Loader) LoadMany(paths ...string) ([]paper.Paper, error) {
	all := []paper.Paper{}
	for _, path := range paths {
		papers, err := l.LoadTable(path)
		if err != nil {
			return nil, err
		}
		all = append(all, papers...)
	}
	return all, nil
}
