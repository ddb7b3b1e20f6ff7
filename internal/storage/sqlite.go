// Package storage provides an ephemeral, in-memory SQLite index over loaded
// papers and a JSONL encoder for streaming them out. Nothing is written to disk.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	sq "github.com/Masterminds/squirrel"
	"github.com/matsen/confpapers/internal/paper"
	_ "modernc.org/sqlite"
)

// keywordSep joins lower-cased keywords in keywords_lc so a LIKE pattern
// cannot match across two keywords.
const keywordSep = "\x1f"

// selectPaperFields contains the standard field list for SELECT queries.
var selectPaperFields = []string{
	"p.conference", "p.id", "p.title", "p.abstract", "p.keywords_json",
	"p.pdf", "p.forum", "p.year", "p.presentation_type",
}

// Index wraps a private in-memory SQLite database.
type Index struct {
	db *sql.DB
}

// Hit is a paper together with the conference it was loaded from.
type Hit struct {
	Conference string      `json:"conference"`
	Paper      paper.Paper `json:"paper"`
}

// Open creates an empty index.
func Open() (*Index, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	// Every connection to :memory: is a separate database, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close releases the index. Its contents are gone afterwards.
func (x *Index) Close() error {
	return x.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE papers (
			seq INTEGER PRIMARY KEY,
			conference TEXT NOT NULL,
			id TEXT NOT NULL,
			title TEXT NOT NULL,
			abstract TEXT NOT NULL,
			keywords_json TEXT NOT NULL,
			keywords_lc TEXT NOT NULL,
			pdf TEXT,
			forum TEXT,
			year INTEGER NOT NULL,
			presentation_type TEXT,
			presentation_type_lc TEXT
		);

		CREATE INDEX idx_papers_conference_year ON papers(conference, year);

		-- rowid mirrors papers.seq
		CREATE VIRTUAL TABLE papers_fts USING fts5(
			title,
			abstract,
			keywords
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Add indexes papers under a conference name, keeping their order.
func (x *Index) Add(conference string, papers []paper.Paper) error {
	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	paperStmt, err := tx.Prepare(`
		INSERT INTO papers (
			conference, id, title, abstract, keywords_json, keywords_lc,
			pdf, forum, year, presentation_type, presentation_type_lc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing papers insert: %w", err)
	}
	defer paperStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO papers_fts (rowid, title, abstract, keywords) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	conference = strings.ToUpper(strings.TrimSpace(conference))
	for _, p := range papers {
		keywordsJSON, err := json.Marshal(p.Keywords)
		if err != nil {
			return fmt.Errorf("marshaling keywords for %s: %w", p.ID, err)
		}

		lowered := make([]string, len(p.Keywords))
		for i, kw := range p.Keywords {
			lowered[i] = strings.ToLower(kw)
		}

		var ptypeLC sql.NullString
		if p.PresentationType != nil {
			ptypeLC = sql.NullString{String: strings.ToLower(*p.PresentationType), Valid: true}
		}

		res, err := paperStmt.Exec(
			conference, p.ID, p.Title, p.Abstract, string(keywordsJSON),
			keywordSep+strings.Join(lowered, keywordSep)+keywordSep,
			nullable(p.PDF), nullable(p.Forum), p.Year,
			nullable(p.PresentationType), ptypeLC,
		)
		if err != nil {
			return fmt.Errorf("inserting paper %s: %w", p.ID, err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading rowid for %s: %w", p.ID, err)
		}

		if _, err := ftsStmt.Exec(seq, p.Title, p.Abstract, strings.Join(p.Keywords, " ; ")); err != nil {
			return fmt.Errorf("inserting fts for %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// Count returns the number of indexed papers.
func (x *Index) Count() (int, error) {
	var count int
	err := x.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&count)
	return count, err
}

// Search performs a full-text search over titles, abstracts and keywords,
// best matches first. A limit below 1 means no limit.
func (x *Index) Search(query string, limit int) ([]Hit, error) {
	return x.SearchFiltered(query, Filter{Limit: limit})
}

// SearchFiltered is Search restricted to the papers matching f.
func (x *Index) SearchFiltered(query string, f Filter) ([]Hit, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return []Hit{}, nil
	}

	q := sq.Select(selectPaperFields...).
		From("papers_fts").
		Join("papers p ON p.seq = papers_fts.rowid").
		Where("papers_fts MATCH ?", ftsQuery).
		OrderBy("papers_fts.rank", "p.seq")

	return x.query(f.apply(q))
}

// Filter narrows the index down. Zero-valued fields are ignored and all set
// fields must match.
type Filter struct {
	Conference       string // Exact, case-insensitive
	Year             int
	PresentationType string // Exact, case-insensitive
	Keyword          string // Substring of any keyword, case-insensitive
	Limit            int
}

// IsZero reports whether f matches everything.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

func (f Filter) apply(q sq.SelectBuilder) sq.SelectBuilder {
	if f.Conference != "" {
		q = q.Where(sq.Eq{"p.conference": strings.ToUpper(strings.TrimSpace(f.Conference))})
	}
	if f.Year != 0 {
		q = q.Where(sq.Eq{"p.year": f.Year})
	}
	if f.PresentationType != "" {
		q = q.Where(sq.Eq{"p.presentation_type_lc": strings.ToLower(f.PresentationType)})
	}
	if f.Keyword != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Keyword)) + "%"
		q = q.Where(`p.keywords_lc LIKE ? ESCAPE '\'`, pattern)
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	return q
}

// Filter returns the papers matching f in the order they were added.
func (x *Index) Filter(f Filter) ([]Hit, error) {
	q := sq.Select(selectPaperFields...).From("papers p").OrderBy("p.seq")
	return x.query(f.apply(q))
}

func (x *Index) query(q sq.SelectBuilder) ([]Hit, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := x.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	return scanHits(rows)
}

func scanHits(rows *sql.Rows) ([]Hit, error) {
	hits := []Hit{}
	for rows.Next() {
		var h Hit
		var keywordsJSON string
		var pdf, forum, ptype sql.NullString

		err := rows.Scan(
			&h.Conference, &h.Paper.ID, &h.Paper.Title, &h.Paper.Abstract, &keywordsJSON,
			&pdf, &forum, &h.Paper.Year, &ptype,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(keywordsJSON), &h.Paper.Keywords); err != nil {
			return nil, fmt.Errorf("parsing keywords JSON for %s: %w", h.Paper.ID, err)
		}
		if h.Paper.Keywords == nil {
			h.Paper.Keywords = []string{}
		}
		h.Paper.PDF = stringPtr(pdf)
		h.Paper.Forum = stringPtr(forum)
		h.Paper.PresentationType = stringPtr(ptype)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// escapeLike escapes LIKE wildcards using backslash as the escape character.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// prepareFTSQuery turns free text into an FTS5 query that matches every word.
// Each whitespace-separated token becomes a quoted string, so FTS5 operators
// and punctuation are searched for literally. Tokens with no letter or digit
// are dropped since the tokenizer would discard them anyway.
func prepareFTSQuery(query string) string {
	var terms []string
	for _, tok := range strings.Fields(query) {
		if !strings.ContainsFunc(tok, isWordRune) {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(tok, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
