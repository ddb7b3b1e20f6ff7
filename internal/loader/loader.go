// Package loader reads per-conference CSV exports into validated paper records.
//
// Failures are isolated at two levels. A malformed row is skipped and the rest
// of the file still loads; a conference whose file is missing or unreadable is
// omitted from LoadAll. Both are reported back to the caller (RowError,
// ConferenceSkip) instead of being silently lost, but neither fails the call
// unless the loader is configured to be strict about rows.
package loader

import (
	"path/filepath"
	"strings"

	"github.com/matsen/confpapers/internal/paper"
	"go.uber.org/zap"
)

// DefaultFallbackYear is used for papers without a parsable year and for
// conferences with no papers.
const DefaultFallbackYear = 2024

// Loader loads conference CSVs from a data root. It holds only read-only
// configuration, so one Loader may be shared by concurrent callers.
type Loader struct {
	dataRoot     string
	registry     Registry
	fallbackYear int
	strictRows   bool
	log          *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used to report skipped rows and conferences.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithFallbackYear overrides DefaultFallbackYear.
func WithFallbackYear(year int) Option {
	return func(l *Loader) { l.fallbackYear = year }
}

// WithStrictRows makes any malformed row fail the whole file with a parse failure.
func WithStrictRows() Option {
	return func(l *Loader) { l.strictRows = true }
}

// WithRegistry replaces DefaultRegistry.
func WithRegistry(r Registry) Option {
	return func(l *Loader) { l.registry = r }
}

// New creates a Loader rooted at dataRoot. An empty dataRoot is allowed;
// it only becomes an error when a conference is loaded by name.
func New(dataRoot string, opts ...Option) *Loader {
	l := &Loader{
		dataRoot:     dataRoot,
		registry:     DefaultRegistry,
		fallbackYear: DefaultFallbackYear,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DataRoot returns the configured data root.
func (l *Loader) DataRoot() string {
	return l.dataRoot
}

// Registry returns the conferences this loader knows about.
func (l *Loader) Registry() Registry {
	return append(Registry{}, l.registry...)
}

// ConferencePath resolves the CSV path for a conference:
// {data_root}/{NAME}/{file}.
func (l *Loader) ConferencePath(name string) (string, error) {
	src, ok := l.registry.Lookup(name)
	if !ok {
		return "", newError(KindUnsupportedConference, "", nil,
			"unsupported conference: %s (supported: %s)", name, strings.Join(l.registry.Names(), ", "))
	}
	if l.dataRoot == "" {
		return "", newError(KindMissingConfiguration, "", nil,
			"data root is not set; it must point at the directory holding the conference data directories")
	}
	return filepath.Join(l.dataRoot, strings.ToUpper(src.Name), src.File), nil
}

// LoadConference loads one conference by name (case-insensitive). The
// conference year is the most common paper year.
func (l *Loader) LoadConference(name string) (*paper.Conference, error) {
	conf, _, err := l.ReadConference(name)
	return conf, err
}

// ReadConference is LoadConference with the rows that were skipped.
func (l *Loader) ReadConference(name string) (*paper.Conference, []RowError, error) {
	path, err := l.ConferencePath(name)
	if err != nil {
		return nil, nil, err
	}

	res, err := l.ReadTable(path)
	if err != nil {
		return nil, nil, err
	}

	year := paper.DominantYear(res.Papers, l.fallbackYear)
	conf, err := paper.NewConference(strings.ToUpper(strings.TrimSpace(name)), year, res.Papers)
	if err != nil {
		return nil, nil, newError(KindParseFailure, path, err, "building conference")
	}
	return conf, res.Skipped, nil
}
