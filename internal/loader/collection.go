package loader

import (
	"context"
	"strings"

	"github.com/matsen/confpapers/internal/paper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ConferenceSkip records a registry conference that could not be loaded.
type ConferenceSkip struct {
	Name string
	Err  error
}

// Collection is the result of loading every registry conference.
type Collection struct {
	// Conferences is keyed by upper-case conference name.
	Conferences map[string]*paper.Conference
	// Order lists the loaded conference names in registry order.
	Order []string
	// Skipped lists conferences omitted because their load failed.
	Skipped []ConferenceSkip
	// SkippedRows lists malformed rows per loaded conference, when there were any.
	SkippedRows map[string][]RowError
}

// Papers flattens all loaded conferences in registry order.
func (c *Collection) Papers() []paper.Paper {
	all := []paper.Paper{}
	for _, name := range c.Order {
		all = append(all, c.Conferences[name].Papers...)
	}
	return all
}

type conferenceLoad struct {
	conf    *paper.Conference
	skipped []RowError
	err     error
}

// LoadAll attempts every registry conference. Conferences that fail to load
// are left out of the result and listed in Skipped.
func (l *Loader) LoadAll() *Collection {
	loads := make([]conferenceLoad, len(l.registry))
	for i, src := range l.registry {
		conf, skipped, err := l.ReadConference(src.Name)
		loads[i] = conferenceLoad{conf: conf, skipped: skipped, err: err}
	}
	return l.collect(loads)
}

// LoadAllConcurrent is LoadAll with up to limit conferences loading at once.
// A limit below 1 means no limit. The result is identical to LoadAll; only a
// cancelled context produces an error.
func (l *Loader) LoadAllConcurrent(ctx context.Context, limit int) (*Collection, error) {
	loads := make([]conferenceLoad, len(l.registry))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, src := range l.registry {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			conf, skipped, err := l.ReadConference(src.Name)
			loads[i] = conferenceLoad{conf: conf, skipped: skipped, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return l.collect(loads), nil
}

// collect assembles per-conference results, which are in registry order.
func (l *Loader) collect(loads []conferenceLoad) *Collection {
	c := &Collection{
		Conferences: make(map[string]*paper.Conference),
		Order:       []string{},
		SkippedRows: make(map[string][]RowError),
	}
	for i, ld := range loads {
		name := strings.ToUpper(l.registry[i].Name)
		if ld.err != nil {
			l.log.Warn("skipping conference",
				zap.String("conference", name),
				zap.String("kind", KindOf(ld.err).String()),
				zap.Error(ld.err))
			c.Skipped = append(c.Skipped, ConferenceSkip{Name: name, Err: ld.err})
			continue
		}
		c.Conferences[name] = ld.conf
		c.Order = append(c.Order, name)
		if len(ld.skipped) > 0 {
			c.SkippedRows[name] = ld.skipped
		}
	}
	return c
}

// LoadAllConferences returns every conference that loads, keyed by upper-case
// name. Failures are omitted silently; use LoadAll to see them.
func (l *Loader) LoadAllConferences() map[string]*paper.Conference {
	return l.LoadAll().Conferences
}

// AllPapers returns the papers of every loadable conference in registry order,
// each conference keeping its row order.
func (l *Loader) AllPapers() []paper.Paper {
	return l.LoadAll().Papers()
}
