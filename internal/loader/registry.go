package loader

import "strings"

// Source maps a conference identifier to the CSV file expected for it.
type Source struct {
	Name string `json:"name" yaml:"name"` // Lowercase identifier, e.g. "neurips"
	File string `json:"file" yaml:"file"` // File name under {data_root}/{NAME}/
}

// Registry is an ordered set of supported conferences. Order determines the
// iteration order of LoadAll and AllPapers.
type Registry []Source

// DefaultRegistry lists the conferences with known CSV exports.
var DefaultRegistry = Registry{
	{Name: "neurips", File: "neurips_papers.csv"},
	{Name: "iclr", File: "iclr_papers.csv"},
	{Name: "icml", File: "icml_papers.csv"},
	{Name: "aaai", File: "aaai_papers.csv"},
	{Name: "acl", File: "acl_papers.csv"},
	{Name: "emnlp", File: "emnlp_papers.csv"},
	{Name: "naacl", File: "naacl_papers.csv"},
	{Name: "ijcai", File: "ijcai_papers.csv"},
	{Name: "aistats", File: "aistats_papers.csv"},
}

// Lookup finds a conference by name, ignoring case.
func (r Registry) Lookup(name string) (Source, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range r {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

// Names returns the conference identifiers in registry order.
func (r Registry) Names() []string {
	names := make([]string, len(r))
	for i, s := range r {
		names[i] = s.Name
	}
	return names
}

// Merge returns r with extra appended. An entry in extra whose name already
// exists replaces the file name in place, keeping the original position.
func (r Registry) Merge(extra []Source) Registry {
	out := append(Registry{}, r...)
	for _, e := range extra {
		e.Name = strings.ToLower(strings.TrimSpace(e.Name))
		if e.Name == "" {
			continue
		}
		if e.File == "" {
			e.File = e.Name + "_papers.csv"
		}
		replaced := false
		for i := range out {
			if out[i].Name == e.Name {
				out[i].File = e.File
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, e)
		}
	}
	return out
}
