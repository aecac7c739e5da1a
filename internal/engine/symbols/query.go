package symbols

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Mode selects how a query name is compared with symbol names.
type Mode int

const (
	ModeFuzzy Mode = iota
	ModePrefix
	ModeExact
)

func (m Mode) String() string {
	switch m {
	case ModePrefix:
		return "prefix"
	case ModeExact:
		return "exact"
	default:
		return "fuzzy"
	}
}

// ParseMode maps a config or flag value to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fuzzy", "":
		return ModeFuzzy, true
	case "prefix":
		return ModePrefix, true
	case "exact":
		return ModeExact, true
	}
	return ModeFuzzy, false
}

// Query is a symbol search request. A Limit of zero or less is unlimited.
type Query struct {
	Name      string
	Mode      Mode
	Limit     int
	OnlyTypes bool
}

func NewQuery(name string) Query {
	return Query{Name: name, Mode: ModeFuzzy}
}

func (q Query) Exact() Query {
	q.Mode = ModeExact
	return q
}

func (q Query) Prefix() Query {
	q.Mode = ModePrefix
	return q
}

func (q Query) WithMode(m Mode) Query {
	q.Mode = m
	return q
}

func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

func (q Query) TypesOnly() Query {
	q.OnlyTypes = true
	return q
}

// Searcher runs one query across many files, sharing a single limit.
type Searcher struct {
	query     Query
	lowered   string
	remaining int
}

func (q Query) Searcher() *Searcher {
	return &Searcher{query: q, lowered: strings.ToLower(q.Name), remaining: q.Limit}
}

// Done reports whether the limit has been reached.
func (s *Searcher) Done() bool {
	return s.query.Limit > 0 && s.remaining <= 0
}

// Process returns the matches in fs, ranked, without exceeding what is left
// of the limit.
func (s *Searcher) Process(fs *FileSymbols) []Symbol {
	if s.Done() || fs == nil || fs.Len() == 0 {
		return nil
	}

	var out []Symbol
	for _, idx := range s.candidates(fs) {
		sym := fs.symbols[idx]
		if s.query.OnlyTypes && !sym.Kind.IsType() {
			continue
		}
		out = append(out, sym)
		if s.query.Limit > 0 {
			s.remaining--
			if s.remaining == 0 {
				break
			}
		}
	}
	return out
}

func (s *Searcher) candidates(fs *FileSymbols) []int {
	var out []int
	switch {
	case s.query.Mode == ModeExact:
		lo := sort.SearchStrings(fs.names, s.query.Name)
		for i := lo; i < len(fs.names) && fs.names[i] == s.query.Name; i++ {
			out = append(out, i)
		}
	case s.query.Mode == ModePrefix || s.query.Name == "":
		for i, name := range fs.names {
			if strings.HasPrefix(strings.ToLower(name), s.lowered) {
				out = append(out, i)
			}
		}
	default:
		for _, m := range fuzzy.FindFrom(s.query.Name, fs) {
			out = append(out, m.Index)
		}
	}
	return out
}
