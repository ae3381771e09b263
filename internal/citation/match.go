package citation

import (
	"github.com/matsen/apalint/internal/normalize"
	"github.com/matsen/apalint/internal/reference"
)

// DefaultThreshold is the minimum per-surname similarity for a fuzzy match,
// i.e. a normalized edit distance of at most 0.2.
const DefaultThreshold = 0.8

// Outcome is the result of matching one citation.
type Outcome string

const (
	Confirmed    Outcome = "confirmed"
	YearMismatch Outcome = "year_mismatch"
	Orphan       Outcome = "orphan"
)

// Match pairs a citation with the reference it resolved to. Ref is an index
// into the matcher's reference list, -1 for orphans.
type Match struct {
	Citation Citation `json:"citation"`
	Outcome  Outcome  `json:"outcome"`
	Ref      int      `json:"ref"`
	Fuzzy    bool     `json:"fuzzy,omitempty"`
}

// refNames holds the folded name forms of one reference author. Group
// authors may be cited by name or abbreviation.
type refNames []string

// Matcher resolves citations against a fixed reference list.
type Matcher struct {
	threshold float64
	refs      []reference.Reference
	names     [][]refNames
}

// NewMatcher indexes refs. A threshold outside (0,1] selects DefaultThreshold.
func NewMatcher(refs []reference.Reference, threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	m := &Matcher{threshold: threshold, refs: refs, names: make([][]refNames, len(refs))}
	for i, r := range refs {
		for _, a := range r.Authors {
			forms := refNames{normalize.Surname(a.Surname())}
			if a.Abbreviation != "" {
				forms = append(forms, normalize.Key(a.Abbreviation))
			}
			m.names[i] = append(m.names[i], forms)
		}
	}
	return m
}

// Threshold returns the fuzzy similarity threshold in use.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Match resolves one citation. Candidates are tried in order: exact names
// with matching year, fuzzy names with matching year, then exact and fuzzy
// names with a different year.
func (m *Matcher) Match(c Citation) Match {
	type pass struct {
		fuzzy    bool
		sameYear bool
	}
	for _, p := range []pass{{false, true}, {true, true}, {false, false}, {true, false}} {
		for i, r := range m.refs {
			if yearMatches(c, r) != p.sameYear || !m.namesMatch(c, i, p.fuzzy) {
				continue
			}
			out := Match{Citation: c, Outcome: Confirmed, Ref: i, Fuzzy: p.fuzzy}
			if !p.sameYear {
				out.Outcome = YearMismatch
			}
			return out
		}
	}
	return Match{Citation: c, Outcome: Orphan, Ref: -1}
}

// MatchAll resolves every citation, preserving order.
func (m *Matcher) MatchAll(cs []Citation) []Match {
	out := make([]Match, len(cs))
	for i, c := range cs {
		out[i] = m.Match(c)
	}
	return out
}

// namesMatch compares the citation's surnames with reference i. Works with
// three or more authors are cited as "First et al.", so only the first
// surname is compared for them and for any et al. citation; a citation
// listing every author also matches.
func (m *Matcher) namesMatch(c Citation, i int, fuzzy bool) bool {
	names := m.names[i]
	if len(names) == 0 || len(c.Keys) == 0 {
		return false
	}
	if c.EtAl || (len(names) >= 3 && len(c.Keys) == 1) {
		return m.nameMatches(c.Keys[0], names[0], fuzzy)
	}
	if len(c.Keys) != len(names) {
		return false
	}
	for j, k := range c.Keys {
		if !m.nameMatches(k, names[j], fuzzy) {
			return false
		}
	}
	return true
}

func (m *Matcher) nameMatches(key string, forms refNames, fuzzy bool) bool {
	for _, f := range forms {
		if key == f || (fuzzy && normalize.Similarity(key, f) >= m.threshold) {
			return true
		}
	}
	return false
}

// yearMatches compares years. Suffixes only have to agree when both sides
// carry one.
func yearMatches(c Citation, r reference.Reference) bool {
	if c.Year != r.Year {
		return false
	}
	return c.YearSuffix == "" || r.YearSuffix == "" || c.YearSuffix == r.YearSuffix
}
