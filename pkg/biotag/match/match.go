// Package match runs a dictionary automaton over free text and resolves the
// raw hits into an entity span set.
package match

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/cognibio/biotag/pkg/biotag/automaton"
	"github.com/cognibio/biotag/pkg/biotag/dictionary"
	"github.com/cognibio/biotag/pkg/biotag/internalerr"
	"github.com/cognibio/biotag/pkg/biotag/normalize"
)

// Match is one recognized entity mention. Start and End are byte offsets into
// the original input text; Surface is the original slice text[Start:End].
type Match struct {
	Start   int
	End     int
	Surface string
	Entity  dictionary.Entity
}

// Policy selects how overlapping matches are resolved.
type Policy int

const (
	// PolicyAll returns every raw match, overlaps and nested spans included.
	PolicyAll Policy = iota
	// PolicyLeftmostLongest drops matches strictly contained in another
	// match. Matches with identical spans are all retained, so the same
	// span may carry entities of different types.
	PolicyLeftmostLongest
)

func (p Policy) String() string {
	switch p {
	case PolicyAll:
		return "all"
	case PolicyLeftmostLongest:
		return "leftmost-longest"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy converts a policy name as accepted on the command line.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "all":
		return PolicyAll, nil
	case "leftmost-longest":
		return PolicyLeftmostLongest, nil
	default:
		return 0, fmt.Errorf("%w: unknown overlap policy %q", internalerr.ErrInvalidInput, s)
	}
}

// Config controls scanning behavior.
type Config struct {
	Policy         Policy
	BoundaryFilter bool // keep only matches delimited by separator characters
	MaxTextLen     int  // 0 means unlimited
}

// DefaultConfig returns the documented defaults: all raw matches, boundary
// filtering on, no length cap.
func DefaultConfig() Config {
	return Config{Policy: PolicyAll, BoundaryFilter: true}
}

// Scanner binds a built automaton to its dictionary. Safe for concurrent use:
// a scan touches no mutable state.
type Scanner struct {
	auto    *automaton.Automaton
	entries []dictionary.Entry
	cfg     Config
}

// NewScanner builds the automaton over all dictionary surface forms.
// Build time is linear in the total length of the surface forms.
func NewScanner(d *dictionary.Dictionary, cfg Config) *Scanner {
	entries := d.Entries()
	patterns := make([]string, len(entries))
	for i, e := range entries {
		patterns[i] = e.Surface
	}
	return &Scanner{
		auto:    automaton.Build(patterns),
		entries: entries,
		cfg:     cfg,
	}
}

// Scan extracts all entity mentions from text per the configured policy.
// A text that matches nothing returns an empty result and no error; only
// malformed input (invalid UTF-8, over the length cap) fails.
func (s *Scanner) Scan(text string) ([]Match, error) {
	if s.cfg.MaxTextLen > 0 && len(text) > s.cfg.MaxTextLen {
		return nil, fmt.Errorf("%w: text length %d exceeds cap %d", internalerr.ErrScan, len(text), s.cfg.MaxTextLen)
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8", internalerr.ErrScan)
	}

	m := normalize.Text(text)

	var matches []Match
	s.auto.Scan(m.Norm, func(end, pattern int) {
		start := end - s.auto.PatternLen(pattern)
		if s.cfg.BoundaryFilter && !boundaryOK(m.Norm, start, end) {
			return
		}
		srcStart := m.Start(start)
		srcEnd := m.End(end)
		matches = append(matches, Match{
			Start:   srcStart,
			End:     srcEnd,
			Surface: text[srcStart:srcEnd],
			Entity:  s.entries[pattern].Entity,
		})
	})

	sortMatches(matches)
	if s.cfg.Policy == PolicyLeftmostLongest {
		matches = dropContained(matches)
	}
	return matches, nil
}

// stopChars are the separator characters accepted on either side of a match
// when boundary filtering is on.
var stopChars = [256]bool{
	' ': true, ',': true, '.': true, '\n': true, '\t': true,
	'<': true, '>': true, '(': true, ')': true, '/': true,
}

// boundaryOK reports whether the normalized span [start,end) sits between
// separators. A ':' is additionally accepted after a match (common in labeled
// text such as "asthma: chronic"), while '>' and '(' are not, and '<' and ')'
// are rejected before a match, so markup fragments and citation parentheses do
// not produce spurious boundaries.
func boundaryOK(norm string, start, end int) bool {
	if end < len(norm) {
		next := norm[end]
		if next == '>' || next == '(' {
			return false
		}
		if !stopChars[next] && next != ':' {
			return false
		}
	}
	if start > 0 {
		prev := norm[start-1]
		if prev == '<' || prev == ')' {
			return false
		}
		if !stopChars[prev] {
			return false
		}
	}
	return true
}

// Merge combines match lists produced by different taggers over the same text,
// applying the given overlap policy to the union. Exact-span duplicates are
// always retained, so a span recognized by both a disease and a chemical
// dictionary keeps both entities.
func Merge(policy Policy, lists ...[]Match) []Match {
	var all []Match
	for _, l := range lists {
		all = append(all, l...)
	}
	sortMatches(all)
	if policy == PolicyLeftmostLongest {
		all = dropContained(all)
	}
	return all
}

// sortMatches orders by start ascending, then longer spans first.
func sortMatches(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Start != ms[j].Start {
			return ms[i].Start < ms[j].Start
		}
		return ms[i].End > ms[j].End
	})
}

// dropContained removes every match strictly contained in an already kept
// match. Input must be sorted by sortMatches.
func dropContained(ms []Match) []Match {
	kept := ms[:0]
	for _, c := range ms {
		contained := false
		for _, k := range kept {
			if k.Start <= c.Start && c.End <= k.End && !(k.Start == c.Start && k.End == c.End) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, c)
		}
	}
	return kept
}
