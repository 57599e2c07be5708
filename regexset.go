package matchkit

import (
	"errors"

	"github.com/matchkit/matchkit/meta"
	"github.com/matchkit/matchkit/nfa"
	"github.com/matchkit/matchkit/primitive"
)

// RegexSet holds several patterns compiled together, so searches can report
// every pattern that matches rather than just the highest-priority one
// (spec.md §6, which_overlapping). A plain Regex only ever sees one pattern
// live at a time; RegexSet exists because which_overlapping is meaningful
// only across more than one.
type RegexSet struct {
	patterns []string
	engine   *meta.Engine
}

// CompileSet compiles patterns together into a RegexSet. Syntax is the same
// Perl-compatible dialect Compile accepts.
func CompileSet(patterns []string) (*RegexSet, error) {
	if len(patterns) == 0 {
		return nil, errors.New("regexp: CompileSet requires at least one pattern")
	}
	engine, err := meta.CompileMany(patterns, meta.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return &RegexSet{patterns: patterns, engine: engine}, nil
}

// Len returns the number of patterns in the set.
func (rs *RegexSet) Len() int { return len(rs.patterns) }

// Pattern returns the source text of the i-th pattern.
func (rs *RegexSet) Pattern(i int) string { return rs.patterns[i] }

// WhichOverlapping reports every pattern ID that matches anywhere in b
// (spec.md §6, which_overlapping). The returned PatternSet is sized for
// rs.Len() patterns.
func (rs *RegexSet) WhichOverlapping(b []byte) *primitive.PatternSet {
	out := primitive.NewPatternSet(rs.Len())
	in := primitive.NewInput(b)
	rs.engine.WhichOverlapping(in, out)
	return out
}

// Matches is WhichOverlapping with the result flattened to a bool per
// pattern, indexed the same as the patterns slice passed to CompileSet —
// the shape Go's own regexp/syntax-adjacent Set APIs (and the teacher's
// stdlib-mirroring convenience methods on Regex) favor over a bitset.
func (rs *RegexSet) Matches(b []byte) []bool {
	set := rs.WhichOverlapping(b)
	out := make([]bool, rs.Len())
	for i := range out {
		out[i] = set.Contains(primitive.PatternID(i))
	}
	return out
}

// OverlappingEnds iterates every (pattern, end offset) pair the set's
// patterns match in b, without collapsing to non-overlapping matches
// (spec.md §4.8, find_overlapping_iter). Each call to Next advances the
// scan; ok is false once the haystack is exhausted.
func (rs *RegexSet) OverlappingEnds(b []byte) func() (pattern int, end int, ok bool) {
	in := primitive.NewInput(b)
	it := rs.engine.Overlapping(in)
	return func() (int, int, bool) {
		if it == nil {
			return 0, 0, false
		}
		pid, offset, ok := it.Next()
		return int(pid), offset, ok
	}
}

// IsMatch reports whether any pattern in the set matches b.
func (rs *RegexSet) IsMatch(b []byte) bool {
	return rs.engine.IsMatch(primitive.NewInput(b))
}

// NFA exposes the underlying compiled multi-pattern automaton, mirroring
// Regex's n field for callers that need direct access to pattern/group
// metadata (nfa.NFA.PatternCount, nfa.NFA.Group).
func (rs *RegexSet) NFA() *nfa.NFA { return rs.engine.NFA() }
