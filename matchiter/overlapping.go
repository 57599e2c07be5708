package matchiter

import (
	"github.com/matchkit/matchkit/dfa/dense"
	"github.com/matchkit/matchkit/primitive"
)

// Overlapping walks every match a multi-pattern dense DFA finds over a
// fixed haystack, without committing to leftmost-first priority: unlike
// NonOverlapping, which skips past each match's end, Overlapping never
// skips — it reports every pattern live at every match state the DFA's
// scan passes through, so two patterns matching the same span, or one
// pattern's match contained inside another's, are both reported (spec.md
// §4.8, find_overlapping_iter). Because a forward DFA only resolves match
// ends (primitive.HalfMatch), Overlapping yields half-matches, not full
// nfa.MatchWithCaptures values — finding each match's start is left to the
// caller (e.g. via a per-pattern reverse scan) if it's needed.
type Overlapping struct {
	dfa   *dense.DFA
	in    *primitive.Input
	state dense.OverlappingState
}

// NewOverlapping returns an iterator over every match the dfa can find in
// in's span.
func NewOverlapping(d *dense.DFA, in *primitive.Input) *Overlapping {
	return &Overlapping{dfa: d, in: in}
}

// Next returns the next (pattern, end offset) pair, or ok=false once the
// scan is exhausted.
func (it *Overlapping) Next() (pattern primitive.PatternID, offset int, ok bool) {
	return it.dfa.FindOverlapping(it.in, &it.state)
}

// WhichOverlapping runs a full overlapping scan over in, inserting every
// pattern ID that matches anywhere in the span into patterns (spec.md §6,
// which_overlapping). patterns is cleared first so repeated calls reuse
// one allocation across searches.
func WhichOverlapping(d *dense.DFA, in *primitive.Input, patterns *primitive.PatternSet) {
	patterns.Clear()
	it := NewOverlapping(d, in)
	for {
		pid, _, ok := it.Next()
		if !ok {
			return
		}
		patterns.Insert(pid)
	}
}
