package meta

import (
	"github.com/matchkit/matchkit/dfa/dense"
	"github.com/matchkit/matchkit/nfa"
	"github.com/matchkit/matchkit/primitive"
)

// reverseAnchored accepts/rejects an end-anchored pattern ($ / \z, not also
// ^-anchored) in O(haystack length) by scanning backward from the end of
// the span through a dense DFA built over nfa.Reverse(n, 0), instead of
// running the PikeVM forward from every candidate start (spec.md §4.7,
// UseReverseAnchored). It is a pure fast-path: on acceptance the caller
// still runs the PikeVM to resolve the actual match and its captures.
type reverseAnchored struct {
	dfa *dense.DFA
}

func buildReverseAnchored(n *nfa.NFA) *reverseAnchored {
	rev := nfa.Reverse(n, 0)
	d, err := dense.Compile(rev)
	if err != nil {
		return nil
	}
	return &reverseAnchored{dfa: d}
}

// accepts reports whether the reverse DFA finds a match scanning backward
// from span.End to span.Start — equivalent to asking whether the forward,
// end-anchored pattern could match ending at span.End.
func (r *reverseAnchored) accepts(in *primitive.Input) bool {
	haystack := in.Haystack()
	span := in.Span()

	state := r.dfa.StartState(primitive.NewInput(nil))
	if r.dfa.IsMatch(state) {
		return true
	}
	for at := span.End - 1; at >= span.Start; at-- {
		state = r.dfa.NextState(state, haystack[at])
		if r.dfa.IsMatch(state) {
			return true
		}
		if r.dfa.IsDead(state) {
			return false
		}
	}
	return false
}
