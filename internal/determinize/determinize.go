// Package determinize holds the subset-construction machinery shared by
// dfa/dense and dfa/lazy: turning a set of NFA states into one DFA state,
// and stepping that DFA state on an input byte to reach the next one
// (spec.md §4.2, "Determinization").
//
// Look-around assertions split into two cases. StartText and StartLine
// depend only on the byte already consumed, so EpsilonClosure resolves them
// immediately using the state's "before" byte. EndText, EndLine and the
// word-boundary variants also need the byte about to be consumed, which
// isn't known until Step is called with it — so EpsilonClosure instead
// leaves those Look states as unexpanded members of the set, and Step
// resolves them first (folding in whatever they unlock) before taking the
// byte-consuming transitions. This generalizes the teacher's
// dfa/lazy/builder.go word-boundary deferral (there specific to \b/\B) to
// every after-dependent assertion.
package determinize

import (
	"sort"

	"github.com/matchkit/matchkit/nfa"
	"github.com/matchkit/matchkit/primitive"
)

// StateSet is a deduplicated, insertion-ordered set of NFA state IDs: the
// raw material for one DFA state's identity.
type StateSet struct {
	ids  []nfa.StateID
	seen map[nfa.StateID]struct{}
}

// NewStateSet returns an empty set.
func NewStateSet() *StateSet {
	return &StateSet{seen: make(map[nfa.StateID]struct{})}
}

// Add inserts id if not already present, reporting whether it was new.
func (s *StateSet) Add(id nfa.StateID) bool {
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Reset empties the set for reuse.
func (s *StateSet) Reset() {
	s.ids = s.ids[:0]
	for k := range s.seen {
		delete(s.seen, k)
	}
}

// IDs returns the set's members in discovery order. The caller must not
// retain the slice across a subsequent Reset/Add.
func (s *StateSet) IDs() []nfa.StateID { return s.ids }

func (s *StateSet) Len() int { return len(s.ids) }

// Clone returns an independent copy.
func (s *StateSet) Clone() *StateSet {
	out := NewStateSet()
	for _, id := range s.ids {
		out.Add(id)
	}
	return out
}

// Key returns a canonical identity for the set: two sets with the same
// members (in any discovery order) produce the same key, combined with an
// isFromWord-style "before" tag where the caller needs it (dfa/lazy tags
// its StateKey with the word-boundary context separately; determinize only
// canonicalizes the NFA-state membership).
func (s *StateSet) Key() string {
	if len(s.ids) == 0 {
		return ""
	}
	sorted := make([]nfa.StateID, len(s.ids))
	copy(sorted, s.ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	buf := make([]byte, 0, len(sorted)*5)
	for _, id := range sorted {
		buf = append(buf, byte(id), byte(id>>8), byte(id>>16), byte(id>>24), ',')
	}
	return string(buf)
}

// EpsilonClosure expands seeds through Union/BinaryUnion/Capture and any
// Look assertion resolvable from before alone, depositing every terminal
// member (ByteRange, Sparse, Match, Fail, and any after-dependent Look left
// pending) into out. before is the byte already consumed to reach this
// state (-1 at the true start of the haystack).
func EpsilonClosure(n *nfa.NFA, seeds []nfa.StateID, before int, out *StateSet) {
	visited := make(map[nfa.StateID]struct{}, 16)
	for _, seed := range seeds {
		closeOne(n, seed, before, out, visited)
	}
}

// closeOne recurses depth-first in priority order (first alternative
// first), matching nfa.PikeVM.addThread's traversal exactly so the DFA and
// the NFA-based engines agree on which pattern wins a simultaneous match.
func closeOne(n *nfa.NFA, id nfa.StateID, before int, out *StateSet, visited map[nfa.StateID]struct{}) {
	if id == nfa.InvalidState {
		return
	}
	if _, ok := visited[id]; ok {
		return
	}
	visited[id] = struct{}{}

	st := n.State(id)
	if st == nil {
		return
	}
	switch st.Kind() {
	case nfa.KindUnion:
		for _, alt := range st.Union() {
			closeOne(n, alt, before, out, visited)
		}
	case nfa.KindBinaryUnion:
		alt1, alt2 := st.BinaryUnion()
		closeOne(n, alt1, before, out, visited)
		closeOne(n, alt2, before, out, visited)
	case nfa.KindCapture:
		next, _ := st.CaptureInfo()
		closeOne(n, next, before, out, visited)
	case nfa.KindLook:
		look, next := st.LookInfo()
		if !look.DependsOnAfter() {
			if look.Satisfied(before, 0) {
				closeOne(n, next, before, out, visited)
			}
			return
		}
		// after-dependent: stays a pending leaf, resolved by Step.
		out.Add(id)
	default: // ByteRange, Sparse, Match, Fail: terminal
		out.Add(id)
	}
}

// resolvePending expands any after-dependent Look member of states now that
// the upcoming byte is known, folding in whatever they unlock (which may
// itself require further epsilon expansion).
func resolvePending(n *nfa.NFA, states *StateSet, before, after int) {
	for i := 0; i < len(states.ids); i++ {
		st := n.State(states.ids[i])
		if st == nil || st.Kind() != nfa.KindLook {
			continue
		}
		look, next := st.LookInfo()
		if !look.DependsOnAfter() || !look.Satisfied(before, after) {
			continue
		}
		EpsilonClosure(n, []nfa.StateID{next}, before, states)
	}
}

// Step consumes one byte from states (the closure of the previous DFA
// state, reached having last consumed the byte "before") and writes the
// closure of the resulting set into out, tagged with "input" as its own
// before byte. It returns nothing; callers inspect out with MatchPattern or
// MatchPatterns.
func Step(n *nfa.NFA, states *StateSet, before int, input int, out *StateSet) {
	resolvePending(n, states, before, input)

	var targets []nfa.StateID
	for _, id := range states.ids {
		st := n.State(id)
		if st == nil {
			continue
		}
		switch st.Kind() {
		case nfa.KindByteRange:
			lo, hi, next := st.ByteRange()
			if input >= 0 && byte(input) >= lo && byte(input) <= hi {
				targets = append(targets, next)
			}
		case nfa.KindSparse:
			for _, tr := range st.Sparse() {
				if input >= 0 && byte(input) >= tr.Lo && byte(input) <= tr.Hi {
					targets = append(targets, tr.Next)
					break
				}
			}
		}
	}

	EpsilonClosure(n, targets, input, out)
}

// MatchPattern reports the first (highest-priority) pattern some member of
// states matches, and whether any member matches at all.
func MatchPattern(n *nfa.NFA, states *StateSet) (pattern primitive.PatternID, ok bool) {
	for _, id := range states.ids {
		st := n.State(id)
		if st != nil && st.Kind() == nfa.KindMatch {
			return st.MatchPattern(), true
		}
	}
	return 0, false
}

// MatchPatterns reports every distinct pattern some member of states
// matches, in ascending pattern-ID order. Unlike MatchPattern (which stops
// at the first, highest-priority match for leftmost-first search),
// overlapping search needs every pattern live at this state at once
// (spec.md §4.8, which_overlapping).
func MatchPatterns(n *nfa.NFA, states *StateSet) []primitive.PatternID {
	var out []primitive.PatternID
	seen := make(map[primitive.PatternID]struct{})
	for _, id := range states.ids {
		st := n.State(id)
		if st == nil || st.Kind() != nfa.KindMatch {
			continue
		}
		pid := st.MatchPattern()
		if _, ok := seen[pid]; ok {
			continue
		}
		seen[pid] = struct{}{}
		out = append(out, pid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
