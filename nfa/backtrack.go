package nfa

import (
	"github.com/matchkit/matchkit/matcherr"
	"github.com/matchkit/matchkit/primitive"
)

// BoundedBacktracker is a recursive-descent regex matcher with exactly the
// same leftmost-first semantics as PikeVM, but implemented as literal
// backtracking instead of parallel thread simulation: faster in practice
// for small inputs because it avoids cowCaptures bookkeeping, but only
// used up to the DefaultVisitedBudget size bound, since naive backtracking
// can revisit the same (state, offset) pair exponentially often.
//
// Ground rule (spec.md §5, "bounded backtracker"): a visited bitset marks
// every (state, offset) pair explored; a revisit is pruned as a branch
// already known to fail. This caps total work at states x (1 + haystack
// length), matching PikeVM's asymptotic bound while keeping backtracking's
// simpler, allocation-light control flow. A search whose states x (1 + span
// length) exceeds DefaultVisitedBudget is refused up front with
// matcherr.HaystackTooLongError.
type BoundedBacktracker struct {
	nfa *NFA

	visited  []uint64 // bitset of size NumStates() * (maxSpanLen+1)
	spanLen  int
	captures []int
}

// DefaultVisitedBudget bounds states*(spanLen+1): above this, Search
// refuses rather than allocate an unreasonably large bitset.
const DefaultVisitedBudget = 10 * 1000 * 1000

// NewBoundedBacktracker returns a backtracker for nfa. The visited bitset
// is sized lazily per search, since haystack length varies per call.
func NewBoundedBacktracker(nfa *NFA) *BoundedBacktracker {
	return &BoundedBacktracker{nfa: nfa}
}

// Search runs a backtracking search over in's span. Returns nil if no
// match, or if the bound would be exceeded returns a matcherr.HaystackTooLongError.
func (bt *BoundedBacktracker) Search(in *primitive.Input) (*MatchWithCaptures, error) {
	span := in.Span()
	spanLen := span.End - span.Start
	cells := bt.nfa.NumStates() * (spanLen + 1)
	if cells > DefaultVisitedBudget {
		return nil, &matcherr.HaystackTooLongError{Len: spanLen}
	}

	bt.spanLen = spanLen
	words := (cells + 63) / 64
	if cap(bt.visited) < words {
		bt.visited = make([]uint64, words)
	} else {
		bt.visited = bt.visited[:words]
		for i := range bt.visited {
			bt.visited[i] = 0
		}
	}

	n := bt.nfa.TotalSlots()
	bt.captures = make([]int, n)
	for i := range bt.captures {
		bt.captures[i] = -1
	}

	start := bt.startState(in)
	haystack := in.Haystack()

	var foundPID primitive.PatternID
	ok := bt.run(start, span.Start, span.Start, haystack, &foundPID)
	if !ok {
		return nil, nil
	}

	caps := append([]int(nil), bt.captures...)
	return &MatchWithCaptures{
		Pattern:  foundPID,
		Start:    caps[2*int(foundPID)],
		End:      caps[2*int(foundPID)+1],
		Captures: bt.buildCapturesResult(foundPID, caps),
	}, nil
}

func (bt *BoundedBacktracker) startState(in *primitive.Input) StateID {
	switch in.Anchored() {
	case primitive.AnchoredYes:
		return bt.nfa.StartAnchored()
	case primitive.AnchoredPattern:
		return bt.nfa.StartForPattern(in.PatternID())
	default:
		return bt.nfa.StartUnanchored()
	}
}

func (bt *BoundedBacktracker) cellIndex(state StateID, pos, spanStart int) int {
	return int(state)*(bt.spanLen+1) + (pos - spanStart)
}

func (bt *BoundedBacktracker) markVisited(idx int) bool {
	word, bit := idx/64, uint(idx%64)
	if bt.visited[word]&(1<<bit) != 0 {
		return false
	}
	bt.visited[word] |= 1 << bit
	return true
}

// run attempts to reach a Match state from (state, pos), trying
// alternatives in priority order (spec.md §3) and undoing any capture
// writes it made before reporting failure upward.
func (bt *BoundedBacktracker) run(state StateID, pos int, spanStart int, haystack []byte, foundPID *primitive.PatternID) bool {
	if state == InvalidState {
		return false
	}
	idx := bt.cellIndex(state, pos, spanStart)
	if !bt.markVisited(idx) {
		return false
	}

	s := bt.nfa.State(state)
	if s == nil {
		return false
	}

	switch s.Kind() {
	case KindFail:
		return false

	case KindMatch:
		pid := s.MatchPattern()
		bt.captures[2*int(pid)+1] = pos
		*foundPID = pid
		return true

	case KindByteRange:
		lo, hi, next := s.ByteRange()
		if pos >= len(haystack) || haystack[pos] < lo || haystack[pos] > hi {
			return false
		}
		return bt.run(next, pos+1, spanStart, haystack, foundPID)

	case KindSparse:
		if pos >= len(haystack) {
			return false
		}
		b := haystack[pos]
		for _, tr := range s.Sparse() {
			if b >= tr.Lo && b <= tr.Hi {
				return bt.run(tr.Next, pos+1, spanStart, haystack, foundPID)
			}
		}
		return false

	case KindLook:
		look, next := s.LookInfo()
		before, after := lookContext(haystack, pos)
		if !look.satisfied(before, after) {
			return false
		}
		return bt.run(next, pos, spanStart, haystack, foundPID)

	case KindCapture:
		next, slot := s.CaptureInfo()
		old := bt.captures[slot]
		bt.captures[slot] = pos
		if bt.run(next, pos, spanStart, haystack, foundPID) {
			return true
		}
		bt.captures[slot] = old
		return false

	case KindBinaryUnion:
		alt1, alt2 := s.BinaryUnion()
		if bt.run(alt1, pos, spanStart, haystack, foundPID) {
			return true
		}
		return bt.run(alt2, pos, spanStart, haystack, foundPID)

	case KindUnion:
		for _, alt := range s.Union() {
			if bt.run(alt, pos, spanStart, haystack, foundPID) {
				return true
			}
		}
		return false

	default:
		return false
	}
}

func (bt *BoundedBacktracker) buildCapturesResult(pid primitive.PatternID, caps []int) [][]int {
	gi := bt.nfa.Group(pid)
	numGroups := 1
	if gi != nil {
		numGroups = 1 + (len(gi.Names) - 1)
	}
	out := make([][]int, numGroups)
	out[0] = []int{caps[2*int(pid)], caps[2*int(pid)+1]}
	if gi == nil {
		return out
	}
	for g := 1; g < numGroups; g++ {
		s, e := gi.SlotFor(g)
		if s < len(caps) && e < len(caps) && caps[s] >= 0 && caps[e] >= 0 {
			out[g] = []int{caps[s], caps[e]}
		}
	}
	return out
}
