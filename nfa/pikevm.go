package nfa

import (
	"github.com/matchkit/matchkit/internal/sparse"
	"github.com/matchkit/matchkit/primitive"
)

// PikeVM runs Pike's thread-list simulation of an NFA: every reachable
// configuration is tracked in priority order each step, so the search
// reports the same leftmost-first match an unbounded backtracker would,
// in time linear in haystack length (spec.md §5, "PikeVM").
//
// Adapted from the teacher's nfa/pikevm.go, generalized in two ways: (1)
// unanchored search no longer injects a new thread at every position,
// because the compiled NFA already carries a shared `.*?` prefix into a
// priority union of pattern starts (nfa/multi.go) — one run of the VM from
// NFA.StartUnanchored() already does it; (2) threads now carry no
// explicit startPos, since the implicit start-capture slot (2*pid) records
// where each pattern's attempt began.
type PikeVM struct {
	nfa *NFA

	clist, nlist threadList
	visited      *sparse.SparseSet
}

type threadList struct {
	threads []thread
}

func (l *threadList) clear() { l.threads = l.threads[:0] }

type thread struct {
	state    StateID
	captures cowCaptures
}

// cowCaptures implements copy-on-write capture slots, unchanged in
// approach from the teacher: many threads share one backing array until a
// capture write forces a branch to copy.
type cowCaptures struct {
	shared *sharedCaptures
}

type sharedCaptures struct {
	data []int
	refs int
}

func (c cowCaptures) clone() cowCaptures {
	if c.shared == nil {
		return cowCaptures{}
	}
	c.shared.refs++
	return cowCaptures{shared: c.shared}
}

func (c cowCaptures) update(slot int, value int) cowCaptures {
	if c.shared == nil || slot < 0 || slot >= len(c.shared.data) {
		return c
	}
	if c.shared.refs > 1 {
		c.shared.refs--
		data := make([]int, len(c.shared.data))
		copy(data, c.shared.data)
		data[slot] = value
		return cowCaptures{shared: &sharedCaptures{data: data, refs: 1}}
	}
	c.shared.data[slot] = value
	return c
}

func (c cowCaptures) copyData() []int {
	if c.shared == nil {
		return nil
	}
	dst := make([]int, len(c.shared.data))
	copy(dst, c.shared.data)
	return dst
}

// MatchWithCaptures is one match with full capture-group positions.
// Captures[g] is [start, end] for group g (0 = whole match), or nil if
// that group did not participate.
type MatchWithCaptures struct {
	Pattern  primitive.PatternID
	Start    int
	End      int
	Captures [][]int
}

// NewPikeVM returns a PikeVM ready to search with nfa.
func NewPikeVM(nfa *NFA) *PikeVM {
	capacity := nfa.NumStates()
	if capacity < 16 {
		capacity = 16
	}
	return &PikeVM{
		nfa:     nfa,
		visited: sparse.NewSparseSet(uint32(capacity)),
	}
}

func (p *PikeVM) newCaptures() cowCaptures {
	n := p.nfa.TotalSlots()
	if n == 0 {
		return cowCaptures{}
	}
	data := make([]int, n)
	for i := range data {
		data[i] = -1
	}
	return cowCaptures{shared: &sharedCaptures{data: data, refs: 1}}
}

// Search runs an unanchored search for any of the NFA's patterns, starting
// no earlier than in.Span().Start.
func (p *PikeVM) Search(in *primitive.Input) *MatchWithCaptures {
	start := p.startState(in)
	return p.run(in, start)
}

func (p *PikeVM) startState(in *primitive.Input) StateID {
	switch in.Anchored() {
	case primitive.AnchoredYes:
		return p.nfa.StartAnchored()
	case primitive.AnchoredPattern:
		return p.nfa.StartForPattern(in.PatternID())
	default:
		return p.nfa.StartUnanchored()
	}
}

// run executes the thread-list simulation from start over in's span,
// returning the leftmost-first match (spec.md §3) or nil.
func (p *PikeVM) run(in *primitive.Input, start StateID) *MatchWithCaptures {
	haystack := in.Haystack()
	span := in.Span()

	p.clist.clear()
	p.nlist.clear()
	p.visited.Clear()

	p.addThread(&p.clist, start, p.newCaptures(), span.Start, haystack)

	longest := in.Longest()
	var bestPID primitive.PatternID
	var bestCaps []int
	matched := false

	for at := span.Start; ; at++ {
		if len(p.clist.threads) == 0 {
			break
		}

		var curByte int = -1
		if at < span.End {
			curByte = int(haystack[at])
		}

		p.nlist.clear()
		p.visited.Clear()

		cut := false
		for _, t := range p.clist.threads {
			s := p.nfa.State(t.state)
			if s == nil {
				continue
			}
			switch s.Kind() {
			case KindMatch:
				pid := s.MatchPattern()
				caps := closeWholeMatch(t.captures, pid, at).copyData()
				if longest && matched && (caps[2*int(pid)] > bestCaps[2*int(bestPID)] ||
					(caps[2*int(pid)] == bestCaps[2*int(bestPID)] && at <= bestCaps[2*int(bestPID)+1])) {
					// a later-starting, or no-longer-extending, match never
					// beats what leftmost-longest already holds
					break
				}
				bestPID = pid
				bestCaps = caps
				matched = true
				cut = !longest
			case KindByteRange:
				lo, hi, next := s.ByteRange()
				if curByte >= 0 && byte(curByte) >= lo && byte(curByte) <= hi {
					p.addThread(&p.nlist, next, t.captures, at+1, haystack)
				}
			case KindSparse:
				for _, tr := range s.Sparse() {
					if curByte >= 0 && byte(curByte) >= tr.Lo && byte(curByte) <= tr.Hi {
						p.addThread(&p.nlist, tr.Next, t.captures, at+1, haystack)
						break
					}
				}
			}
			if cut {
				break
			}
		}

		if matched && in.Earliest() {
			break
		}

		p.clist, p.nlist = p.nlist, p.clist
		if at >= span.End {
			break
		}
	}

	if !matched {
		return nil
	}
	return &MatchWithCaptures{
		Pattern:  bestPID,
		Start:    bestCaps[2*int(bestPID)],
		End:      bestCaps[2*int(bestPID)+1],
		Captures: p.buildCapturesResult(bestPID, bestCaps),
	}
}

// closeWholeMatch fills the implicit end slot (2*pid+1) at the moment a
// thread lands on Match(pid); the open slot was already filled by the
// Capture(2*pid) state nfa/multi.go wraps every pattern's entry with.
func closeWholeMatch(caps cowCaptures, pid primitive.PatternID, at int) cowCaptures {
	return caps.update(2*int(pid)+1, at)
}

func (p *PikeVM) buildCapturesResult(pid primitive.PatternID, caps []int) [][]int {
	gi := p.nfa.Group(pid)
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

// addThread expands the epsilon-closure of state into list, deduping via
// p.visited so no NFA state is processed twice within one generation
// (spec.md §5, "a visited set bounds each step to O(states)").
func (p *PikeVM) addThread(list *threadList, state StateID, caps cowCaptures, at int, haystack []byte) {
	if state == InvalidState || p.visited.Contains(uint32(state)) {
		return
	}
	p.visited.Insert(uint32(state))

	s := p.nfa.State(state)
	if s == nil {
		return
	}

	switch s.Kind() {
	case KindUnion:
		for _, alt := range s.Union() {
			p.addThread(list, alt, caps.clone(), at, haystack)
		}
	case KindBinaryUnion:
		alt1, alt2 := s.BinaryUnion()
		p.addThread(list, alt1, caps.clone(), at, haystack)
		p.addThread(list, alt2, caps.clone(), at, haystack)
	case KindCapture:
		next, slot := s.CaptureInfo()
		p.addThread(list, next, caps.update(int(slot), at), at, haystack)
	case KindLook:
		look, next := s.LookInfo()
		before, after := lookContext(haystack, at)
		if look.satisfied(before, after) {
			p.addThread(list, next, caps, at, haystack)
		}
	case KindFail:
		// dead end
	default: // ByteRange, Sparse, Match: consuming or terminal, stop here
		list.threads = append(list.threads, thread{state: state, captures: caps})
	}
}

func lookContext(haystack []byte, at int) (before, after int) {
	before, after = -1, -1
	if at > 0 {
		before = int(haystack[at-1])
	}
	if at < len(haystack) {
		after = int(haystack[at])
	}
	return before, after
}

// IsMatch reports only whether any pattern matches, without computing
// capture positions (spec.md §6, "is_match").
func (p *PikeVM) IsMatch(in *primitive.Input) bool {
	return p.Search(in) != nil
}
