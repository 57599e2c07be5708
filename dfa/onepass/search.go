package onepass

import (
	"github.com/matchkit/matchkit/nfa"
	"github.com/matchkit/matchkit/primitive"
)

// IsOnePass reports whether d compiled successfully — present for symmetry
// with the meta engine's "try, fall back on error" dispatch (spec.md §4.7);
// a non-nil *DFA from Compile is always usable.
func (d *DFA) IsOnePass() bool { return true }

// Search runs the one-pass scan, resolving every capture slot directly
// from the cells it crosses — no NFA rescan needed (spec.md §4.5).
func (d *DFA) Search(in *primitive.Input) *nfa.MatchWithCaptures {
	haystack := in.Haystack()
	span := in.Span()

	totalSlots := d.n.TotalSlots()
	caps := make([]int, totalSlots)
	for i := range caps {
		caps[i] = -1
	}
	applySlots(caps, d.startSlots, span.Start)

	state := d.start
	var bestPattern primitive.PatternID
	var bestCaps []int
	matched := false

	checkMatch := func(pos int) {
		if int(state) >= len(d.matches) {
			return
		}
		mc := d.matches[state]
		pats := mc.Patterns()
		if pats == 0 {
			return
		}
		for p := 0; p < 32; p++ {
			if pats&(1<<uint(p)) == 0 {
				continue
			}
			bestPattern = primitive.PatternID(p)
			bestCaps = append([]int(nil), caps...)
			if 2*p+1 < len(bestCaps) {
				bestCaps[2*p+1] = pos
			}
			matched = true
			break
		}
	}

	checkMatch(span.Start)

	finish := func() *nfa.MatchWithCaptures {
		if !matched {
			return nil
		}
		return &nfa.MatchWithCaptures{
			Pattern:  bestPattern,
			Start:    bestCaps[2*int(bestPattern)],
			End:      bestCaps[2*int(bestPattern)+1],
			Captures: buildCaptures(bestPattern, bestCaps, d.n.Group(bestPattern)),
		}
	}

	at := span.Start
	for ; at < span.End; at++ {
		class := d.classes.Get(haystack[at])
		cell := d.cells[int(state)*d.stride+int(class)]
		if cell == deadCell {
			return finish()
		}
		applySlots(caps, cell.Slots(), at)
		state = StateID(cell.Next())

		checkMatch(at + 1)
		if matched && in.Earliest() {
			return finish()
		}
	}

	eoiCell := d.cells[int(state)*d.stride+d.eoiCls]
	if eoiCell != deadCell {
		applySlots(caps, eoiCell.Slots(), span.End)
		state = StateID(eoiCell.Next())
		checkMatch(span.End)
	}

	return finish()
}

func applySlots(caps []int, slots uint32, pos int) {
	for s := 0; s < MaxSlots; s++ {
		if slots&(1<<uint(s)) != 0 && s < len(caps) {
			caps[s] = pos
		}
	}
}

// IsMatch reports only whether the pattern matches.
func (d *DFA) IsMatch(in *primitive.Input) bool { return d.Search(in) != nil }

func buildCaptures(pid primitive.PatternID, caps []int, gi *nfa.GroupInfo) [][]int {
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
