// Package dense implements a fully-built, table-driven deterministic
// automaton via subset construction over an *nfa.NFA (spec.md §4.2, "Dense
// DFA"). Every reachable (NFA state set, word-context) pair is explored
// eagerly at Compile time and laid out as one row of StateID per DFA state,
// indexed by byte class — the classic "big flat transition table" tier that
// dfa/lazy builds lazily and dfa/sparse re-encodes for smaller footprint.
//
// Grounded in the teacher's dfa/lazy/builder.go determinization algorithm
// (word-boundary-aware subset construction), generalized by
// internal/determinize to every after-dependent look-around assertion, and
// specialized here to build the whole table up front instead of caching
// states on demand.
package dense

import (
	"github.com/matchkit/matchkit/internal/determinize"
	"github.com/matchkit/matchkit/matcherr"
	"github.com/matchkit/matchkit/nfa"
	"github.com/matchkit/matchkit/primitive"
)

// StateID indexes a row of DFA.transitions. It is a distinct space from
// nfa.StateID: a dense.StateID addresses a *set* of NFA states.
type StateID = primitive.StateID

// DeadStateID is always 0 (spec.md §3, "special-state shuffling"): every
// dense DFA reserves its first row as the universal failure state, so
// IsDead is a single comparison.
const DeadStateID StateID = 0

// MaxStates bounds subset construction: patterns whose NFA state-set space
// blows up past this are rejected with matcherr.TooManyStatesError rather
// than exhausting memory.
const MaxStates = 1 << 20

// DFA is a complete dense transition table plus per-state match info.
type DFA struct {
	classes     nfa.ByteClasses
	stride      int
	numStates   int
	transitions []StateID // numStates*stride, row s = transitions[s*stride : s*stride+stride]

	isMatch      []bool
	matchPattern []primitive.PatternID
	matchPatterns [][]primitive.PatternID // all patterns live at this state, ascending order

	startUnanchored StateID
	startAnchored   StateID
	startByPattern  []StateID
}

type stateKey struct {
	set      string
	fromWord bool
}

type pendingState struct {
	set      *determinize.StateSet
	fromWord bool
}

// Compile runs eager subset construction over n, producing a fully built
// dense DFA. Returns a *matcherr.TooManyStatesError if the state-set space
// exceeds MaxStates.
func Compile(n *nfa.NFA) (*DFA, error) {
	classes := *n.ByteClasses()
	stride := classes.Stride()
	reps := classes.Representatives()
	eoiClass := classes.Len() // reserved column for end-of-input

	ids := make(map[stateKey]StateID)
	var pending []pendingState
	var transitions []StateID
	var isMatchArr []bool
	var matchPat []primitive.PatternID
	var matchPats [][]primitive.PatternID

	newRow := func() {
		transitions = append(transitions, make([]StateID, stride)...)
		isMatchArr = append(isMatchArr, false)
		matchPat = append(matchPat, 0)
		matchPats = append(matchPats, nil)
	}

	// Reserve the dead state: every column loops back to itself, never a
	// match.
	newRow()
	for c := 0; c <= eoiClass; c++ {
		transitions[c] = DeadStateID
	}
	pending = append(pending, pendingState{set: determinize.NewStateSet(), fromWord: false})

	overflow := false
	getOrAdd := func(set *determinize.StateSet, fromWord bool) StateID {
		if set.Len() == 0 {
			return DeadStateID
		}
		k := stateKey{set.Key(), fromWord}
		if id, ok := ids[k]; ok {
			return id
		}
		id := StateID(len(pending))
		if int(id) >= MaxStates {
			overflow = true
			return DeadStateID
		}
		ids[k] = id
		pending = append(pending, pendingState{set: set, fromWord: fromWord})
		newRow()
		pat, ok := determinize.MatchPattern(n, set)
		if ok {
			isMatchArr[id] = true
			matchPat[id] = pat
		}
		matchPats[id] = determinize.MatchPatterns(n, set)
		return id
	}

	buildStart := func(seed nfa.StateID) StateID {
		set := determinize.NewStateSet()
		determinize.EpsilonClosure(n, []nfa.StateID{seed}, -1, set)
		return getOrAdd(set, false)
	}

	startUnanchored := buildStart(n.StartUnanchored())
	startAnchored := buildStart(n.StartAnchored())
	startByPattern := make([]StateID, n.PatternCount())
	for pid := 0; pid < n.PatternCount(); pid++ {
		startByPattern[pid] = buildStart(n.StartForPattern(primitive.PatternID(pid)))
	}

	for i := 0; i < len(pending); i++ {
		if overflow {
			return nil, &matcherr.TooManyStatesError{Limit: MaxStates, Got: uint64(len(pending)) + 1}
		}
		cur := pending[i]
		base := int(StateID(i)) * stride
		beforeRepr := -1
		if cur.fromWord {
			beforeRepr = 'a'
		}

		for _, b := range reps {
			class := classes.Get(b)
			next := determinize.NewStateSet()
			determinize.Step(n, cur.set, beforeRepr, int(b), next)
			target := getOrAdd(next, isWordByte(b))
			// getOrAdd may have grown transitions (reallocating); index
			// through the current slice rather than a stale sub-slice.
			transitions[base+int(class)] = target
		}
		// EOI column: step with input=-1 (end of haystack).
		next := determinize.NewStateSet()
		determinize.Step(n, cur.set, beforeRepr, -1, next)
		transitions[base+eoiClass] = getOrAdd(next, false)
	}
	if overflow {
		return nil, &matcherr.TooManyStatesError{Limit: MaxStates, Got: uint64(len(pending)) + 1}
	}

	return &DFA{
		classes:         classes,
		stride:          stride,
		numStates:       len(pending),
		transitions:     transitions,
		isMatch:         isMatchArr,
		matchPattern:    matchPat,
		matchPatterns:   matchPats,
		startUnanchored: startUnanchored,
		startAnchored:   startAnchored,
		startByPattern:  startByPattern,
	}, nil
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

// NumStates returns the number of rows in the table.
func (d *DFA) NumStates() int { return d.numStates }

// StartUnanchoredID returns the raw unanchored start row, for callers (like
// dfa/sparse) re-deriving their own start-state bookkeeping.
func (d *DFA) StartUnanchoredID() StateID { return d.startUnanchored }

// StartAnchoredID returns the raw anchored start row.
func (d *DFA) StartAnchoredID() StateID { return d.startAnchored }

// StartByPatternIDs returns the per-pattern anchored start rows.
func (d *DFA) StartByPatternIDs() []StateID { return d.startByPattern }

// IsDead reports whether id is the universal failure state.
func (d *DFA) IsDead(id StateID) bool { return id == DeadStateID }

// IsMatch reports whether id is a match state.
func (d *DFA) IsMatch(id StateID) bool { return d.isMatch[id] }

// MatchPattern returns the highest-priority pattern a match state accepts.
func (d *DFA) MatchPattern(id StateID) primitive.PatternID { return d.matchPattern[id] }

// MatchPatterns returns every pattern live at a match state, ascending by
// ID. Used by overlapping search (spec.md §4.8), where leftmost-first
// priority doesn't apply and every simultaneously-matching pattern must be
// reported.
func (d *DFA) MatchPatterns(id StateID) []primitive.PatternID { return d.matchPatterns[id] }

func (d *DFA) eoiClass() byte { return byte(d.classes.Len()) }

// NextState steps from id on byte b.
func (d *DFA) NextState(id StateID, b byte) StateID {
	class := d.classes.Get(b)
	return d.transitions[int(id)*d.stride+int(class)]
}

// NextEOI steps from id on the end-of-input sentinel.
func (d *DFA) NextEOI(id StateID) StateID {
	return d.transitions[int(id)*d.stride+int(d.eoiClass())]
}

// StartState returns the start row for in's anchor mode (spec.md §4.7's
// engines all share this selection rule via primitive.Input.Anchored).
func (d *DFA) StartState(in *primitive.Input) StateID {
	switch in.Anchored() {
	case primitive.AnchoredYes:
		return d.startAnchored
	case primitive.AnchoredPattern:
		pid := int(in.PatternID())
		if pid < len(d.startByPattern) {
			return d.startByPattern[pid]
		}
		return DeadStateID
	default:
		return d.startUnanchored
	}
}

// Find runs a forward scan from in's start state and returns the end of the
// leftmost match (and which pattern), or ok=false. Because the NFA's
// unanchored start already folds in a priority union of pattern starts
// (nfa.PikeVM's doc comment), one forward pass suffices — no per-position
// restart is needed.
func (d *DFA) Find(in *primitive.Input) (half primitive.HalfMatch, ok bool) {
	haystack := in.Haystack()
	span := in.Span()

	state := d.StartState(in)
	if d.IsMatch(state) {
		half = primitive.HalfMatch{Pattern: d.MatchPattern(state), Offset: span.Start}
		ok = true
	}

	at := span.Start
	for ; at < span.End; at++ {
		state = d.NextState(state, haystack[at])
		if d.IsMatch(state) {
			half = primitive.HalfMatch{Pattern: d.MatchPattern(state), Offset: at + 1}
			ok = true
		}
		if d.IsDead(state) {
			return half, ok
		}
		if ok && in.Earliest() {
			return half, ok
		}
	}

	final := d.NextEOI(state)
	if d.IsMatch(final) {
		half = primitive.HalfMatch{Pattern: d.MatchPattern(final), Offset: span.End}
		ok = true
	}
	return half, ok
}

// OverlappingState carries an in-progress overlapping search across
// repeated FindOverlapping calls: the current DFA state, the current
// offset, how many of that state's match patterns have already been
// yielded, and whether the end-of-input transition has been taken
// (spec.md §4.8, which_overlapping/find_overlapping_iter).
type OverlappingState struct {
	state    StateID
	at       int
	reported int
	started  bool
	atEOI    bool
	done     bool
}

// FindOverlapping resumes an overlapping scan from st (zero value starts a
// fresh one at in.Span().Start) and returns the next (pattern, offset)
// pair, or ok=false once every match in the span has been reported. Unlike
// Find, it never stops at the first match and never commits to one
// pattern: every match state the scan passes through is fully drained
// (all of MatchPatterns(state)) before the scan advances a byte, so
// simultaneously-matching patterns at the same offset are all reported
// before the offset changes.
func (d *DFA) FindOverlapping(in *primitive.Input, st *OverlappingState) (pattern primitive.PatternID, offset int, ok bool) {
	if st.done {
		return 0, 0, false
	}
	haystack := in.Haystack()
	span := in.Span()

	if !st.started {
		st.started = true
		st.state = d.StartState(in)
		st.at = span.Start
	}

	for {
		pats := d.MatchPatterns(st.state)
		if st.reported < len(pats) {
			p := pats[st.reported]
			st.reported++
			return p, st.at, true
		}
		if d.IsDead(st.state) {
			st.done = true
			return 0, 0, false
		}
		if st.at >= span.End {
			if st.atEOI {
				st.done = true
				return 0, 0, false
			}
			st.atEOI = true
			st.state = d.NextEOI(st.state)
			st.reported = 0
			continue
		}
		st.state = d.NextState(st.state, haystack[st.at])
		st.at++
		st.reported = 0
	}
}
