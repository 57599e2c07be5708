// Package sparse derives a smaller, range-encoded transition table from an
// already-built dfa/dense.DFA (spec.md §4.2, "Sparse DFA"). Where the dense
// table stores one StateID per byte class per state, the sparse encoding
// stores a handful of (lo, hi, next) runs per state — cheaper to keep
// around for many compiled patterns at the cost of a linear scan per byte
// instead of one array index.
package sparse

import (
	"encoding/binary"
	"fmt"

	"github.com/matchkit/matchkit/dfa/dense"
	"github.com/matchkit/matchkit/primitive"
)

// Transition is one inclusive byte range and its target state.
type Transition struct {
	Lo, Hi byte
	Next   dense.StateID
}

// DFA is the sparse, range-encoded counterpart of a dense.DFA.
type DFA struct {
	rows         [][]Transition // rows[state] in ascending, non-overlapping Lo order
	eoiTarget    []dense.StateID
	isMatch      []bool
	matchPattern []primitive.PatternID

	startUnanchored dense.StateID
	startAnchored   dense.StateID
	startByPattern  []dense.StateID
}

// FromDense walks d's transition function for every byte and coalesces
// adjacent bytes sharing a target state into one run (the dense table
// itself is already indexed by byte class via ByteClasses.Get/Elements;
// this re-derives the equivalent ranges directly from the transition
// function so dfa/sparse has no dependency on nfa.ByteClasses' internals;
// spec.md §4.2, "sparse re-encoding of a dense table").
func FromDense(d *dense.DFA, startUnanchored, startAnchored dense.StateID, startByPattern []dense.StateID, numStates int, isMatch []bool, matchPattern []primitive.PatternID, nextState func(dense.StateID, byte) dense.StateID, nextEOI func(dense.StateID) dense.StateID) *DFA {
	rows := make([][]Transition, numStates)
	eoi := make([]dense.StateID, numStates)

	for s := 0; s < numStates; s++ {
		id := dense.StateID(s)
		eoi[s] = nextEOI(id)

		var runs []Transition
		var curLo byte
		var curTarget dense.StateID
		have := false
		for b := 0; ; b++ {
			atEnd := b > 255
			var target dense.StateID
			if !atEnd {
				target = nextState(id, byte(b))
			}
			if !have {
				if atEnd {
					break
				}
				curLo, curTarget, have = byte(b), target, true
				continue
			}
			if !atEnd && target == curTarget {
				continue
			}
			runs = append(runs, Transition{Lo: curLo, Hi: byte(b - 1), Next: curTarget})
			if atEnd {
				break
			}
			curLo, curTarget = byte(b), target
		}
		rows[s] = runs
	}

	return &DFA{
		rows:            rows,
		eoiTarget:       eoi,
		isMatch:         isMatch,
		matchPattern:    matchPattern,
		startUnanchored: startUnanchored,
		startAnchored:   startAnchored,
		startByPattern:  startByPattern,
	}
}

// CompileFrom builds a sparse DFA from an already-compiled dense DFA.
func CompileFrom(d *dense.DFA) *DFA {
	numStates := d.NumStates()
	isMatch := make([]bool, numStates)
	matchPattern := make([]primitive.PatternID, numStates)
	for s := 0; s < numStates; s++ {
		id := dense.StateID(s)
		isMatch[s] = d.IsMatch(id)
		matchPattern[s] = d.MatchPattern(id)
	}
	return FromDense(d, d.StartUnanchoredID(), d.StartAnchoredID(), d.StartByPatternIDs(), numStates, isMatch, matchPattern, d.NextState, d.NextEOI)
}

// NextState scans the state's runs for the one containing b.
func (d *DFA) NextState(id dense.StateID, b byte) dense.StateID {
	runs := d.rows[id]
	for _, r := range runs {
		if b >= r.Lo && b <= r.Hi {
			return r.Next
		}
	}
	return dense.DeadStateID
}

// NextEOI returns the precomputed end-of-input transition.
func (d *DFA) NextEOI(id dense.StateID) dense.StateID { return d.eoiTarget[id] }

func (d *DFA) IsDead(id dense.StateID) bool { return id == dense.DeadStateID }
func (d *DFA) IsMatch(id dense.StateID) bool { return d.isMatch[id] }
func (d *DFA) MatchPattern(id dense.StateID) primitive.PatternID { return d.matchPattern[id] }

// StartState mirrors dense.DFA.StartState's anchor-mode selection.
func (d *DFA) StartState(in *primitive.Input) dense.StateID {
	switch in.Anchored() {
	case primitive.AnchoredYes:
		return d.startAnchored
	case primitive.AnchoredPattern:
		pid := int(in.PatternID())
		if pid < len(d.startByPattern) {
			return d.startByPattern[pid]
		}
		return dense.DeadStateID
	default:
		return d.startUnanchored
	}
}

// Find runs the same forward-scan algorithm as dense.DFA.Find, but over the
// range-encoded table (spec.md §4.2: identical semantics, smaller memory).
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

// Bytes serializes the sparse table to a self-describing byte stream: a
// 4-byte magic/version header followed by each state's run count and runs.
// Used to persist a compiled pattern's sparse form without the NFA that
// produced it (spec.md §4.2, "smaller, serializable form").
func (d *DFA) Bytes() []byte {
	buf := make([]byte, 0, 1024)
	var tmp [4]byte

	binary.LittleEndian.PutUint32(tmp[:], sparseMagic)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(d.rows)))
	buf = append(buf, tmp[:]...)

	for s, runs := range d.rows {
		binary.LittleEndian.PutUint32(tmp[:], uint32(len(runs)))
		buf = append(buf, tmp[:]...)
		for _, r := range runs {
			buf = append(buf, r.Lo, r.Hi)
			binary.LittleEndian.PutUint32(tmp[:], uint32(r.Next))
			buf = append(buf, tmp[:]...)
		}
		binary.LittleEndian.PutUint32(tmp[:], uint32(d.eoiTarget[s]))
		buf = append(buf, tmp[:]...)
		if d.isMatch[s] {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		binary.LittleEndian.PutUint32(tmp[:], uint32(d.matchPattern[s]))
		buf = append(buf, tmp[:]...)
	}

	binary.LittleEndian.PutUint32(tmp[:], uint32(d.startUnanchored))
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], uint32(d.startAnchored))
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(d.startByPattern)))
	buf = append(buf, tmp[:]...)
	for _, id := range d.startByPattern {
		binary.LittleEndian.PutUint32(tmp[:], uint32(id))
		buf = append(buf, tmp[:]...)
	}
	return buf
}

const sparseMagic = 0x53445831 // "SDX1"

// FromBytes deserializes a table written by Bytes.
func FromBytes(b []byte) (*DFA, error) {
	r := &byteReader{b: b}
	magic, err := r.u32()
	if err != nil || magic != sparseMagic {
		return nil, fmt.Errorf("sparse: bad magic")
	}
	numStates, err := r.u32()
	if err != nil {
		return nil, err
	}

	d := &DFA{
		rows:         make([][]Transition, numStates),
		eoiTarget:    make([]dense.StateID, numStates),
		isMatch:      make([]bool, numStates),
		matchPattern: make([]primitive.PatternID, numStates),
	}

	for s := 0; s < int(numStates); s++ {
		numRuns, err := r.u32()
		if err != nil {
			return nil, err
		}
		runs := make([]Transition, numRuns)
		for i := range runs {
			lo, err := r.byte()
			if err != nil {
				return nil, err
			}
			hi, err := r.byte()
			if err != nil {
				return nil, err
			}
			next, err := r.u32()
			if err != nil {
				return nil, err
			}
			runs[i] = Transition{Lo: lo, Hi: hi, Next: dense.StateID(next)}
		}
		d.rows[s] = runs

		eoi, err := r.u32()
		if err != nil {
			return nil, err
		}
		d.eoiTarget[s] = dense.StateID(eoi)

		isM, err := r.byte()
		if err != nil {
			return nil, err
		}
		d.isMatch[s] = isM != 0

		pat, err := r.u32()
		if err != nil {
			return nil, err
		}
		d.matchPattern[s] = primitive.PatternID(pat)
	}

	su, err := r.u32()
	if err != nil {
		return nil, err
	}
	d.startUnanchored = dense.StateID(su)
	sa, err := r.u32()
	if err != nil {
		return nil, err
	}
	d.startAnchored = dense.StateID(sa)
	numPat, err := r.u32()
	if err != nil {
		return nil, err
	}
	d.startByPattern = make([]dense.StateID, numPat)
	for i := range d.startByPattern {
		id, err := r.u32()
		if err != nil {
			return nil, err
		}
		d.startByPattern[i] = dense.StateID(id)
	}
	return d, nil
}

type byteReader struct {
	b   []byte
	pos int
}

func (r *byteReader) u32() (uint32, error) {
	if r.pos+4 > len(r.b) {
		return 0, fmt.Errorf("sparse: truncated input")
	}
	v := binary.LittleEndian.Uint32(r.b[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *byteReader) byte() (byte, error) {
	if r.pos+1 > len(r.b) {
		return 0, fmt.Errorf("sparse: truncated input")
	}
	v := r.b[r.pos]
	r.pos++
	return v, nil
}
