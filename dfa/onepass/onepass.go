// Package onepass implements the one-pass DFA (spec.md §4.5): a
// determinized automaton restricted to patterns where, at every reachable
// configuration, each input byte has exactly one successor and exactly one
// set of capture slots written along the way. That restriction buys full
// capture-group resolution directly from the DFA scan, with no NFA rescan
// needed afterward — the fastest tier the meta engine can reach for
// (spec.md §4.7 item 2) whenever a pattern qualifies.
//
// The transition table packs one 64-bit cell per (state, byte class):
// bits 32-63 the next state, bits 8-31 a bitset of up to 24 capture slots
// written on this edge, bits 0-7 a bitset of look-around assertions that
// must hold (spec.md §3, §4.5). A separate per-state match cell packs the
// bitset of matching pattern indices (bits 32-63) against the look-around
// Info required for that match (bits 0-31).
//
// Building a one-pass DFA needs per-transition capture-slot provenance
// that internal/determinize's StateSet intentionally discards (dense and
// lazy only need final NFA-state membership, not the path taken to reach
// it) — so Compile walks the NFA itself rather than reusing determinize,
// tracking exactly one live path per configuration and failing fast
// (*matcherr.NotOnePassError) the moment a second one appears.
package onepass

import (
	"github.com/matchkit/matchkit/matcherr"
	"github.com/matchkit/matchkit/nfa"
	"github.com/matchkit/matchkit/primitive"
)

// MaxSlots is the largest explicit capture slot a one-pass pattern may use
// (spec.md §4.5, "no more than 24 explicit capture slots"); slot bits live
// in a 24-bit field of the transition cell.
const MaxSlots = 24

// Cell is one packed transition: next state, slots written, look required.
type Cell uint64

func makeCell(next uint32, slots uint32, look uint8) Cell {
	return Cell(uint64(next)<<32 | uint64(slots&0x00FFFFFF)<<8 | uint64(look))
}

// Next returns the successor state.
func (c Cell) Next() uint32 { return uint32(c >> 32) }

// Slots returns the bitset of capture slots written when this edge is
// taken.
func (c Cell) Slots() uint32 { return uint32(c>>8) & 0x00FFFFFF }

// Look returns the bitset of look-around assertion codes required.
func (c Cell) Look() uint8 { return uint8(c) }

var deadCell = makeCell(0, 0, 0)

// MatchCell packs one state's match info: which patterns match (bits
// 32-63) against the look-around Info required for that match (bits 0-31).
type MatchCell uint64

func makeMatchCell(patterns uint32, info uint32) MatchCell {
	return MatchCell(uint64(patterns)<<32 | uint64(info))
}

func (c MatchCell) Patterns() uint32 { return uint32(c >> 32) }
func (c MatchCell) Info() uint32     { return uint32(c) }

// DFA is a compiled one-pass automaton.
type DFA struct {
	classes nfa.ByteClasses
	stride  int
	eoiCls  int

	cells   []Cell // numStates*stride
	matches []MatchCell

	start      StateID
	startSlots uint32
	n          *nfa.NFA
}

// StateID indexes DFA.cells/matches.
type StateID = primitive.StateID

const DeadStateID StateID = 0

// Compile builds a one-pass DFA for a single-pattern NFA. One-pass analysis
// walks from the anchored start only: the unanchored start's ".*?" prefix
// always has both a "keep consuming" and a "enter the pattern" successor
// live at once, which would fail the ambiguity check on every pattern
// (spec.md §4.5 scopes one-pass to the patterns that pass it).
func Compile(n *nfa.NFA) (*DFA, error) {
	classes := *n.ByteClasses()
	stride := classes.Stride()
	eoiCls := classes.Len()
	reps := classes.Representatives()

	b := &builder{n: n, classes: classes, stride: stride, eoiCls: eoiCls}

	// Reserve state 0 as the dead state before anything else gets a chance
	// to claim it: a zero Cell (next=0, slots=0, look=0) is indistinguishable
	// from deadCell, so whichever config lands on id 0 must actually be dead,
	// never the start state or any other live config.
	b.pending = append(b.pending, config{terminal: nfa.InvalidState})
	b.cells = append(b.cells, make([]Cell, stride)...)
	b.matches = append(b.matches, MatchCell(0))

	startSeed := n.StartAnchored()
	startRes, err := b.closeConfig([]walkSeed{{id: startSeed, before: -1}})
	if err != nil {
		return nil, err
	}
	start := b.getOrAdd(startRes.cfg)

	for i := 0; i < len(b.pending); i++ {
		cfg := b.pending[i]
		base := i * stride
		for _, byt := range reps {
			class := classes.Get(byt)
			cell, err := b.step(cfg, int(byt))
			if err != nil {
				return nil, err
			}
			b.cells[base+int(class)] = cell
		}
		eoiCell, err := b.step(cfg, -1)
		if err != nil {
			return nil, err
		}
		b.cells[base+eoiCls] = eoiCell
	}

	return &DFA{
		classes:    classes,
		stride:     stride,
		eoiCls:     eoiCls,
		cells:      b.cells,
		matches:    b.matches,
		start:      start,
		startSlots: startRes.slots,
		n:          n,
	}, nil
}

// config is one one-pass DFA state: the single live NFA terminal
// configuration (ByteRange/Sparse/Match state id, or InvalidState for the
// dead state) plus whether a match is live here, the pattern it accepts,
// and the word-context tag deferred after-dependent Look assertions need.
type config struct {
	terminal nfa.StateID // InvalidState means dead
	isMatch  bool
	pattern  primitive.PatternID
	fromWord bool
}

type walkSeed struct {
	id     nfa.StateID
	before int
}

type builder struct {
	n       *nfa.NFA
	classes nfa.ByteClasses
	stride  int
	eoiCls  int

	ids     map[string]int
	pending []config
	cells   []Cell
	matches []MatchCell
}

func configKey(c config) string {
	w := byte(0)
	if c.fromWord {
		w = 1
	}
	return string([]byte{w, byte(c.terminal), byte(c.terminal >> 8), byte(c.terminal >> 16), byte(c.terminal >> 24)})
}

func (b *builder) getOrAdd(c config) StateID {
	if b.ids == nil {
		b.ids = make(map[string]int)
	}
	k := configKey(c)
	if id, ok := b.ids[k]; ok {
		return StateID(id)
	}
	id := len(b.pending)
	b.ids[k] = id
	b.pending = append(b.pending, c)
	b.cells = append(b.cells, make([]Cell, b.stride)...)
	var matchCell MatchCell
	if c.isMatch {
		matchCell = makeMatchCell(1<<uint(c.pattern), 0)
	}
	b.matches = append(b.matches, matchCell)
	return StateID(id)
}

// closureResult is the outcome of walking an epsilon-closure: the single
// surviving terminal configuration and the capture slots crossed to reach
// it.
type closureResult struct {
	cfg   config
	slots uint32
}

// closeConfig walks the epsilon-closure of seeds, requiring exactly one
// surviving terminal (ByteRange/Sparse/Match, or a pending after-dependent
// Look) configuration; more than one live, mutually-reachable terminal
// means the pattern isn't one-pass (spec.md §4.5, "more than one successor
// for some byte").
func (b *builder) closeConfig(seeds []walkSeed) (closureResult, error) {
	var found *closureResult
	visited := make(map[nfa.StateID]bool)

	record := func(c config, slots uint32, id nfa.StateID) error {
		if found != nil && found.cfg.terminal != id {
			return &matcherr.NotOnePassError{Reason: "more than one live configuration for some byte"}
		}
		found = &closureResult{cfg: c, slots: slots}
		return nil
	}

	var walk func(id nfa.StateID, before int, slots uint32) error
	walk = func(id nfa.StateID, before int, slots uint32) error {
		if id == nfa.InvalidState || visited[id] {
			return nil
		}
		visited[id] = true
		st := b.n.State(id)
		if st == nil {
			return nil
		}
		switch st.Kind() {
		case nfa.KindUnion:
			for _, alt := range st.Union() {
				if err := walk(alt, before, slots); err != nil {
					return err
				}
			}
			return nil
		case nfa.KindBinaryUnion:
			a1, a2 := st.BinaryUnion()
			if err := walk(a1, before, slots); err != nil {
				return err
			}
			return walk(a2, before, slots)
		case nfa.KindCapture:
			next, slot := st.CaptureInfo()
			if slot >= MaxSlots {
				return &matcherr.NotOnePassError{Reason: "pattern uses more than 24 explicit capture slots"}
			}
			return walk(next, before, slots|(1<<slot))
		case nfa.KindLook:
			look, next := st.LookInfo()
			if !look.DependsOnAfter() {
				if look.Satisfied(before, 0) {
					return walk(next, before, slots)
				}
				return nil
			}
			return record(config{terminal: id}, slots, id)
		case nfa.KindMatch:
			return record(config{terminal: id, isMatch: true, pattern: st.MatchPattern()}, slots, id)
		default: // ByteRange, Sparse
			return record(config{terminal: id}, slots, id)
		}
	}

	for _, s := range seeds {
		if err := walk(s.id, s.before, 0); err != nil {
			return closureResult{}, err
		}
	}
	if found == nil {
		return closureResult{cfg: config{terminal: nfa.InvalidState}}, nil
	}
	return *found, nil
}

// step computes the cell for cfg on input byte b (or -1 for EOI).
func (b *builder) step(cfg config, input int) (Cell, error) {
	if cfg.terminal == nfa.InvalidState {
		return deadCell, nil
	}
	st := b.n.State(cfg.terminal)
	if st == nil {
		return deadCell, nil
	}

	beforeRepr := -1
	if cfg.fromWord {
		beforeRepr = 'a'
	}

	// Resolve a pending after-dependent Look first (mirrors
	// internal/determinize.Step's deferred-resolution rule).
	if st.Kind() == nfa.KindLook {
		look, next := st.LookInfo()
		if !look.Satisfied(beforeRepr, input) {
			return deadCell, nil
		}
		res, err := b.closeConfig([]walkSeed{{id: next, before: beforeRepr}})
		if err != nil {
			return deadCell, err
		}
		return b.finishStep(res)
	}

	if st.Kind() == nfa.KindMatch {
		return deadCell, nil
	}

	var nextID nfa.StateID = nfa.InvalidState
	switch st.Kind() {
	case nfa.KindByteRange:
		lo, hi, next := st.ByteRange()
		if input >= 0 && byte(input) >= lo && byte(input) <= hi {
			nextID = next
		}
	case nfa.KindSparse:
		for _, tr := range st.Sparse() {
			if input >= 0 && byte(input) >= tr.Lo && byte(input) <= tr.Hi {
				nextID = tr.Next
				break
			}
		}
	}
	if nextID == nfa.InvalidState {
		return deadCell, nil
	}

	res, err := b.closeConfig([]walkSeed{{id: nextID, before: input}})
	if err != nil {
		return deadCell, err
	}
	res.cfg.fromWord = input >= 0 && isWordByte(byte(input))
	return b.finishStep(res)
}

func (b *builder) finishStep(res closureResult) (Cell, error) {
	if res.cfg.terminal == nfa.InvalidState {
		return deadCell, nil
	}
	id := b.getOrAdd(res.cfg)
	return makeCell(uint32(id), res.slots, 0), nil
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}
