package nfa

import (
	"github.com/matchkit/matchkit/matcherr"
	"github.com/matchkit/matchkit/primitive"
)

// Builder constructs an NFA arena incrementally, the way the teacher's
// nfa.Builder does: append-only state slice, forward-reference patching.
// Compiler (compile.go) is the only normal caller; CompileMany (multi.go)
// drives one Builder across several patterns so they share one byte-class
// analysis and one arena.
type Builder struct {
	states       []State
	byteClassSet *ByteClassSet

	startByPattern []StateID
	startAnchored  StateID
	startUnanchored StateID

	maxBytes int // spec.md §4.1 size limit; 0 = unlimited
}

// NewBuilder creates an empty builder. maxBytes bounds the arena's estimated
// memory footprint (spec.md §4.1, "Size is monitored against a configurable
// byte limit"); 0 disables the check.
func NewBuilder(maxBytes int) *Builder {
	return &Builder{
		states:          make([]State, 0, 16),
		byteClassSet:    NewByteClassSet(),
		startAnchored:   InvalidState,
		startUnanchored: InvalidState,
		maxBytes:        maxBytes,
	}
}

// approxStateBytes estimates the per-state footprint for the size-limit
// check; it need not be exact, only monotonic and roughly proportional
// (spec.md never mandates an exact accounting formula).
const approxStateBytes = 48

func (b *Builder) checkLimit() error {
	if b.maxBytes <= 0 {
		return nil
	}
	if len(b.states)*approxStateBytes > b.maxBytes {
		return &matcherr.NFATooLargeError{Limit: b.maxBytes, Got: len(b.states) * approxStateBytes}
	}
	return nil
}

func (b *Builder) push(s State) (StateID, error) {
	id := StateID(len(b.states))
	b.states = append(b.states, s)
	if err := b.checkLimit(); err != nil {
		return InvalidState, err
	}
	return id, nil
}

func (b *Builder) AddByteRange(lo, hi byte, next StateID) (StateID, error) {
	b.byteClassSet.SetRange(lo, hi)
	return b.push(State{kind: KindByteRange, lo: lo, hi: hi, next: next})
}

func (b *Builder) AddSparse(trans []ByteRangeTrans) (StateID, error) {
	cp := make([]ByteRangeTrans, len(trans))
	copy(cp, trans)
	for _, t := range cp {
		b.byteClassSet.SetRange(t.Lo, t.Hi)
	}
	return b.push(State{kind: KindSparse, sparse: cp})
}

func (b *Builder) AddLook(look Look, next StateID) (StateID, error) {
	return b.push(State{kind: KindLook, look: look, next: next})
}

// AddUnion adds an ordered-alternatives state; alts[0] has the highest
// leftmost-first priority (spec.md §3).
func (b *Builder) AddUnion(alts ...StateID) (StateID, error) {
	cp := make([]StateID, len(alts))
	copy(cp, alts)
	return b.push(State{kind: KindUnion, union: cp})
}

// AddBinaryUnion adds the 2-alternative specialization of Union.
func (b *Builder) AddBinaryUnion(alt1, alt2 StateID) (StateID, error) {
	return b.push(State{kind: KindBinaryUnion, alt1: alt1, alt2: alt2})
}

func (b *Builder) AddCapture(slot uint32, next StateID) (StateID, error) {
	return b.push(State{kind: KindCapture, slot: slot, next: next})
}

func (b *Builder) AddMatch(pattern primitive.PatternID) (StateID, error) {
	return b.push(State{kind: KindMatch, pattern: pattern})
}

func (b *Builder) AddFail() (StateID, error) {
	return b.push(State{kind: KindFail})
}

// Patch rewrites the single successor of a ByteRange/Look/Capture state.
// Used to resolve forward references left dangling during fragment
// compilation (spec.md §4.1, "concatenation patches each fragment's dangling
// transitions").
func (b *Builder) Patch(id, target StateID) error {
	if int(id) >= len(b.states) {
		return &matcherr.NFATooLargeError{Limit: 0, Got: int(id)} // out of bounds, reuse type loosely
	}
	s := &b.states[id]
	switch s.kind {
	case KindByteRange, KindLook, KindCapture:
		s.next = target
		return nil
	default:
		return errPatchKind(s.kind)
	}
}

// PatchUnion overwrites a Union state's alternative list.
func (b *Builder) PatchUnion(id StateID, alts []StateID) error {
	if int(id) >= len(b.states) || b.states[id].kind != KindUnion {
		return errPatchKind(KindUnion)
	}
	cp := make([]StateID, len(alts))
	copy(cp, alts)
	b.states[id].union = cp
	return nil
}

// PatchBinaryUnion overwrites a BinaryUnion state's two alternatives.
func (b *Builder) PatchBinaryUnion(id, alt1, alt2 StateID) error {
	if int(id) >= len(b.states) || b.states[id].kind != KindBinaryUnion {
		return errPatchKind(KindBinaryUnion)
	}
	b.states[id].alt1 = alt1
	b.states[id].alt2 = alt2
	return nil
}

func errPatchKind(k StateKind) error {
	return &matcherr.UnsupportedFeatureError{Feature: "patch on " + k.String() + " state"}
}

func (b *Builder) NumStates() int { return len(b.states) }

// SetPatternStart records the anchored start state for pattern pid. Called
// once per pattern by the compiler driving this builder.
func (b *Builder) SetPatternStart(pid primitive.PatternID, start StateID) {
	for len(b.startByPattern) <= int(pid) {
		b.startByPattern = append(b.startByPattern, InvalidState)
	}
	b.startByPattern[pid] = start
}

// SetGlobalStarts records the combined anchored/unanchored entry points
// used for "search for any pattern" queries (spec.md §3).
func (b *Builder) SetGlobalStarts(anchored, unanchored StateID) {
	b.startAnchored = anchored
	b.startUnanchored = unanchored
}

// Finish produces the NFA. groups/slots/flags are filled in by the caller
// (Compiler/multi.go) which knows the per-pattern metadata; Builder itself
// only owns state storage and start wiring.
func (b *Builder) Finish(anchored, utf8 bool, patternCount, totalSlots int, groups []GroupInfo, hasUniWB bool) *NFA {
	return &NFA{
		states:                 b.states,
		startByPattern:         append([]StateID(nil), b.startByPattern...),
		startAnchored:          b.startAnchored,
		startUnanchored:        b.startUnanchored,
		anchored:               anchored,
		utf8:                   utf8,
		patternCount:           patternCount,
		totalSlots:             totalSlots,
		groups:                 groups,
		byteClasses:            b.byteClassSet.ByteClasses(),
		hasUnicodeWordBoundary: hasUniWB,
	}
}
