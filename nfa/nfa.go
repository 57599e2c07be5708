// Package nfa implements the Thompson NFA intermediate representation
// (spec.md §3, §4.1) compiled from a regexp/syntax.Regexp tree — the stand-in
// for the external HIR producer named in spec.md §1's non-goals — plus the
// two NFA-based simulator tiers built directly on it: PikeVM (pikevm.go)
// and the bounded backtracker (backtrack.go). The determinizing backends
// (dfa/dense, dfa/sparse, dfa/lazy, dfa/onepass) all consume *NFA but live
// in sibling packages.
package nfa

import (
	"fmt"

	"github.com/matchkit/matchkit/primitive"
)

// StateID addresses a state within one NFA's arena. It reuses
// primitive.StateID's range but is a distinct type: an nfa.StateID is never
// comparable to a dfa/dense.StateID (spec.md §3, "IDs can index typed
// arrays").
type StateID = primitive.StateID

// InvalidState is returned by accessors when no such transition/state
// exists.
const InvalidState StateID = 0xFFFFFFFF

// StateKind discriminates the State union. Names follow spec.md §3 exactly:
// ByteRange, Sparse, Look, Union, BinaryUnion, Capture, Match, Fail.
type StateKind uint8

const (
	KindByteRange StateKind = iota
	KindSparse
	KindLook
	KindUnion
	KindBinaryUnion
	KindCapture
	KindMatch
	KindFail
)

func (k StateKind) String() string {
	switch k {
	case KindByteRange:
		return "ByteRange"
	case KindSparse:
		return "Sparse"
	case KindLook:
		return "Look"
	case KindUnion:
		return "Union"
	case KindBinaryUnion:
		return "BinaryUnion"
	case KindCapture:
		return "Capture"
	case KindMatch:
		return "Match"
	case KindFail:
		return "Fail"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// ByteRangeTrans is a single inclusive byte interval used by both the
// ByteRange state (one interval) and the Sparse state (several, in
// ascending non-overlapping order).
type ByteRangeTrans struct {
	Lo, Hi byte
	Next   StateID
}

// State is one NFA state. Which fields are meaningful is determined by
// Kind; this mirrors the teacher's tagged-struct State (nfa/nfa.go in the
// teacher repo) rather than an interface-per-kind, keeping state storage a
// flat, allocation-free slice.
type State struct {
	kind StateKind

	// ByteRange
	lo, hi byte
	next   StateID // also used by Look, Capture (single successor)

	// Sparse: ordered, non-overlapping transitions.
	sparse []ByteRangeTrans

	// Look
	look Look

	// Union: ordered alternatives, first = highest priority.
	union []StateID

	// BinaryUnion
	alt1, alt2 StateID

	// Capture
	slot uint32

	// Match
	pattern primitive.PatternID
}

func (s *State) Kind() StateKind { return s.kind }

// ByteRange returns the interval and successor for a KindByteRange state.
func (s *State) ByteRange() (lo, hi byte, next StateID) {
	return s.lo, s.hi, s.next
}

// Sparse returns the ordered transition list for a KindSparse state.
func (s *State) Sparse() []ByteRangeTrans { return s.sparse }

// LookInfo returns the assertion and successor for a KindLook state.
func (s *State) LookInfo() (look Look, next StateID) { return s.look, s.next }

// Union returns the ordered alternative list for a KindUnion state.
func (s *State) Union() []StateID { return s.union }

// BinaryUnion returns the two alternatives of a KindBinaryUnion state.
func (s *State) BinaryUnion() (alt1, alt2 StateID) { return s.alt1, s.alt2 }

// CaptureInfo returns the successor and slot index for a KindCapture state.
func (s *State) CaptureInfo() (next StateID, slot uint32) { return s.next, s.slot }

// MatchPattern returns the pattern ID a KindMatch state accepts.
func (s *State) MatchPattern() primitive.PatternID { return s.pattern }

func (s *State) String() string {
	switch s.kind {
	case KindByteRange:
		return fmt.Sprintf("ByteRange(%02x-%02x -> %d)", s.lo, s.hi, s.next)
	case KindSparse:
		return fmt.Sprintf("Sparse(%d ranges)", len(s.sparse))
	case KindLook:
		return fmt.Sprintf("Look(%s -> %d)", s.look, s.next)
	case KindUnion:
		return fmt.Sprintf("Union(%v)", s.union)
	case KindBinaryUnion:
		return fmt.Sprintf("BinaryUnion(%d, %d)", s.alt1, s.alt2)
	case KindCapture:
		return fmt.Sprintf("Capture(slot %d -> %d)", s.slot, s.next)
	case KindMatch:
		return fmt.Sprintf("Match(pattern %d)", s.pattern)
	case KindFail:
		return "Fail"
	default:
		return "?"
	}
}

// GroupInfo resolves capture group names to slot indices for one pattern.
// Index 0 is always "" (the whole match). Slot numbering follows
// SPEC_FULL.md §12: every pattern reserves its implicit [start,end] at
// slots [2*pid, 2*pid+1]; explicit capture groups for pattern pid occupy a
// contiguous block starting at ExplicitBase.
type GroupInfo struct {
	Names        []string // Names[g] is the name of group g (0 = "")
	ExplicitBase int      // slot index of group 1's start; group g -> ExplicitBase + 2*(g-1)
}

// SlotFor returns the [start, end] slot pair for explicit capture group g
// (g >= 1) of this pattern. Group 0 (whole match) uses the pattern's
// implicit slots [2*pid, 2*pid+1] instead, tracked on the NFA itself.
func (gi *GroupInfo) SlotFor(group int) (start, end int) {
	start = gi.ExplicitBase + 2*(group-1)
	return start, start + 1
}

// NFA is a compiled Thompson NFA over one or more patterns (spec.md §3).
type NFA struct {
	states []State

	// Per-pattern anchored start states, indexed by PatternID.
	startByPattern []StateID
	// Global starts used for "search for any pattern" queries.
	startAnchored   StateID
	startUnanchored StateID

	anchored bool
	utf8     bool

	patternCount int
	totalSlots   int // >= 2*patternCount
	groups       []GroupInfo

	byteClasses ByteClasses

	// hasUnicodeWordBoundary records whether any Look state in this NFA is
	// one of the Unicode word-boundary variants; the dense/lazy DFA
	// builders consult this to decide whether a quit-byte set or heuristic
	// ASCII mode is required (spec.md §4.2).
	hasUnicodeWordBoundary bool
}

func (n *NFA) State(id StateID) *State {
	if id == InvalidState || int(id) >= len(n.states) {
		return nil
	}
	return &n.states[id]
}

func (n *NFA) NumStates() int { return len(n.states) }

func (n *NFA) IsMatch(id StateID) bool {
	s := n.State(id)
	return s != nil && s.kind == KindMatch
}

// StartAnchored returns the global anchored start (spec.md §3: "global
// anchored/unanchored starts").
func (n *NFA) StartAnchored() StateID { return n.startAnchored }

// StartUnanchored returns the global unanchored start.
func (n *NFA) StartUnanchored() StateID { return n.startUnanchored }

// StartForPattern returns the anchored start state for one specific
// pattern, used by Input.AnchoredPattern searches.
func (n *NFA) StartForPattern(pid primitive.PatternID) StateID {
	if int(pid) >= len(n.startByPattern) {
		return InvalidState
	}
	return n.startByPattern[pid]
}

func (n *NFA) PatternCount() int { return n.patternCount }

func (n *NFA) TotalSlots() int { return n.totalSlots }

// Group returns the capture-group info for pattern pid.
func (n *NFA) Group(pid primitive.PatternID) *GroupInfo {
	if int(pid) >= len(n.groups) {
		return nil
	}
	return &n.groups[pid]
}

func (n *NFA) IsAnchored() bool { return n.anchored }
func (n *NFA) IsUTF8() bool     { return n.utf8 }

func (n *NFA) ByteClasses() *ByteClasses { return &n.byteClasses }

func (n *NFA) HasUnicodeWordBoundary() bool { return n.hasUnicodeWordBoundary }

func (n *NFA) String() string {
	return fmt.Sprintf("NFA{states:%d patterns:%d slots:%d}", len(n.states), n.patternCount, n.totalSlots)
}
