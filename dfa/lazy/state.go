// Package lazy implements the hybrid ("lazy") DFA (spec.md §4.4): like
// dfa/dense, a subset-construction automaton over an *nfa.NFA, but states
// are computed on first visit and kept in a bounded cache instead of being
// built eagerly. A search that outgrows the cache's budget too many times
// gives up (matcherr.GaveUpError) rather than thrash forever, letting the
// meta engine fall back to a slower but unconditionally-terminating tier.
//
// Grounded in the teacher's dfa/lazy/{state.go,cache.go,builder.go}: the
// StateID/StateKey/State/Cache shapes and the bounded-eviction policy are
// carried over; the word-boundary-specific deferred resolution there is
// generalized by internal/determinize to every after-dependent look-around
// assertion, and teacher's per-package error.go is replaced by the shared
// matcherr taxonomy (spec.md §7) that nfa, dfa/dense, dfa/lazy, dfa/onepass
// and meta all speak.
package lazy

import (
	"github.com/matchkit/matchkit/internal/determinize"
)

// StateID addresses one lazily-computed DFA state within a Cache.
type StateID uint32

const (
	// InvalidState marks "not yet computed" / "no such state".
	InvalidState StateID = 0xFFFFFFFF
	// DeadState is the ID reserved for the universal failure state (spec.md
	// §3, "special-state shuffling"). The cache never stores a state under
	// it; a search recognises death as an empty, non-matching NFA set.
	DeadState StateID = 0xFFFFFFFE
)

// StateKey canonically identifies a DFA state: the NFA state set plus the
// one bit of word-context subset construction must carry forward (spec.md
// §4.2, §9) to resolve \b/\B on the following transition.
type StateKey struct {
	set      string
	fromWord bool
}

func computeStateKey(set *determinize.StateSet, fromWord bool) StateKey {
	return StateKey{set: set.Key(), fromWord: fromWord}
}

// State is one lazily-built DFA state: its NFA member set (kept only to
// resolve tagged transitions on demand), whether it's a match state and
// for which pattern, and a per-class transition slice. The slice is
// allocated with every entry InvalidState and is not filled in: DFA.step
// recomputes each transition with determinize.Step and looks the target up
// in the Cache by key.
type State struct {
	id       StateID
	key      StateKey
	set      *determinize.StateSet
	fromWord bool
	isMatch  bool
	pattern  uint32

	transitions []StateID // len == stride, InvalidState until computed
	eoiNext     StateID
	eoiComputed bool
}
