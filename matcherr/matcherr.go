// Package matcherr centralizes the build-time and search-time error
// taxonomy shared by every engine (spec.md §7). Individual packages still
// define their own sentinel errors for conditions specific to their
// algorithm (e.g. nfa.ErrInvalidPattern), but any error a caller might need
// to type-switch on across engine boundaries — because the meta engine
// treats it specially, or because a property test asserts on it — lives
// here so nfa, dfa/dense, dfa/sparse, dfa/lazy, dfa/onepass, and meta agree
// on one vocabulary.
package matcherr

import "fmt"

// --- build errors ---

// NFATooLargeError reports that NFA construction exceeded its configured
// byte budget.
type NFATooLargeError struct {
	Limit int
	Got   int
}

func (e *NFATooLargeError) Error() string {
	return fmt.Sprintf("NFA exceeds size limit: %d bytes (limit %d)", e.Got, e.Limit)
}

// UnsupportedFeatureError reports a HIR construct the NFA compiler cannot
// express (e.g. backreferences, which regexp/syntax itself never parses,
// but which a future HIR producer might).
type UnsupportedFeatureError struct {
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("unsupported regex feature: %s", e.Feature)
}

// SizeLimitExceededError reports a configured byte cap was exceeded during
// construction of a DFA, lazy-DFA cache, or one-pass DFA.
type SizeLimitExceededError struct {
	Component string
	Limit     int
}

func (e *SizeLimitExceededError) Error() string {
	return fmt.Sprintf("%s exceeded its configured size limit of %d bytes", e.Component, e.Limit)
}

// TooManyStatesError reports that dense DFA determinization produced more
// states than fit in a StateID (or more than a configured cap).
type TooManyStatesError struct {
	Limit uint64
	Got   uint64
}

func (e *TooManyStatesError) Error() string {
	return fmt.Sprintf("DFA has too many states: %d (limit %d)", e.Got, e.Limit)
}

// NotOnePassError reports that a pattern does not have the one-pass
// property: some reachable configuration has more than one successor for
// some byte.
type NotOnePassError struct {
	Reason string
}

func (e *NotOnePassError) Error() string {
	if e.Reason == "" {
		return "pattern is not one-pass"
	}
	return fmt.Sprintf("pattern is not one-pass: %s", e.Reason)
}

// UnsupportedWordBoundaryError reports that a Unicode word-boundary
// assertion was requested in a DFA without a quit-byte configuration or
// heuristic ASCII mode enabled.
type UnsupportedWordBoundaryError struct{}

func (e *UnsupportedWordBoundaryError) Error() string {
	return "Unicode word boundary requires a quit-byte set or heuristic ASCII mode"
}

// --- search errors ---

// QuitError reports that a DFA encountered a byte it was configured to
// quit on.
type QuitError struct {
	Byte   byte
	Offset int
}

func (e *QuitError) Error() string {
	return fmt.Sprintf("search quit at offset %d on byte 0x%02x", e.Offset, e.Byte)
}

// GaveUpError reports that the lazy DFA's cache cleared more times than its
// configured budget allows.
type GaveUpError struct {
	Offset int
}

func (e *GaveUpError) Error() string {
	return fmt.Sprintf("search gave up at offset %d: lazy DFA cache thrashed", e.Offset)
}

// HaystackTooLongError reports that the bounded backtracker's
// states × (1 + span length) bound was exceeded.
type HaystackTooLongError struct {
	Len int
}

func (e *HaystackTooLongError) Error() string {
	return fmt.Sprintf("haystack span too long for bounded backtracker: %d bytes", e.Len)
}

// IsRecoverable reports whether err is a search error the meta engine
// should treat as a fallback signal (Quit or GaveUp) rather than propagate
// to the caller (spec.md §4.7, §7).
func IsRecoverable(err error) bool {
	switch err.(type) {
	case *QuitError, *GaveUpError:
		return true
	default:
		return false
	}
}
