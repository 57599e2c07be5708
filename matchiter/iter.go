// Package matchiter implements the non-overlapping match iteration
// semantics spec.md §6 names as find_iter/captures_iter: repeated search
// over a haystack, advancing past each match and, for an empty match,
// advancing by one encoded rune rather than one byte so no reported match
// ever starts mid-codepoint (spec.md §4.8, grounded in
// original_source/src/util/iter.rs's advance-past-empty-match rule).
package matchiter

import (
	"unicode/utf8"

	"github.com/matchkit/matchkit/nfa"
	"github.com/matchkit/matchkit/primitive"
)

// Searcher is the minimal capability an iterator needs from an engine: find
// the leftmost-first (or configured) match at or after in.Span().Start.
type Searcher interface {
	Search(in *primitive.Input) *nfa.MatchWithCaptures
}

// NonOverlapping walks successive, non-overlapping matches over a fixed
// haystack.
type NonOverlapping struct {
	s         Searcher
	haystack  []byte
	pos       int
	utf8Mode  bool
	lastEnd   int
	hadLast   bool
	done      bool
}

// NewNonOverlapping returns an iterator starting at the beginning of
// haystack. utf8Mode mirrors primitive.Input.UTF8: when true, an empty
// match is never followed by resuming in the middle of a multi-byte rune.
func NewNonOverlapping(s Searcher, haystack []byte, utf8Mode bool) *NonOverlapping {
	return &NonOverlapping{s: s, haystack: haystack, utf8Mode: utf8Mode}
}

// Next returns the next match, or nil once the haystack is exhausted.
func (it *NonOverlapping) Next() *nfa.MatchWithCaptures {
	if it.done || it.pos > len(it.haystack) {
		return nil
	}

	in := primitive.NewInput(it.haystack).SetSpan(it.pos, len(it.haystack))
	in.SetUTF8(it.utf8Mode)

	m := it.s.Search(in)
	if m == nil {
		it.done = true
		return nil
	}

	// An empty match that lands exactly where the previous match ended
	// would repeat forever; skip forward by one rune/byte before
	// accepting it, matching stdlib regexp's FindAll iteration rule.
	if it.hadLast && m.Start == m.End && m.Start == it.lastEnd {
		next := it.advance(m.End)
		if next <= it.pos {
			it.done = true
			return nil
		}
		it.pos = next
		return it.Next()
	}

	it.lastEnd = m.End
	it.hadLast = true

	if m.End > m.Start {
		it.pos = m.End
	} else {
		it.pos = it.advance(m.End)
	}
	return m
}

func (it *NonOverlapping) advance(at int) int {
	if it.utf8Mode && at < len(it.haystack) {
		_, size := utf8.DecodeRune(it.haystack[at:])
		if size < 1 {
			size = 1
		}
		return at + size
	}
	return at + 1
}
