package meta

import (
	"errors"
	"regexp/syntax"

	"github.com/matchkit/matchkit/dfa/dense"
	"github.com/matchkit/matchkit/matchiter"
	"github.com/matchkit/matchkit/nfa"
	"github.com/matchkit/matchkit/primitive"
)

// ErrNoPatterns is returned by CompileMany when given an empty pattern list.
var ErrNoPatterns = errors.New("meta: CompileMany requires at least one pattern")

// CompileMany builds a meta engine over multiple patterns, for which
// overlapping search (spec.md §4.8, §6 which_overlapping) is meaningful:
// a single-pattern engine never has more than one pattern live at once, so
// Overlapping/WhichOverlapping only do real work here.
//
// The returned Engine's ordinary Search/IsMatch still dispatch through the
// same strategy selection as Compile, applied to pattern 0's syntax tree
// (spec.md §4.7 doesn't vary strategy selection by pattern count beyond the
// literal-alternation and Aho-Corasick cases already covered there); its
// Overlapping/WhichOverlapping methods additionally expose the dense DFA
// built over all of patterns at once.
func CompileMany(patterns []string, config Config) (*Engine, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}
	re, err := syntax.Parse(patterns[0], syntax.Perl)
	if err != nil {
		return nil, err
	}
	n, err := nfa.CompileMany(patterns, nfa.MultiConfig{})
	if err != nil {
		return nil, err
	}
	e, err := build(re, n, config)
	if err != nil {
		return nil, err
	}
	if d, derr := dense.Compile(n); derr == nil {
		e.overlapDFA = d
	}
	return e, nil
}

// Overlapping returns an iterator over every match (from any pattern) in
// in's span, without leftmost-first priority. Returns nil if this Engine
// wasn't built with CompileMany or the dense DFA failed to build (too many
// states; spec.md §4.2 TooManyStatesError).
func (e *Engine) Overlapping(in *primitive.Input) *matchiter.Overlapping {
	if e.overlapDFA == nil {
		return nil
	}
	return matchiter.NewOverlapping(e.overlapDFA, in)
}

// WhichOverlapping fills patterns with every pattern ID that matches
// anywhere in in's span (spec.md §6, which_overlapping). No-op if this
// Engine has no overlapping DFA.
func (e *Engine) WhichOverlapping(in *primitive.Input, patterns *primitive.PatternSet) {
	if e.overlapDFA == nil {
		patterns.Clear()
		return
	}
	matchiter.WhichOverlapping(e.overlapDFA, in, patterns)
}
