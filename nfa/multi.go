package nfa

import (
	"regexp/syntax"

	"github.com/matchkit/matchkit/matcherr"
	"github.com/matchkit/matchkit/primitive"
)

// MultiConfig controls CompileMany. Each field mirrors one piece of
// SPEC_FULL.md §12's multi-pattern generalization over the teacher's
// single-pattern Compiler.
type MultiConfig struct {
	CompilerConfig

	// SizeLimit bounds the shared Builder's arena (spec.md §4.1).
	SizeLimit int
}

// CompileMany compiles patterns into one NFA sharing a single state arena
// and byte-class analysis (SPEC_FULL.md §12, "the main generalization this
// module performs over the teacher"). Each pattern gets its own anchored
// start state (NFA.StartForPattern) and its own implicit capture slots
// [2*pid, 2*pid+1]; explicit capture groups for pattern pid occupy a
// contiguous block recorded in NFA.Group(pid), allocated in pattern order
// after all patterns' implicit slots.
func CompileMany(patterns []string, cfg MultiConfig) (*NFA, error) {
	if len(patterns) == 0 {
		return nil, &matcherr.UnsupportedFeatureError{Feature: "empty pattern set"}
	}
	if len(patterns) > int(primitive.PatternIDLimit) {
		return nil, &matcherr.UnsupportedFeatureError{Feature: "too many patterns"}
	}

	b := NewBuilder(cfg.SizeLimit)
	comp := NewCompiler(b, cfg.CompilerConfig)

	groups := make([]GroupInfo, len(patterns))
	nextSlot := 2 * len(patterns) // implicit slots come first, one pair per pattern
	hasUniWB := false

	for i, pat := range patterns {
		pid, err := primitive.NewPatternID(uint64(i))
		if err != nil {
			return nil, err
		}

		flags := syntax.Perl
		re, err := syntax.Parse(pat, flags)
		if err != nil {
			return nil, err
		}
		re = re.Simplify()

		before := b.NumStates()
		f, err := comp.CompilePattern(re)
		if err != nil {
			return nil, err
		}

		matchID, err := b.AddMatch(pid)
		if err != nil {
			return nil, err
		}
		comp.patchAll(f.out, matchID)

		names := comp.GroupNames()
		explicitBase := nextSlot
		explicitCount := len(names) - 1 // group 0 excluded, it uses the implicit slots
		nextSlot += 2 * explicitCount
		groups[i] = GroupInfo{Names: names, ExplicitBase: explicitBase}

		// compileCapture numbers group g's slots 2g/2g+1; move them into this
		// pattern's explicit block so they agree with GroupInfo.SlotFor.
		for id := before; id < b.NumStates(); id++ {
			if s := &b.states[id]; s.kind == KindCapture {
				s.slot = uint32(explicitBase + int(s.slot) - 2)
			}
		}

		// Wrap the pattern's fragment start with the implicit whole-match
		// open capture (slot 2*pid) so PikeVM/backtracker slot-filling needs
		// no special case for group 0. The matching close (slot 2*pid+1) is
		// not a state at all: engines fill it from the current offset the
		// instant they land on a Match(pid) state (see pikevm.go).
		openID, err := b.AddCapture(uint32(2*i), InvalidState)
		if err != nil {
			return nil, err
		}
		if err := b.Patch(openID, f.start); err != nil {
			return nil, err
		}
		b.SetPatternStart(pid, openID)

		if hasUnicodeWordBoundaryIn(re) {
			hasUniWB = true
		}
	}

	anchoredUnion, err := unionStarts(b, patternStarts(b, len(patterns)))
	if err != nil {
		return nil, err
	}

	unanchoredPrefix, err := buildUnanchoredPrefix(b, cfg.ASCIIOnly)
	if err != nil {
		return nil, err
	}
	if err := patchPrefixInto(b, unanchoredPrefix, anchoredUnion); err != nil {
		return nil, err
	}

	b.SetGlobalStarts(anchoredUnion, unanchoredPrefix.start)

	anchoredOverall := len(patterns) == 1 && patternIsAnchored(patterns[0])
	nfa := b.Finish(anchoredOverall, cfg.UTF8, len(patterns), nextSlot, groups, hasUniWB)
	return nfa, nil
}

func patternStarts(b *Builder, n int) []StateID {
	out := make([]StateID, n)
	for i := 0; i < n; i++ {
		out[i] = b.startByPattern[i]
	}
	return out
}

// unionStarts builds the Union used for "search any pattern" anchored entry.
func unionStarts(b *Builder, starts []StateID) (StateID, error) {
	if len(starts) == 1 {
		return starts[0], nil
	}
	if len(starts) == 2 {
		return b.AddBinaryUnion(starts[0], starts[1])
	}
	return b.AddUnion(starts...)
}

// buildUnanchoredPrefix compiles a shared, non-greedy "consume any byte,
// zero or more times" loop: the unanchored search entry point, so one
// prefix serves every pattern instead of duplicating it per pattern
// (spec.md §3's unanchored search semantics, generalized to multi-pattern).
func buildUnanchoredPrefix(b *Builder, asciiOnly bool) (frag, error) {
	hi := byte(0xFF)
	if asciiOnly {
		hi = 0x7F
	}
	anyByte, err := b.AddByteRange(0x00, hi, InvalidState)
	if err != nil {
		return frag{}, err
	}
	// Non-greedy star: try exit (alt1) before looping (alt2), matching
	// compileStar's non-greedy branch ordering.
	loopID, err := b.AddBinaryUnion(InvalidState, anyByte)
	if err != nil {
		return frag{}, err
	}
	if err := b.Patch(anyByte, loopID); err != nil {
		return frag{}, err
	}
	return frag{start: loopID, out: []patch{{id: loopID, which: patchAlt1}}}, nil
}

func patchPrefixInto(b *Builder, prefix frag, target StateID) error {
	for _, p := range prefix.out {
		s := &b.states[p.id]
		switch p.which {
		case patchAlt1:
			s.alt1 = target
		case patchAlt2:
			s.alt2 = target
		case patchNext:
			s.next = target
		case patchUnionAt:
			s.union[p.idx] = target
		}
	}
	return nil
}

// hasUnicodeWordBoundaryIn walks re looking for a \b/\B assertion compiled
// to its Unicode-aware variant (non-ASCII-only mode).
func hasUnicodeWordBoundaryIn(re *syntax.Regexp) bool {
	if re.Op == syntax.OpWordBoundary || re.Op == syntax.OpNoWordBoundary {
		return true
	}
	for _, sub := range re.Sub {
		if hasUnicodeWordBoundaryIn(sub) {
			return true
		}
	}
	return false
}

// patternIsAnchored is a cheap syntactic check used only to set NFA.anchored
// for the common single-pattern case (spec.md §3's "anchored" flag is a
// hint consumed by engine selection, not a correctness requirement).
func patternIsAnchored(pattern string) bool {
	return len(pattern) > 0 && pattern[0] == '^'
}
