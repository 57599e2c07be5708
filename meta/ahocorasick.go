package meta

import (
	"github.com/coregx/ahocorasick"
	"github.com/matchkit/matchkit/literal"
	"github.com/matchkit/matchkit/nfa"
	"github.com/matchkit/matchkit/primitive"
)

// buildAhoCorasick compiles prefixes' literals into an Aho-Corasick
// automaton. Only called once selectStrategy has already confirmed every
// literal in prefixes is complete (spec.md §4.7, UseAhoCorasick: "the
// literal engine bypass" — the automaton IS the engine, no NFA
// verification follows a match).
func buildAhoCorasick(prefixes *literal.Seq) *ahocorasick.Automaton {
	builder := ahocorasick.NewBuilder()
	for i := 0; i < prefixes.Len(); i++ {
		builder.AddPattern(prefixes.Get(i).Bytes)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return auto
}

// searchAhoCorasick runs in through the automaton directly. Pattern 0 is
// used unconditionally: the automaton's per-literal branch is an
// implementation detail of this one compiled pattern, not a separate
// matchkit pattern ID.
func (e *Engine) searchAhoCorasick(in *primitive.Input) *nfa.MatchWithCaptures {
	haystack := in.Haystack()
	at := in.Span().Start
	m := e.ahoCorasick.Find(haystack, at)
	if m == nil || m.End > in.Span().End {
		return nil
	}
	return &nfa.MatchWithCaptures{
		Pattern:  0,
		Start:    m.Start,
		End:      m.End,
		Captures: [][]int{{m.Start, m.End}},
	}
}

func (e *Engine) isMatchAhoCorasick(in *primitive.Input) bool {
	return e.ahoCorasick.IsMatch(in.Haystack()[in.Span().Start:in.Span().End])
}
