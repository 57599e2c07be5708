// Package meta implements the engine-selection dispatcher (spec.md §4.7,
// "Meta Engine"): given a compiled pattern, it picks the cheapest engine
// tier that can answer it correctly — a literal automaton, a one-pass DFA,
// the bounded backtracker, a reverse-anchored scan, or the lazy DFA backed
// by the PikeVM — and falls back along that chain whenever a faster tier
// quits or gives up.
//
// Grounded in the teacher's meta/{engine.go,compile.go,strategy.go}: the
// Strategy enum and the "try the fast tier, verify/fall back to the PikeVM"
// shape are carried over, scoped down from the teacher's sixteen-strategy
// dispatch to the seven tiers this module actually builds (dfa/dense,
// dfa/sparse, dfa/lazy, dfa/onepass, nfa.PikeVM, nfa.BoundedBacktracker,
// nfa.Reverse) plus github.com/coregx/ahocorasick for literal alternations.
package meta

import (
	"regexp/syntax"

	"github.com/coregx/ahocorasick"
	"github.com/matchkit/matchkit/dfa/dense"
	"github.com/matchkit/matchkit/dfa/lazy"
	"github.com/matchkit/matchkit/dfa/onepass"
	"github.com/matchkit/matchkit/literal"
	"github.com/matchkit/matchkit/nfa"
	"github.com/matchkit/matchkit/prefilter"
	"github.com/matchkit/matchkit/primitive"
)

// Engine orchestrates every tier built for one compiled pattern. It
// satisfies matchiter.Searcher, so existing iteration code (matchiter.
// NonOverlapping) works unchanged against it.
type Engine struct {
	n        *nfa.NFA
	strategy Strategy
	config   Config

	pikevm             *nfa.PikeVM
	boundedBacktracker *nfa.BoundedBacktracker
	onepassDFA         *onepass.DFA
	lazyDFA            *lazy.DFA
	reverse            *reverseAnchored
	ahoCorasick        *ahocorasick.Automaton
	overlapDFA         *dense.DFA

	pf prefilter.Prefilter
}

// Compile builds a meta engine for a single pattern. Syntax is the same
// Perl-compatible dialect nfa.CompileMany accepts.
func Compile(pattern string, config Config) (*Engine, error) {
	return CompileWithNFAConfig(pattern, config, nfa.MultiConfig{})
}

// CompileWithNFAConfig is Compile with explicit control over the underlying
// NFA build (ASCII-only, size limits), so callers like the top-level
// Regex.CompileWithConfig can thread their own Config through without
// reimplementing strategy selection.
func CompileWithNFAConfig(pattern string, config Config, nfaConfig nfa.MultiConfig) (*Engine, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, err
	}
	n, err := nfa.CompileMany([]string{pattern}, nfaConfig)
	if err != nil {
		return nil, err
	}
	return build(re, n, config)
}

func build(re *syntax.Regexp, n *nfa.NFA, config Config) (*Engine, error) {
	extractor := literal.New(literal.DefaultConfig())
	prefixes := extractor.ExtractPrefixes(re)

	strategy := selectStrategy(re, n, prefixes, config)

	e := &Engine{
		n:        n,
		strategy: strategy,
		config:   config,
		pikevm:   nfa.NewPikeVM(n),
	}

	if !prefixes.IsEmpty() {
		if built := prefilter.NewBuilder(prefixes, nil).Build(); built != nil {
			e.pf = built
		}
	}

	switch strategy {
	case UseAhoCorasick:
		auto := buildAhoCorasick(prefixes)
		if auto == nil {
			e.strategy = UseNFA
			break
		}
		e.ahoCorasick = auto

	case UseOnePass:
		d, err := onepass.Compile(n)
		if err != nil {
			e.strategy = fallbackAfterOnePass(n, config)
			break
		}
		e.onepassDFA = d

	case UseReverseAnchored:
		rev := buildReverseAnchored(n)
		if rev == nil {
			e.strategy = UseNFA
			break
		}
		e.reverse = rev

	case UseBoundedBacktracker:
		e.boundedBacktracker = nfa.NewBoundedBacktracker(n)
	}

	// UseDFA/UseBoth always get a lazy DFA (no other strategy does);
	// building it is cheap (no states are determinized until a search
	// visits them).
	if e.strategy == UseDFA || e.strategy == UseBoth {
		e.lazyDFA = lazy.Build(n, lazy.Config{MaxStates: config.MaxDFAStates, MaxClears: config.MaxClears})
	}

	return e, nil
}

func fallbackAfterOnePass(n *nfa.NFA, config Config) Strategy {
	if n.NumStates() > 100 {
		return UseDFA
	}
	return UseBoth
}

// Strategy reports which tier Compile selected, for tests and telemetry.
func (e *Engine) Strategy() Strategy { return e.strategy }

// NFA exposes the underlying compiled automaton (used by matchiter's
// overlapping helpers and by callers that need direct access to Group/
// TotalSlots for capture-name resolution).
func (e *Engine) NFA() *nfa.NFA { return e.n }

// PikeVM exposes the fallback thread-list simulator directly. Every other
// tier's Quit/GaveUp error already falls back to it (Search/IsMatch below);
// callers that need leftmost-longest (POSIX) semantics must also bypass
// strategy selection entirely and call this, since only PikeVM consults
// primitive.Input.Longest (spec.md §4.1, leftmost-longest is a PikeVM-only
// mode in this module).
func (e *Engine) PikeVM() *nfa.PikeVM { return e.pikevm }

// rejectedByPrefilter reports whether the attached prefilter proves no
// match can start anywhere in in's remaining span, letting Search/IsMatch
// skip every engine entirely (spec.md §4.7, "prefilter attachment").
func (e *Engine) rejectedByPrefilter(in *primitive.Input) bool {
	if e.pf == nil || in.Anchored() != primitive.AnchoredNone {
		return false
	}
	pos := e.pf.Find(in.Haystack(), in.Span().Start)
	return pos < 0 || pos >= in.Span().End
}

// Search runs the dispatch chain selected at Compile time, falling back to
// the PikeVM whenever a faster tier reports matcherr.QuitError or
// matcherr.GaveUpError (spec.md §4.7, §7).
func (e *Engine) Search(in *primitive.Input) *nfa.MatchWithCaptures {
	if e.rejectedByPrefilter(in) {
		return nil
	}

	switch e.strategy {
	case UseAhoCorasick:
		return e.searchAhoCorasick(in)

	case UseOnePass:
		return e.onepassDFA.Search(in)

	case UseBoundedBacktracker:
		m, err := e.boundedBacktracker.Search(in)
		if err != nil {
			return e.pikevm.Search(in)
		}
		return m

	case UseReverseAnchored:
		if !e.reverse.accepts(in) {
			return nil
		}
		return e.pikevm.Search(in)

	case UseDFA, UseBoth:
		// The lazy DFA only tells us accept/reject (and a match end, which
		// Search discards): any error, recoverable (Quit/GaveUp) or not,
		// and any non-match both mean "let the PikeVM decide", so the only
		// branch worth keeping separate is the confirmed-accept one.
		_, ok, err := e.lazyDFA.Find(in)
		if err != nil || ok {
			return e.pikevm.Search(in)
		}
		return nil

	default:
		return e.pikevm.Search(in)
	}
}

// IsMatch is Search's boolean-only counterpart: cheaper for the tiers that
// can answer accept/reject without building a capture result.
func (e *Engine) IsMatch(in *primitive.Input) bool {
	if e.rejectedByPrefilter(in) {
		return false
	}

	switch e.strategy {
	case UseAhoCorasick:
		return e.isMatchAhoCorasick(in)

	case UseOnePass:
		return e.onepassDFA.IsMatch(in)

	case UseBoundedBacktracker:
		m, err := e.boundedBacktracker.Search(in)
		if err != nil {
			return e.pikevm.Search(in) != nil
		}
		return m != nil

	case UseReverseAnchored:
		return e.reverse.accepts(in)

	case UseDFA, UseBoth:
		_, ok, err := e.lazyDFA.Find(in)
		if err != nil {
			return e.pikevm.Search(in) != nil
		}
		return ok

	default:
		return e.pikevm.Search(in) != nil
	}
}
