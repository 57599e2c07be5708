package meta

import (
	"regexp/syntax"

	"github.com/matchkit/matchkit/literal"
	"github.com/matchkit/matchkit/nfa"
)

// Strategy names the execution path the meta engine picked for a compiled
// pattern (spec.md §4.7, "Meta Engine"). Selection happens once at Compile
// time; every search against the resulting Engine dispatches on the same
// Strategy.
type Strategy int

const (
	// UseNFA runs the PikeVM exclusively: small NFAs where a DFA's build
	// and cache overhead isn't worth it.
	UseNFA Strategy = iota

	// UseAhoCorasick hands the whole search to an Aho-Corasick automaton:
	// the pattern is an alternation of complete literals, so the
	// automaton IS the engine (no NFA verification needed).
	UseAhoCorasick

	// UseOnePass runs the one-pass DFA: the pattern has capture groups
	// and passed the one-pass build check, so captures resolve directly
	// from the DFA scan with no NFA rescan.
	UseOnePass

	// UseBoundedBacktracker runs the bounded backtracker, cheaper than
	// PikeVM's thread lists: chosen for capture-free patterns made of
	// (repeated) character classes. Size is not checked at selection; a
	// search over the backtracker's visited-set budget falls back to PikeVM.
	UseBoundedBacktracker

	// UseReverseAnchored uses a reverse NFA/DFA scan from the end of the
	// haystack to quickly reject non-matches of an end-anchored pattern,
	// then the PikeVM for the confirmed match's captures.
	UseReverseAnchored

	// UseDFA uses the lazy DFA as a fast accept/reject scan ahead of the
	// PikeVM, falling back to the PikeVM alone on Quit/GaveUp.
	UseDFA

	// UseBoth is UseDFA's twin for patterns where the lazy DFA's cache is
	// more likely to thrash (medium-sized NFAs): same dispatch, recorded
	// separately only for telemetry (spec.md §4.7 distinguishes them by
	// selection reason, not by runtime behavior).
	UseBoth
)

func (s Strategy) String() string {
	switch s {
	case UseNFA:
		return "NFA"
	case UseAhoCorasick:
		return "AhoCorasick"
	case UseOnePass:
		return "OnePass"
	case UseBoundedBacktracker:
		return "BoundedBacktracker"
	case UseReverseAnchored:
		return "ReverseAnchored"
	case UseDFA:
		return "DFA"
	case UseBoth:
		return "Both"
	default:
		return "Unknown"
	}
}

// selectStrategy picks a Strategy for a compiled pattern. re is the parsed
// syntax tree matchiter's caller compiled n from (needed for anchor and
// literal-alternation detection, which StateID-level NFA inspection can't
// cheaply answer); prefixes is re's extracted prefix literal set.
func selectStrategy(re *syntax.Regexp, n *nfa.NFA, prefixes *literal.Seq, config Config) Strategy {
	hasCaptures := n.TotalSlots() > 2

	if config.EnableAhoCorasick && isExactLiteralAlternation(prefixes, config.MinAhoCorasickLiterals) {
		return UseAhoCorasick
	}

	if n.NumStates() < config.SmallNFAStates {
		return UseNFA
	}

	if config.EnableOnePass && hasCaptures {
		return UseOnePass
	}

	if isEndAnchoredOnly(re) {
		return UseReverseAnchored
	}

	if config.EnableBoundedBacktracker && !hasCaptures && isSimpleCharClassLike(re) {
		return UseBoundedBacktracker
	}

	if !config.EnableDFA {
		return UseNFA
	}
	if n.NumStates() > 100 {
		return UseDFA
	}
	return UseBoth
}

// isExactLiteralAlternation reports whether prefixes covers the pattern
// completely: every alternative is a complete literal and there are enough
// of them that Aho-Corasick beats the NFA (spec.md §4.7, UseAhoCorasick).
func isExactLiteralAlternation(prefixes *literal.Seq, minLiterals int) bool {
	if prefixes.IsEmpty() || prefixes.Len() < minLiterals {
		return false
	}
	for i := 0; i < prefixes.Len(); i++ {
		if !prefixes.Get(i).Complete {
			return false
		}
	}
	return true
}

// isEndAnchoredOnly reports whether re is anchored at the end (\z or (?m)$)
// but not also anchored at the start, the shape UseReverseAnchored targets.
func isEndAnchoredOnly(re *syntax.Regexp) bool {
	return endsInAnchor(re) && !startsInAnchor(re)
}

func startsInAnchor(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpBeginText, syntax.OpBeginLine:
		return true
	case syntax.OpConcat:
		if len(re.Sub) == 0 {
			return false
		}
		return startsInAnchor(re.Sub[0])
	case syntax.OpCapture:
		if len(re.Sub) == 0 {
			return false
		}
		return startsInAnchor(re.Sub[0])
	default:
		return false
	}
}

func endsInAnchor(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpEndText, syntax.OpEndLine:
		return true
	case syntax.OpConcat:
		if len(re.Sub) == 0 {
			return false
		}
		return endsInAnchor(re.Sub[len(re.Sub)-1])
	case syntax.OpCapture:
		if len(re.Sub) == 0 {
			return false
		}
		return endsInAnchor(re.Sub[len(re.Sub)-1])
	default:
		return false
	}
}

// isSimpleCharClassLike reports whether re is a single repeated character
// class or a concatenation of them, without alternation or nested groups —
// the shape the bounded backtracker handles well without PikeVM's thread
// bookkeeping (spec.md §4.7, UseBoundedBacktracker).
func isSimpleCharClassLike(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpCharClass, syntax.OpAnyChar, syntax.OpAnyCharNotNL,
		syntax.OpLiteral:
		return true
	case syntax.OpStar, syntax.OpPlus, syntax.OpQuest, syntax.OpRepeat:
		return len(re.Sub) == 1 && isSimpleCharClassLike(re.Sub[0])
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			if !isSimpleCharClassLike(sub) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
