package meta

import "github.com/matchkit/matchkit/dfa/lazy"

// Config tunes which strategies the meta engine is allowed to pick and the
// budgets handed to the engines it builds (spec.md §4.7).
type Config struct {
	// MaxDFAStates bounds the lazy DFA's state cache (dfa/lazy.Config).
	MaxDFAStates int
	// MaxClears bounds how many times the lazy DFA may clear its cache
	// before a search gives up and falls back to the NFA.
	MaxClears int

	// MinAhoCorasickLiterals is the smallest complete-literal alternation
	// size worth handing to github.com/coregx/ahocorasick instead of the
	// NFA (spec.md §4.7, UseAhoCorasick: "large alternations").
	MinAhoCorasickLiterals int

	// SmallNFAStates is the state-count ceiling below which UseNFA is
	// preferred outright: DFA/cache overhead isn't worth it for tiny
	// patterns (spec.md §4.7, UseNFA).
	SmallNFAStates int

	EnableOnePass            bool
	EnableBoundedBacktracker bool
	EnableAhoCorasick        bool
	EnableDFA                bool
}

// DefaultConfig returns the budgets and strategy toggles used when Config is
// left unset.
func DefaultConfig() Config {
	return Config{
		MaxDFAStates:             lazy.DefaultMaxStates,
		MaxClears:                lazy.DefaultMaxClears,
		MinAhoCorasickLiterals:   8,
		SmallNFAStates:           20,
		EnableOnePass:            true,
		EnableBoundedBacktracker: true,
		EnableAhoCorasick:        true,
		EnableDFA:                true,
	}
}
