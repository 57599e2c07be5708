package lazy

import (
	"github.com/matchkit/matchkit/internal/determinize"
	"github.com/matchkit/matchkit/matcherr"
	"github.com/matchkit/matchkit/nfa"
	"github.com/matchkit/matchkit/primitive"
)

// DefaultMaxStates bounds a fresh cache's capacity before it must start
// evicting (spec.md §4.4, "bounded by a configurable state budget").
const DefaultMaxStates = 4096

// DefaultMaxClears is how many times Find will let its cache thrash
// (ClearKeepMemory) before giving up with matcherr.GaveUpError.
const DefaultMaxClears = 16

// Config tunes a DFA's cache budget.
type Config struct {
	MaxStates int
	MaxClears int
}

// DefaultConfig returns the budgets used when Config is unset.
func DefaultConfig() Config {
	return Config{MaxStates: DefaultMaxStates, MaxClears: DefaultMaxClears}
}

// DFA determinizes n on demand, one byte at a time, caching each state as
// it's discovered instead of building the whole table up front (spec.md
// §4.4, "Hybrid (lazy) DFA").
type DFA struct {
	n       *nfa.NFA
	classes nfa.ByteClasses
	stride  int
	eoiCls  byte

	cache  *Cache
	config Config

	quitOnNonASCII bool

	startUnanchored StateKey
	startAnchored   StateKey
	startByPattern  []StateKey
}

// Build constructs a lazy DFA wrapper over n. No states are determinized
// yet; Find computes them as a search visits them.
func Build(n *nfa.NFA, config Config) *DFA {
	if config.MaxStates <= 0 {
		config.MaxStates = DefaultMaxStates
	}
	if config.MaxClears <= 0 {
		config.MaxClears = DefaultMaxClears
	}
	classes := *n.ByteClasses()

	d := &DFA{
		n:              n,
		classes:        classes,
		stride:         classes.Stride(),
		eoiCls:         byte(classes.Len()),
		cache:          NewCache(uint32(config.MaxStates)),
		config:         config,
		quitOnNonASCII: n.HasUnicodeWordBoundary(),
	}

	d.startUnanchored = d.seedKey(n.StartUnanchored())
	d.startAnchored = d.seedKey(n.StartAnchored())
	d.startByPattern = make([]StateKey, n.PatternCount())
	for pid := 0; pid < n.PatternCount(); pid++ {
		d.startByPattern[pid] = d.seedKey(n.StartForPattern(primitive.PatternID(pid)))
	}
	return d
}

func (d *DFA) seedKey(seed nfa.StateID) StateKey {
	set := determinize.NewStateSet()
	determinize.EpsilonClosure(d.n, []nfa.StateID{seed}, -1, set)
	return computeStateKey(set, false)
}

// getOrBuild resolves key to a *State, computing it via build on a cache
// miss. Returns ErrCacheFull (not GaveUp — that decision belongs to the
// caller, which knows the clear budget) when the cache has no room.
func (d *DFA) getOrBuild(key StateKey, set *determinize.StateSet, fromWord bool) (*State, error) {
	if s, ok := d.cache.Get(key); ok {
		return s, nil
	}
	return d.cache.Insert(key, func(id StateID) *State {
		s := &State{
			id:          id,
			key:         key,
			set:         set,
			fromWord:    fromWord,
			transitions: make([]StateID, d.stride),
		}
		for i := range s.transitions {
			s.transitions[i] = InvalidState
		}
		pat, ok := determinize.MatchPattern(d.n, set)
		if ok {
			s.isMatch = true
			s.pattern = uint32(pat)
		}
		return s
	})
}

// step computes (and caches) the state reached from cur on byte b (or -1
// for end-of-input).
func (d *DFA) step(cur *State, b int) (*State, error) {
	beforeRepr := -1
	if cur.fromWord {
		beforeRepr = 'a'
	}
	next := determinize.NewStateSet()
	determinize.Step(d.n, cur.set, beforeRepr, b, next)
	fromWord := b >= 0 && isWordByte(byte(b))
	key := computeStateKey(next, fromWord)
	return d.getOrBuild(key, next, fromWord)
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

func (d *DFA) startKey(in *primitive.Input) StateKey {
	switch in.Anchored() {
	case primitive.AnchoredYes:
		return d.startAnchored
	case primitive.AnchoredPattern:
		pid := int(in.PatternID())
		if pid < len(d.startByPattern) {
			return d.startByPattern[pid]
		}
		return d.startUnanchored
	default:
		return d.startUnanchored
	}
}

// Find runs a forward scan, lazily building cache states as needed. On
// repeated cache exhaustion it clears and keeps going (up to
// config.MaxClears); beyond that it reports *matcherr.GaveUpError. A
// quit-byte (non-ASCII input while the NFA has a Unicode word-boundary
// assertion this DFA cannot resolve byte-at-a-time) reports
// *matcherr.QuitError (spec.md §4.2, §4.4, §7).
func (d *DFA) Find(in *primitive.Input) (half primitive.HalfMatch, ok bool, err error) {
	haystack := in.Haystack()
	span := in.Span()

	d.cache.ResetClearCount()

	startKey := d.startKey(in)
	set := determinize.NewStateSet()
	determinize.EpsilonClosure(d.n, seedStatesFor(d.n, in), -1, set)
	cur, cerr := d.resolveStart(startKey, set)
	if cerr != nil {
		return half, false, cerr
	}

	if cur.isMatch {
		half = primitive.HalfMatch{Pattern: primitive.PatternID(cur.pattern), Offset: span.Start}
		ok = true
	}

	at := span.Start
	for ; at < span.End; at++ {
		b := haystack[at]
		if d.quitOnNonASCII && b >= 0x80 {
			return half, ok, &matcherr.QuitError{Byte: b, Offset: at}
		}

		next, nerr := d.step(cur, int(b))
		if nerr != nil {
			if _, full := nerr.(*ErrCacheFull); full {
				if d.cache.ClearCount() >= d.config.MaxClears {
					return half, ok, &matcherr.GaveUpError{Offset: at}
				}
				d.cache.ClearKeepMemory()
				next, nerr = d.step(cur, int(b))
			}
			if nerr != nil {
				return half, ok, &matcherr.GaveUpError{Offset: at}
			}
		}
		cur = next

		if cur.isMatch {
			half = primitive.HalfMatch{Pattern: primitive.PatternID(cur.pattern), Offset: at + 1}
			ok = true
		}
		if cur.set.Len() == 0 && !cur.isMatch {
			return half, ok, nil
		}
		if ok && in.Earliest() {
			return half, ok, nil
		}
	}

	final, ferr := d.step(cur, -1)
	if ferr == nil && final.isMatch {
		half = primitive.HalfMatch{Pattern: primitive.PatternID(final.pattern), Offset: span.End}
		ok = true
	}
	return half, ok, nil
}

// resolveStart is split out from Find so anchored-pattern starts built
// fresh each call reuse the same getOrBuild/cache-full handling as step.
func (d *DFA) resolveStart(key StateKey, set *determinize.StateSet) (*State, error) {
	if s, ok := d.cache.Get(key); ok {
		return s, nil
	}
	s, err := d.getOrBuild(key, set, key.fromWord)
	if err != nil {
		d.cache.ClearKeepMemory()
		return d.getOrBuild(key, set, key.fromWord)
	}
	return s, nil
}

func seedStatesFor(n *nfa.NFA, in *primitive.Input) []nfa.StateID {
	switch in.Anchored() {
	case primitive.AnchoredYes:
		return []nfa.StateID{n.StartAnchored()}
	case primitive.AnchoredPattern:
		return []nfa.StateID{n.StartForPattern(in.PatternID())}
	default:
		return []nfa.StateID{n.StartUnanchored()}
	}
}

// CacheStats exposes the underlying cache's hit/miss counters, useful for
// tests and for the meta engine's strategy telemetry.
func (d *DFA) CacheStats() (hits, misses uint64) { return d.cache.Stats() }
