package primitive

import "math/bits"

// PatternSet is a small bitset over pattern IDs, used to report which
// patterns in a multi-pattern NFA/DFA matched at a given position
// (spec.md §6, which_overlapping). It supplements spec.md's distillation:
// the original implementation (original_source) threads an equivalent
// bitset through overlapping search; the distilled spec.md names the
// operation but not the type, so the shape here follows the original.
type PatternSet struct {
	bits  []uint64
	count int // number of patterns this set was sized for
}

// NewPatternSet allocates a set capable of holding IDs in [0, numPatterns).
func NewPatternSet(numPatterns int) *PatternSet {
	words := (numPatterns + 63) / 64
	if words == 0 {
		words = 1
	}
	return &PatternSet{bits: make([]uint64, words), count: numPatterns}
}

// Insert adds id to the set. Returns true if it was newly inserted.
func (p *PatternSet) Insert(id PatternID) bool {
	w, b := id/64, id%64
	mask := uint64(1) << b
	already := p.bits[w]&mask != 0
	p.bits[w] |= mask
	return !already
}

// Contains reports whether id is in the set.
func (p *PatternSet) Contains(id PatternID) bool {
	w, b := id/64, id%64
	return p.bits[w]&(uint64(1)<<b) != 0
}

// Clear empties the set without releasing its backing storage.
func (p *PatternSet) Clear() {
	for i := range p.bits {
		p.bits[i] = 0
	}
}

// IsEmpty reports whether no pattern IDs are present.
func (p *PatternSet) IsEmpty() bool {
	for _, w := range p.bits {
		if w != 0 {
			return false
		}
	}
	return true
}

// Len returns the number of pattern IDs currently present.
func (p *PatternSet) Len() int {
	n := 0
	for _, w := range p.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Iter returns the contained pattern IDs in ascending order.
func (p *PatternSet) Iter() []PatternID {
	out := make([]PatternID, 0, p.Len())
	for wi, w := range p.bits {
		base := PatternID(wi * 64)
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			out = append(out, base+PatternID(tz))
			w &= w - 1
		}
	}
	return out
}
