package nfa

// ByteClasses maps each of the 256 byte values, plus one reserved "EOI"
// (end-of-input) unit, to an equivalence class (spec.md §2, §3). Two bytes
// share a class iff no transition in the compiled automaton ever
// distinguishes them; DFA transition tables are then laid out per-class
// instead of per-byte, shrinking row width from 256 to (typically) 4-64.
//
// Adapted from the teacher's nfa/alphabet.go ByteClasses/ByteClassSet, with
// the EOI unit and power-of-two stride added per spec.md §3 ("a power-of-two
// stride = 2^stride2 is chosen with stride >= k+1").
type ByteClasses struct {
	classes [256]byte
}

// EOI is the sentinel alphabet unit representing "end of input", used by
// DFA start-state selection to resolve end-of-text assertions without
// look-around in the transition function itself (spec.md §9).
const EOI = 256

// NewByteClasses returns classes where every byte is its own class: no
// alphabet reduction. Useful as a safe default before boundary analysis.
func NewByteClasses() ByteClasses {
	var bc ByteClasses
	for i := 0; i < 256; i++ {
		bc.classes[i] = byte(i)
	}
	return bc
}

// Get returns the equivalence class of byte b.
func (bc *ByteClasses) Get(b byte) byte { return bc.classes[b] }

// Len returns the number of distinct byte classes (excluding EOI).
func (bc *ByteClasses) Len() int {
	max := byte(0)
	for _, c := range bc.classes {
		if c > max {
			max = c
		}
	}
	return int(max) + 1
}

// AlphabetLen returns Len()+1: the number of byte classes plus the EOI unit,
// i.e. the number of distinct transition columns a DFA state must have
// (spec.md §3, "k <= 256 (the extra unit is EOI)").
func (bc *ByteClasses) AlphabetLen() int { return bc.Len() + 1 }

// Stride2 returns stride2 such that Stride() == 1<<Stride2 (spec.md §3,
// "stride = 2^stride2 ... used as the row width of DFA transition tables
// so that state_offset + byte_class indexes a transition in one shift").
func (bc *ByteClasses) Stride2() uint {
	need := bc.AlphabetLen()
	s2 := uint(0)
	for (1 << s2) < need {
		s2++
	}
	return s2
}

// Stride returns the DFA transition-table row width: the smallest power of
// two >= AlphabetLen().
func (bc *ByteClasses) Stride() int { return 1 << bc.Stride2() }

// IsSingleton reports that no alphabet reduction has occurred (every byte
// is its own class).
func (bc *ByteClasses) IsSingleton() bool { return bc.Len() == 256 }

// Representatives returns one representative byte per class, used by the
// determinizer to compute a state's transitions by probing only one byte
// per class instead of all 256 (spec.md §4.2, "Byte-class reduction").
func (bc *ByteClasses) Representatives() []byte {
	seen := make([]bool, 256)
	var out []byte
	for b := 0; b < 256; b++ {
		c := bc.classes[b]
		if !seen[c] {
			seen[c] = true
			out = append(out, byte(b))
		}
	}
	return out
}

// Elements returns every byte mapped to the given class.
func (bc *ByteClasses) Elements(class byte) []byte {
	var out []byte
	for b := 0; b < 256; b++ {
		if bc.classes[b] == class {
			out = append(out, byte(b))
		}
	}
	return out
}

// ByteClassSet accumulates class-boundary bits during NFA construction: for
// every ByteRange/Sparse transition interval [lo, hi] emitted, the bytes
// lo-1 and hi become boundaries (a class changes there). After all
// transitions are seen, ByteClasses() materializes the final lookup table
// by walking 0..255 and bumping the class counter at each boundary.
//
// Adapted unchanged in algorithm from the teacher's ByteClassSet.
type ByteClassSet struct {
	bits [4]uint64
}

func NewByteClassSet() *ByteClassSet { return &ByteClassSet{} }

func (s *ByteClassSet) setBit(b byte) {
	s.bits[b/64] |= 1 << (b % 64)
}

func (s *ByteClassSet) getBit(b byte) bool {
	return s.bits[b/64]&(1<<(b%64)) != 0
}

// SetRange marks [lo, hi] as a transition interval with distinct behavior
// from its neighbors.
func (s *ByteClassSet) SetRange(lo, hi byte) {
	if lo > 0 {
		s.setBit(lo - 1)
	}
	s.setBit(hi)
}

func (s *ByteClassSet) SetByte(b byte) { s.SetRange(b, b) }

// ByteClasses materializes the boundary set into a lookup table.
func (s *ByteClassSet) ByteClasses() ByteClasses {
	var bc ByteClasses
	class := byte(0)
	for b := 0; b < 256; b++ {
		bc.classes[b] = class
		if s.getBit(byte(b)) {
			class++
		}
	}
	return bc
}

// Merge folds other's boundaries into s, used when compiling multiple
// patterns into one shared NFA: the final byte classes must discriminate
// every transition interval from every pattern.
func (s *ByteClassSet) Merge(other *ByteClassSet) {
	for i := range s.bits {
		s.bits[i] |= other.bits[i]
	}
}
