package nfa

import (
	"regexp/syntax"
	"unicode"
	"unicode/utf8"

	"github.com/matchkit/matchkit/matcherr"
)

// CompilerConfig controls how one pattern's syntax.Regexp tree is lowered
// into Builder states. Adapted from the teacher's CompilerConfig
// (nfa/compile.go), trimmed to the knobs spec.md §4.1 actually calls for.
type CompilerConfig struct {
	// ASCIIOnly compiles `.` and Unicode character classes as their ASCII
	// (single-byte) approximation instead of full UTF-8 byte sequences.
	ASCIIOnly bool
	// UTF8 reports whether the haystack is guaranteed valid UTF-8; passed
	// through to the resulting NFA (spec.md §3).
	UTF8 bool
	// SizeLimit is not read by Compiler itself: CompileMany sizes its
	// Builder from MultiConfig.SizeLimit (Builder.maxBytes, an estimated
	// byte budget; 0 means unbounded).
	SizeLimit int
}

// Compiler lowers one syntax.Regexp into a fragment of Builder states. A
// fresh Compiler is used per pattern; all patterns compiled for one NFA
// share the same Builder (see CompileMany in multi.go) so their states live
// in one arena and their byte-class boundaries merge naturally.
type Compiler struct {
	b      *Builder
	config CompilerConfig

	// capture bookkeeping for the pattern currently being compiled.
	groupNames []string // index 0 = "", index g = name of group g (or "")
	numGroups  int      // highest group number seen, i.e. len(groupNames)-1
}

// NewCompiler returns a Compiler that appends states to b.
func NewCompiler(b *Builder, config CompilerConfig) *Compiler {
	return &Compiler{b: b, config: config}
}

// patch identifies one dangling successor slot left by a fragment, resolved
// later by patchAll once the fragment's continuation is known. Expressed as
// (state id, which field) rather than a captured pointer because b.states
// may reallocate as more states are pushed (classic Thompson "patch list",
// per Russ Cox's construction as adapted in the teacher's compiler).
type patch struct {
	id    StateID
	which patchKind
	idx   int // only meaningful when which == patchUnionAt
}

type patchKind uint8

const (
	patchNext patchKind = iota // ByteRange/Look/Capture.next
	patchAlt1
	patchAlt2
	patchUnionAt
)

// frag is a compiled sub-expression: start is its entry state, out is the
// list of dangling successors to redirect to whatever follows it.
type frag struct {
	start StateID
	out   []patch
}

func (c *Compiler) patchAll(out []patch, target StateID) {
	for _, p := range out {
		s := &c.b.states[p.id]
		switch p.which {
		case patchNext:
			s.next = target
		case patchAlt1:
			s.alt1 = target
		case patchAlt2:
			s.alt2 = target
		case patchUnionAt:
			s.union[p.idx] = target
		}
	}
}

// CompilePattern compiles one pattern's syntax tree into a fragment whose
// exits are left dangling (unpatched). The caller (multi.go) patches the
// fragment into a Match(pid) state and records the start state.
func (c *Compiler) CompilePattern(re *syntax.Regexp) (frag, error) {
	c.groupNames = []string{""}
	c.numGroups = 0
	return c.compile(re)
}

// GroupNames returns the capture-group names collected by the most recent
// CompilePattern call, indexed by group number (0 = whole match, always "").
func (c *Compiler) GroupNames() []string { return c.groupNames }

func (c *Compiler) compile(re *syntax.Regexp) (frag, error) {
	switch re.Op {
	case syntax.OpEmptyMatch:
		return c.compileEmpty()
	case syntax.OpLiteral:
		return c.compileLiteral(re)
	case syntax.OpCharClass:
		return c.compileClass(re.Rune)
	case syntax.OpAnyCharNotNL:
		return c.compileAnyChar(false)
	case syntax.OpAnyChar:
		return c.compileAnyChar(true)
	case syntax.OpBeginLine:
		return c.compileLook(LookStartLine)
	case syntax.OpEndLine:
		return c.compileLook(LookEndLine)
	case syntax.OpBeginText:
		return c.compileLook(LookStartText)
	case syntax.OpEndText:
		return c.compileLook(LookEndText)
	case syntax.OpWordBoundary:
		return c.compileLook(c.wordBoundaryLook(true))
	case syntax.OpNoWordBoundary:
		return c.compileLook(c.wordBoundaryLook(false))
	case syntax.OpCapture:
		return c.compileCapture(re)
	case syntax.OpStar:
		return c.compileStar(re)
	case syntax.OpPlus:
		return c.compilePlus(re)
	case syntax.OpQuest:
		return c.compileQuest(re)
	case syntax.OpRepeat:
		return c.compileRepeat(re)
	case syntax.OpConcat:
		return c.compileConcat(re)
	case syntax.OpAlternate:
		return c.compileAlternate(re)
	case syntax.OpNoMatch:
		return c.compileNoMatch()
	default:
		return frag{}, &matcherr.UnsupportedFeatureError{Feature: "syntax op " + re.Op.String()}
	}
}

func (c *Compiler) wordBoundaryLook(boundary bool) Look {
	if boundary {
		if c.config.ASCIIOnly {
			return LookWordBoundary
		}
		return LookWordBoundaryUnicode
	}
	if c.config.ASCIIOnly {
		return LookNoWordBoundary
	}
	return LookNoWordBoundaryUnicode
}

// compileEmpty compiles the always-matches, zero-width expression as a
// single-alternative Union whose one slot is left dangling: the union
// itself is a no-op pass-through once patched to its continuation.
func (c *Compiler) compileEmpty() (frag, error) {
	id, err := c.b.AddUnion(InvalidState)
	if err != nil {
		return frag{}, err
	}
	return frag{start: id, out: []patch{{id: id, which: patchUnionAt, idx: 0}}}, nil
}

func (c *Compiler) compileNoMatch() (frag, error) {
	id, err := c.b.AddFail()
	if err != nil {
		return frag{}, err
	}
	return frag{start: id, out: nil}, nil
}

func (c *Compiler) compileLook(l Look) (frag, error) {
	id, err := c.b.AddLook(l, InvalidState)
	if err != nil {
		return frag{}, err
	}
	return frag{start: id, out: []patch{{id: id, which: patchNext}}}, nil
}

// compileLiteral chains one ByteRange (or UTF-8 sequence) state per rune.
func (c *Compiler) compileLiteral(re *syntax.Regexp) (frag, error) {
	var head frag
	var tailOut []patch
	first := true
	for _, r := range re.Rune {
		var rf frag
		var err error
		if re.Flags&syntax.FoldCase != 0 {
			rf, err = c.compileFoldedRune(r)
		} else {
			rf, err = c.compileRune(r)
		}
		if err != nil {
			return frag{}, err
		}
		if first {
			head = frag{start: rf.start}
			first = false
		} else {
			c.patchAll(tailOut, rf.start)
		}
		tailOut = rf.out
	}
	if first {
		return c.compileEmpty()
	}
	head.out = tailOut
	return head, nil
}

// compileRune compiles one literal codepoint as a chain of byte ranges
// (1 state if ASCII, up to 4 if multi-byte UTF-8).
func (c *Compiler) compileRune(r rune) (frag, error) {
	if c.config.ASCIIOnly || r < utf8.RuneSelf {
		if r > 0xFF {
			return frag{}, &matcherr.UnsupportedFeatureError{Feature: "non-ASCII rune in ASCII-only mode"}
		}
		id, err := c.b.AddByteRange(byte(r), byte(r), InvalidState)
		if err != nil {
			return frag{}, err
		}
		return frag{start: id, out: []patch{{id: id, which: patchNext}}}, nil
	}
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	return c.chainBytes(buf[:n])
}

// compileFoldedRune compiles a case-insensitive literal rune as an
// alternation over its simple case-fold orbit.
func (c *Compiler) compileFoldedRune(r rune) (frag, error) {
	orbit := caseOrbit(r)
	if len(orbit) == 1 {
		return c.compileRune(orbit[0])
	}
	frags := make([]frag, len(orbit))
	for i, rr := range orbit {
		f, err := c.compileRune(rr)
		if err != nil {
			return frag{}, err
		}
		frags[i] = f
	}
	return c.unionFrags(frags)
}

// caseOrbit returns the set of runes unicode.SimpleFold treats as equivalent
// to r, the same primitive regexp/syntax itself uses to expand FoldCase
// literals.
func caseOrbit(r rune) []rune {
	out := []rune{r}
	for next := unicode.SimpleFold(r); next != r; next = unicode.SimpleFold(next) {
		out = append(out, next)
		if len(out) > 8 {
			break
		}
	}
	return out
}

func (c *Compiler) chainBytes(bs []byte) (frag, error) {
	var head frag
	var tailOut []patch
	for i, b := range bs {
		id, err := c.b.AddByteRange(b, b, InvalidState)
		if err != nil {
			return frag{}, err
		}
		if i == 0 {
			head = frag{start: id}
		} else {
			c.patchAll(tailOut, id)
		}
		tailOut = []patch{{id: id, which: patchNext}}
	}
	head.out = tailOut
	return head, nil
}

// compileClass compiles a Unicode character class given as sorted
// [lo,hi] rune pairs (re.Rune from syntax.OpCharClass).
func (c *Compiler) compileClass(pairs []rune) (frag, error) {
	var seqs []utf8Seq
	for i := 0; i+1 < len(pairs); i += 2 {
		lo, hi := pairs[i], pairs[i+1]
		if c.config.ASCIIOnly {
			if lo > 0x7F {
				continue
			}
			if hi > 0x7F {
				hi = 0x7F
			}
			seqs = append(seqs, utf8Seq{{byte(lo), byte(hi)}})
			continue
		}
		seqs = append(seqs, utf8RangesSplitSurrogates(lo, hi)...)
	}
	if len(seqs) == 0 {
		return c.compileNoMatch()
	}
	return c.compileSeqs(seqs)
}

// compileAnyChar compiles `.`: includeNL selects (?s:.) vs default `.`.
func (c *Compiler) compileAnyChar(includeNL bool) (frag, error) {
	if c.config.ASCIIOnly {
		if includeNL {
			id, err := c.b.AddByteRange(0x00, 0x7F, InvalidState)
			if err != nil {
				return frag{}, err
			}
			return frag{start: id, out: []patch{{id: id, which: patchNext}}}, nil
		}
		lo, err := c.b.AddByteRange(0x00, 0x09, InvalidState)
		if err != nil {
			return frag{}, err
		}
		hi, err := c.b.AddByteRange(0x0B, 0x7F, InvalidState)
		if err != nil {
			return frag{}, err
		}
		return c.unionFrags([]frag{
			{start: lo, out: []patch{{id: lo, which: patchNext}}},
			{start: hi, out: []patch{{id: hi, which: patchNext}}},
		})
	}
	var seqs []utf8Seq
	if includeNL {
		seqs = append(seqs, utf8RangesSplitSurrogates(0, 0x10FFFF)...)
	} else {
		seqs = append(seqs, utf8RangesSplitSurrogates(0, 0x09)...)
		seqs = append(seqs, utf8RangesSplitSurrogates(0x0B, 0x10FFFF)...)
	}
	return c.compileSeqs(seqs)
}

// compileSeqs unions a set of byte-range sequences (each a chain of
// ByteRange states) into one fragment.
func (c *Compiler) compileSeqs(seqs []utf8Seq) (frag, error) {
	frags := make([]frag, 0, len(seqs))
	for _, seq := range seqs {
		f, err := c.compileSeq(seq)
		if err != nil {
			return frag{}, err
		}
		frags = append(frags, f)
	}
	return c.unionFrags(frags)
}

func (c *Compiler) compileSeq(seq utf8Seq) (frag, error) {
	var head frag
	var tailOut []patch
	for i, br := range seq {
		id, err := c.b.AddByteRange(br.Lo, br.Hi, InvalidState)
		if err != nil {
			return frag{}, err
		}
		if i == 0 {
			head = frag{start: id}
		} else {
			c.patchAll(tailOut, id)
		}
		tailOut = []patch{{id: id, which: patchNext}}
	}
	head.out = tailOut
	return head, nil
}

// unionFrags builds a left-to-right priority union over frags (spec.md §3,
// leftmost-first alternation), using BinaryUnion for exactly two branches
// and a flat Union state otherwise (mirrors the teacher's preference for
// BinaryUnion as the common-case fast path).
func (c *Compiler) unionFrags(frags []frag) (frag, error) {
	switch len(frags) {
	case 0:
		return c.compileNoMatch()
	case 1:
		return frags[0], nil
	case 2:
		id, err := c.b.AddBinaryUnion(frags[0].start, frags[1].start)
		if err != nil {
			return frag{}, err
		}
		out := append(append([]patch{}, frags[0].out...), frags[1].out...)
		return frag{start: id, out: out}, nil
	default:
		starts := make([]StateID, len(frags))
		for i, f := range frags {
			starts[i] = f.start
		}
		id, err := c.b.AddUnion(starts...)
		if err != nil {
			return frag{}, err
		}
		var out []patch
		for _, f := range frags {
			out = append(out, f.out...)
		}
		return frag{start: id, out: out}, nil
	}
}

func (c *Compiler) compileConcat(re *syntax.Regexp) (frag, error) {
	if len(re.Sub) == 0 {
		return c.compileEmpty()
	}
	head, err := c.compile(re.Sub[0])
	if err != nil {
		return frag{}, err
	}
	out := head.out
	for _, sub := range re.Sub[1:] {
		f, err := c.compile(sub)
		if err != nil {
			return frag{}, err
		}
		c.patchAll(out, f.start)
		out = f.out
	}
	return frag{start: head.start, out: out}, nil
}

func (c *Compiler) compileAlternate(re *syntax.Regexp) (frag, error) {
	frags := make([]frag, len(re.Sub))
	for i, sub := range re.Sub {
		f, err := c.compile(sub)
		if err != nil {
			return frag{}, err
		}
		frags[i] = f
	}
	return c.unionFrags(frags)
}

func (c *Compiler) compileCapture(re *syntax.Regexp) (frag, error) {
	group := re.Cap
	for len(c.groupNames) <= group {
		c.groupNames = append(c.groupNames, "")
	}
	c.groupNames[group] = re.Name
	if group > c.numGroups {
		c.numGroups = group
	}

	startSlot := uint32(2 * group)
	endSlot := startSlot + 1

	startID, err := c.b.AddCapture(startSlot, InvalidState)
	if err != nil {
		return frag{}, err
	}
	inner, err := c.compile(re.Sub[0])
	if err != nil {
		return frag{}, err
	}
	if err := c.b.Patch(startID, inner.start); err != nil {
		return frag{}, err
	}

	endID, err := c.b.AddCapture(endSlot, InvalidState)
	if err != nil {
		return frag{}, err
	}
	c.patchAll(inner.out, endID)
	return frag{start: startID, out: []patch{{id: endID, which: patchNext}}}, nil
}

// compileStar compiles e* (greedy) or e*? (non-greedy) using a BinaryUnion
// loop head: greedy tries the body first, lazy tries the exit first
// (spec.md §3's leftmost-first priority ordering determines branch order).
func (c *Compiler) compileStar(re *syntax.Regexp) (frag, error) {
	inner, err := c.compile(re.Sub[0])
	if err != nil {
		return frag{}, err
	}
	var loopID StateID
	if re.Flags&syntax.NonGreedy != 0 {
		loopID, err = c.b.AddBinaryUnion(InvalidState, inner.start)
	} else {
		loopID, err = c.b.AddBinaryUnion(inner.start, InvalidState)
	}
	if err != nil {
		return frag{}, err
	}
	c.patchAll(inner.out, loopID)
	exitWhich := patchAlt2
	if re.Flags&syntax.NonGreedy != 0 {
		exitWhich = patchAlt1
	}
	return frag{start: loopID, out: []patch{{id: loopID, which: exitWhich}}}, nil
}

// compilePlus compiles e+ as e followed by e* (one mandatory iteration).
func (c *Compiler) compilePlus(re *syntax.Regexp) (frag, error) {
	first, err := c.compile(re.Sub[0])
	if err != nil {
		return frag{}, err
	}
	star := &syntax.Regexp{Op: syntax.OpStar, Flags: re.Flags, Sub: re.Sub}
	rest, err := c.compileStar(star)
	if err != nil {
		return frag{}, err
	}
	c.patchAll(first.out, rest.start)
	return frag{start: first.start, out: rest.out}, nil
}

// compileQuest compiles e? (greedy) or e?? (non-greedy).
func (c *Compiler) compileQuest(re *syntax.Regexp) (frag, error) {
	inner, err := c.compile(re.Sub[0])
	if err != nil {
		return frag{}, err
	}
	var id StateID
	var err2 error
	if re.Flags&syntax.NonGreedy != 0 {
		id, err2 = c.b.AddBinaryUnion(InvalidState, inner.start)
	} else {
		id, err2 = c.b.AddBinaryUnion(inner.start, InvalidState)
	}
	if err2 != nil {
		return frag{}, err2
	}
	exitWhich := patchAlt2
	if re.Flags&syntax.NonGreedy != 0 {
		exitWhich = patchAlt1
	}
	out := append([]patch{{id: id, which: exitWhich}}, inner.out...)
	return frag{start: id, out: out}, nil
}

// compileRepeat expands e{min,max} by unrolling: min mandatory copies
// followed by (max-min) chained optional copies, or a trailing e* when
// max is unbounded (-1). Mirrors the teacher's repeat-unrolling approach
// (nfa/compile.go), which regexp/syntax itself already bounds via
// syntax.Parse's repeat-count limit.
func (c *Compiler) compileRepeat(re *syntax.Regexp) (frag, error) {
	min, max := re.Min, re.Max
	sub := re.Sub[0]

	if min == 0 && max == 0 {
		return c.compileEmpty()
	}

	var head frag
	var out []patch
	first := true
	for i := 0; i < min; i++ {
		f, err := c.compile(sub)
		if err != nil {
			return frag{}, err
		}
		if first {
			head = frag{start: f.start}
			first = false
		} else {
			c.patchAll(out, f.start)
		}
		out = f.out
	}

	if max == -1 {
		star := &syntax.Regexp{Op: syntax.OpStar, Flags: re.Flags, Sub: re.Sub}
		rest, err := c.compileStar(star)
		if err != nil {
			return frag{}, err
		}
		if first {
			return rest, nil
		}
		c.patchAll(out, rest.start)
		return frag{start: head.start, out: rest.out}, nil
	}

	// (max - min) optional trailing copies, chained one after another
	// (e?e?...); each copy is tried independently of the ones before it.
	for i := min; i < max; i++ {
		quest := &syntax.Regexp{Op: syntax.OpQuest, Flags: re.Flags, Sub: []*syntax.Regexp{sub}}
		f, err := c.compileQuest(quest)
		if err != nil {
			return frag{}, err
		}
		if first {
			head = frag{start: f.start}
			first = false
		} else {
			c.patchAll(out, f.start)
		}
		out = f.out
	}
	if first {
		return c.compileEmpty()
	}
	return frag{start: head.start, out: out}, nil
}
