package primitive

// AnchoredMode controls whether, and how, a search is pinned to its start
// offset.
type AnchoredMode uint8

const (
	// AnchoredNone lets the search begin anywhere in the span (subject to
	// prefilter skip-ahead).
	AnchoredNone AnchoredMode = iota
	// AnchoredYes requires the match to start exactly at Input.Span().Start.
	AnchoredYes
	// AnchoredPattern requires the match to start at Input.Span().Start AND
	// restricts the search to one specific pattern.
	AnchoredPattern
)

// Input bundles everything a search needs: the haystack, the sub-range to
// search, anchoring behavior, an optional pattern restriction, an optional
// prefilter, and the two boolean knobs (earliest, utf8) that change how a
// match is reported rather than whether one exists.
//
// All fields default to their zero value producing the least restrictive,
// most correct search: unanchored, no pattern restriction, no prefilter,
// not earliest, UTF-8 boundaries enforced.
type Input struct {
	haystack []byte
	span     Span

	anchored  AnchoredMode
	patternID PatternID // valid only when anchored == AnchoredPattern
	prefilter Prefilter
	earliest  bool
	utf8      bool
	longest   bool
}

// Prefilter is the minimal contract the meta engine needs from a literal or
// multi-literal searcher: find the next byte offset at which a match could
// conceivably start, or report that none remains in the span.
//
// The searchers in package prefilter implement that package's own
// Prefilter interface (Find), not this one; no type in the module
// implements NextCandidate. Declaring it here keeps primitive.Input free of
// an import of package prefilter.
type Prefilter interface {
	// NextCandidate returns the offset of the next position in haystack[at:]
	// that could start a match, or len(haystack) if none exists.
	NextCandidate(haystack []byte, at int) int
}

// NewInput creates an Input over the full haystack with default settings:
// unanchored, UTF-8 boundary discipline on, not earliest.
func NewInput(haystack []byte) *Input {
	return &Input{
		haystack: haystack,
		span:     Span{Start: 0, End: len(haystack)},
		utf8:     true,
	}
}

// Haystack returns the full haystack bytes (not just the searched span).
func (in *Input) Haystack() []byte { return in.haystack }

// Span returns the sub-range of the haystack to search.
func (in *Input) Span() Span { return in.span }

// SetSpan restricts the search to [start, end) of the haystack. Panics if
// the range is out of bounds or inverted — a caller bug.
func (in *Input) SetSpan(start, end int) *Input {
	if start > end || end > len(in.haystack) {
		panic("primitive: span out of bounds")
	}
	in.span = Span{Start: start, End: end}
	return in
}

// Anchored reports the current anchor mode.
func (in *Input) Anchored() AnchoredMode { return in.anchored }

// SetAnchored sets unanchored/anchored-at-start search.
func (in *Input) SetAnchored(mode AnchoredMode) *Input {
	in.anchored = mode
	return in
}

// SetAnchoredPattern anchors the search to Span().Start and restricts it to
// exactly one pattern.
func (in *Input) SetAnchoredPattern(id PatternID) *Input {
	in.anchored = AnchoredPattern
	in.patternID = id
	return in
}

// PatternID returns the pattern restriction set by SetAnchoredPattern. Only
// meaningful when Anchored() == AnchoredPattern.
func (in *Input) PatternID() PatternID { return in.patternID }

// SetPrefilter attaches a prefilter the engine may consult whenever it is
// in a start state (spec.md §4.7).
func (in *Input) SetPrefilter(p Prefilter) *Input {
	in.prefilter = p
	return in
}

// PrefilterOrNil returns the attached prefilter, or nil.
func (in *Input) PrefilterOrNil() Prefilter { return in.prefilter }

// Earliest reports whether the search should stop as soon as any match is
// confirmed, rather than continuing to find the leftmost-first-preferred
// one.
func (in *Input) Earliest() bool { return in.earliest }

// SetEarliest toggles the earliest flag.
func (in *Input) SetEarliest(v bool) *Input {
	in.earliest = v
	return in
}

// UTF8 reports whether empty matches that would split a UTF-8 codepoint are
// rejected.
func (in *Input) UTF8() bool { return in.utf8 }

// SetUTF8 toggles UTF-8 boundary discipline.
func (in *Input) SetUTF8(v bool) *Input {
	in.utf8 = v
	return in
}

// Longest reports whether a search should prefer the leftmost-longest
// match (POSIX semantics) over the default leftmost-first preference.
func (in *Input) Longest() bool { return in.longest }

// SetLongest toggles leftmost-longest matching.
func (in *Input) SetLongest(v bool) *Input {
	in.longest = v
	return in
}
