package primitive

import "fmt"

// Span is a half-open byte range [Start, End) within a
// haystack, used both for reported match locations and for the caller's
// search window. Start <= End always holds; Start == End denotes an empty
// span.
type Span struct {
	Start int
	End   int
}

// NewSpan builds a Span, panicking if start > end — constructing an
// inverted span is always a caller bug, not a runtime condition.
func NewSpan(start, end int) Span {
	if start > end {
		panic(fmt.Sprintf("primitive: invalid span [%d, %d)", start, end))
	}
	return Span{Start: start, End: end}
}

// IsEmpty reports whether the span covers zero bytes.
func (s Span) IsEmpty() bool { return s.Start == s.End }

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether offset falls within [Start, End]. Unlike the
// bytes the span covers, the offset End itself is included.
func (s Span) Contains(offset int) bool { return offset >= s.Start && offset <= s.End }

func (s Span) String() string { return fmt.Sprintf("%d..%d", s.Start, s.End) }

// HalfMatch is produced by an engine that has located only one endpoint of
// a match (typically a forward DFA scan that found the end but not yet the
// start, or a reverse DFA scan that found the start).
type HalfMatch struct {
	Pattern PatternID
	Offset  int
}

func (h HalfMatch) String() string {
	return fmt.Sprintf("HalfMatch{pattern: %s, offset: %d}", h.Pattern, h.Offset)
}

// Match is a complete match: the pattern that matched and its span.
type Match struct {
	Pattern PatternID
	Span    Span
}

func (m Match) String() string {
	return fmt.Sprintf("Match{pattern: %s, span: %s}", m.Pattern, m.Span)
}

// Start is a convenience accessor equal to Span.Start.
func (m Match) Start() int { return m.Span.Start }

// End is a convenience accessor equal to Span.End.
func (m Match) End() int { return m.Span.End }

// IsEmpty reports whether the match span is empty.
func (m Match) IsEmpty() bool { return m.Span.IsEmpty() }
