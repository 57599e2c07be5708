package nfa

import "unicode/utf8"

// byteRange is one inclusive byte interval within a utf8Seq.
type byteRange struct {
	Lo, Hi byte
}

// utf8Seq is one fixed-length chain of byte ranges such that every byte
// string matching it (one byte drawn from each range, in order) is the
// UTF-8 encoding of exactly one codepoint in the rune range the sequence
// was derived from.
type utf8Seq []byteRange

const (
	contLo = 0x80
	contHi = 0xBF
)

// utf8RangesSplitSurrogates compiles [lo, hi] into byte-range sequences,
// first excising the UTF-16 surrogate gap (D800-DFFF) since it can appear
// in a syntax.Regexp char class range even though it never encodes to
// valid UTF-8.
func utf8RangesSplitSurrogates(lo, hi rune) []utf8Seq {
	const surrLo, surrHi = 0xD800, 0xDFFF
	if hi < surrLo || lo > surrHi {
		return utf8Ranges(lo, hi)
	}
	var out []utf8Seq
	if lo < surrLo {
		out = append(out, utf8Ranges(lo, surrLo-1)...)
	}
	if hi > surrHi {
		out = append(out, utf8Ranges(surrHi+1, hi)...)
	}
	return out
}

// utf8Ranges decomposes the codepoint range [lo, hi] into byte-range
// sequences. This is the standard UTF-8 range-splitting algorithm (as used
// by, e.g., the utf8-ranges crate and RE2's Unicode compiler): first split
// at UTF-8 length boundaries so every sub-range encodes to a fixed number
// of bytes, then recursively split same-length ranges on their leading
// byte so the remaining suffix range is expressible as independent
// per-byte intervals.
func utf8Ranges(lo, hi rune) []utf8Seq {
	var out []utf8Seq
	splitByLength(lo, hi, &out)
	return out
}

var lengthBoundaries = [...]rune{0x7F, 0x7FF, 0xFFFF, utf8.MaxRune}

func splitByLength(lo, hi rune, out *[]utf8Seq) {
	if lo > hi {
		return
	}
	for _, b := range lengthBoundaries {
		if lo <= b && b < hi {
			splitByLength(lo, b, out)
			splitByLength(b+1, hi, out)
			return
		}
	}
	loB := encodeRune(lo)
	hiB := encodeRune(hi)
	splitSameLength(loB, hiB, out)
}

func encodeRune(r rune) []byte {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	return append([]byte(nil), buf[:n]...)
}

// splitSameLength splits two equal-length UTF-8 byte sequences (the
// encodings of lo and hi, lo <= hi) into byteRange chains covering exactly
// the codepoints between them.
func splitSameLength(lo, hi []byte, out *[]utf8Seq) {
	n := len(lo)
	if n == 1 {
		*out = append(*out, utf8Seq{{lo[0], hi[0]}})
		return
	}
	if lo[0] == hi[0] {
		var rest []utf8Seq
		splitSameLength(lo[1:], hi[1:], &rest)
		for _, r := range rest {
			*out = append(*out, prepend(lo[0], lo[0], r))
		}
		return
	}

	// Leading bytes differ: three (possibly fewer) pieces.
	// 1. lo[0] paired with [lo[1:], max-continuation].
	allMaxTail := true
	for _, b := range lo[1:] {
		if b != contHi {
			allMaxTail = false
			break
		}
	}
	if allMaxTail {
		*out = append(*out, prependRange(lo[0], lo[0], lo[1:]))
	} else {
		maxTail := make([]byte, n-1)
		for i := range maxTail {
			maxTail[i] = contHi
		}
		var rest []utf8Seq
		splitSameLength(lo[1:], maxTail, &rest)
		for _, r := range rest {
			*out = append(*out, prepend(lo[0], lo[0], r))
		}
	}

	// 2. Full middle range of leading bytes, each with full continuation
	// ranges, when there is a gap between lo[0] and hi[0].
	if hi[0]-lo[0] > 1 {
		seq := utf8Seq{{lo[0] + 1, hi[0] - 1}}
		for i := 1; i < n; i++ {
			seq = append(seq, byteRange{contLo, contHi})
		}
		*out = append(*out, seq)
	}

	// 3. hi[0] paired with [min-continuation, hi[1:]].
	allMinTail := true
	for _, b := range hi[1:] {
		if b != contLo {
			allMinTail = false
			break
		}
	}
	if allMinTail {
		*out = append(*out, prependRange(hi[0], hi[0], hi[1:]))
	} else {
		minTail := make([]byte, n-1)
		for i := range minTail {
			minTail[i] = contLo
		}
		var rest []utf8Seq
		splitSameLength(minTail, hi[1:], &rest)
		for _, r := range rest {
			*out = append(*out, prepend(hi[0], hi[0], r))
		}
	}
}

func prepend(lo, hi byte, seq utf8Seq) utf8Seq {
	out := make(utf8Seq, 0, len(seq)+1)
	out = append(out, byteRange{lo, hi})
	out = append(out, seq...)
	return out
}

// prependRange builds a single-level sequence: (lo,hi) followed by one
// fixed range per remaining byte (used when the remaining bytes are
// already a uniform min/max continuation byte, so no further recursive
// splitting is needed).
func prependRange(lo, hi byte, fixed []byte) utf8Seq {
	out := make(utf8Seq, 0, len(fixed)+1)
	out = append(out, byteRange{lo, hi})
	for _, b := range fixed {
		out = append(out, byteRange{b, b})
	}
	return out
}
