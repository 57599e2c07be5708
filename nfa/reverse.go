package nfa

import "github.com/matchkit/matchkit/primitive"

// Reverse builds a reverse NFA for one forward pattern: the forward start
// state becomes the reverse Match state, and every forward predecessor of
// Match(pid) becomes a reverse start state, with every transition flipped
// in between. Running the result backward from a known match end recovers
// the match start in time proportional to the match length rather than
// rescanning from offset 0 (spec.md §9, "reverse suffix" optimization,
// used by the meta engine once a forward pass has already confirmed an end
// offset and which pattern matched).
//
// The reverse NFA carries no captures: only ByteRange/Sparse/Look/Union/
// BinaryUnion states survive the flip, since start-offset recovery only
// needs to know *where* matching could have begun. Grounded on the
// teacher's nfa/reverse.go two-pass edge-reversal algorithm ("swap start
// and match, flip every edge"), adapted to build from one pattern's
// fragment within a shared multi-pattern arena instead of a whole-NFA
// Start()/Match() pair the teacher assumes is unique.
func Reverse(forward *NFA, pid primitive.PatternID) *NFA {
	n := forward.NumStates()
	fwdStart := forward.StartForPattern(pid)

	b := NewBuilder(0)
	revOf := make([]StateID, n)
	for i := 0; i < n; i++ {
		id, _ := b.AddFail() // placeholder; overwritten below
		revOf[i] = id
	}
	matchID, _ := b.AddMatch(pid)
	revOf[fwdStart] = matchID

	target := func(fwd StateID) StateID {
		if int(fwd) < len(revOf) {
			return revOf[fwd]
		}
		return InvalidState
	}

	var predecessorsOfMatch []StateID

	for i := 0; i < n; i++ {
		fwd := StateID(i)
		s := forward.State(fwd)
		if s == nil {
			continue
		}
		dst := revOf[i]
		switch s.Kind() {
		case KindByteRange:
			lo, hi, next := s.ByteRange()
			if forward.IsMatch(next) && forward.State(next).MatchPattern() == pid {
				predecessorsOfMatch = append(predecessorsOfMatch, fwd)
			}
			if dst != matchID {
				b.states[dst] = State{kind: KindByteRange, lo: lo, hi: hi, next: target(next)}
			}
		case KindSparse:
			trans := make([]ByteRangeTrans, len(s.Sparse()))
			matchPred := false
			for j, tr := range s.Sparse() {
				trans[j] = ByteRangeTrans{Lo: tr.Lo, Hi: tr.Hi, Next: target(tr.Next)}
				if forward.IsMatch(tr.Next) && forward.State(tr.Next).MatchPattern() == pid {
					matchPred = true
				}
			}
			if matchPred {
				predecessorsOfMatch = append(predecessorsOfMatch, fwd)
			}
			if dst != matchID {
				b.states[dst] = State{kind: KindSparse, sparse: trans}
			}
		case KindLook:
			look, next := s.LookInfo()
			if dst != matchID {
				b.states[dst] = State{kind: KindLook, look: look, next: target(next)}
			}
		case KindUnion:
			alts := make([]StateID, len(s.Union()))
			for j, a := range s.Union() {
				alts[j] = target(a)
			}
			if dst != matchID {
				b.states[dst] = State{kind: KindUnion, union: alts}
			}
		case KindBinaryUnion:
			a1, a2 := s.BinaryUnion()
			if dst != matchID {
				b.states[dst] = State{kind: KindBinaryUnion, alt1: target(a1), alt2: target(a2)}
			}
		case KindCapture:
			next, _ := s.CaptureInfo()
			if dst != matchID {
				b.states[dst] = State{kind: KindUnion, union: []StateID{target(next)}}
			}
		default: // Match, Fail: no outgoing edge to flip
		}
	}

	var revStart StateID
	if len(predecessorsOfMatch) == 0 {
		revStart = matchID // degenerate: pattern matches only the empty string
	} else {
		revStart, _ = unionStarts(b, revTargets(revOf, predecessorsOfMatch))
	}

	b.SetGlobalStarts(revStart, revStart)
	b.SetPatternStart(pid, revStart)
	return b.Finish(true, forward.IsUTF8(), int(pid)+1, 0, []GroupInfo{{Names: []string{""}, ExplicitBase: 0}}, false)
}

func revTargets(revOf []StateID, fwdStates []StateID) []StateID {
	out := make([]StateID, len(fwdStates))
	for i, f := range fwdStates {
		out[i] = revOf[f]
	}
	return out
}
