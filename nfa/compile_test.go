package nfa

import "testing"

func compileOne(t *testing.T, pattern string) *NFA {
	t.Helper()
	n, err := CompileMany([]string{pattern}, MultiConfig{CompilerConfig: CompilerConfig{UTF8: true}})
	if err != nil {
		t.Fatalf("CompileMany(%q): %v", pattern, err)
	}
	return n
}

func mustMatch(t *testing.T, n *NFA, haystack string, wantStart, wantEnd int, wantFound bool) {
	t.Helper()
	in := newTestInput(haystack)
	m := NewPikeVM(n).Search(in)
	if wantFound != (m != nil) {
		t.Fatalf("match found=%v, want %v", m != nil, wantFound)
	}
	if m != nil && (m.Start != wantStart || m.End != wantEnd) {
		t.Fatalf("match=[%d,%d), want [%d,%d)", m.Start, m.End, wantStart, wantEnd)
	}
}

func TestCompileLiteral(t *testing.T) {
	n := compileOne(t, "abc")
	mustMatch(t, n, "xxabcxx", 2, 5, true)
	mustMatch(t, n, "xxab", 0, 0, false)
}

func TestCompileAlternate(t *testing.T) {
	n := compileOne(t, "cat|dog")
	mustMatch(t, n, "I have a dog", 9, 12, true)
	mustMatch(t, n, "I have a cat", 9, 12, true)
}

func TestCompileStarPlusQuest(t *testing.T) {
	n := compileOne(t, "ab*c")
	mustMatch(t, n, "ac", 0, 2, true)
	mustMatch(t, n, "abbbbc", 0, 6, true)

	n = compileOne(t, "ab+c")
	mustMatch(t, n, "ac", 0, 0, false)
	mustMatch(t, n, "abc", 0, 3, true)

	n = compileOne(t, "ab?c")
	mustMatch(t, n, "ac", 0, 2, true)
	mustMatch(t, n, "abc", 0, 3, true)
}

func TestCompileRepeat(t *testing.T) {
	n := compileOne(t, "a{2,4}")
	mustMatch(t, n, "aaaaa", 0, 4, true)
	mustMatch(t, n, "a", 0, 0, false)
}

func TestCompileCharClass(t *testing.T) {
	n := compileOne(t, "[a-z]+")
	mustMatch(t, n, "123abc456", 3, 6, true)
}

func TestCompileAnyChar(t *testing.T) {
	n := compileOne(t, "a.c")
	mustMatch(t, n, "xaYcx", 1, 4, true)
}

func TestCompileAnchors(t *testing.T) {
	n := compileOne(t, "^abc$")
	mustMatch(t, n, "abc", 0, 3, true)
	mustMatch(t, n, "xabc", 0, 0, false)
}

func TestCompileWordBoundary(t *testing.T) {
	n := compileOne(t, `\bcat\b`)
	mustMatch(t, n, "a cat sat", 2, 5, true)
	mustMatch(t, n, "concatenate", 0, 0, false)
}

func TestCompileCaptureGroups(t *testing.T) {
	n := compileOne(t, `(\d+)-(\d+)`)
	in := newTestInput("x12-34y")
	m := NewPikeVM(n).Search(in)
	if m == nil {
		t.Fatal("expected match")
	}
	if got := m.Captures[1]; got == nil || got[0] != 1 || got[1] != 3 {
		t.Errorf("group 1 = %v, want [1 3]", got)
	}
	if got := m.Captures[2]; got == nil || got[0] != 4 || got[1] != 6 {
		t.Errorf("group 2 = %v, want [4 6]", got)
	}
}

func TestCompileFoldCase(t *testing.T) {
	n := compileOne(t, "(?i)abc")
	mustMatch(t, n, "XABCX", 1, 4, true)
}

func TestCompileUnicodeClass(t *testing.T) {
	n := compileOne(t, `\p{L}+`)
	in := newTestInput("héllo")
	m := NewPikeVM(n).Search(in)
	if m == nil || m.Start != 0 {
		t.Fatalf("expected match at 0, got %v", m)
	}
}
