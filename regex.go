// Package matchkit provides a high-performance regex engine for Go.
//
// matchkit achieves its speed through a multi-engine architecture: a
// priority-ordered thread-list simulator (PikeVM) for general matching, a
// bounded backtracker for simple capture-free character-class patterns, and
// literal/prefilter extraction to skip ahead to candidate positions. The
// public API mirrors stdlib regexp where possible, making it easy to
// migrate existing code.
//
// Basic usage:
//
//	re, err := matchkit.Compile(`\d+`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	match := re.Find([]byte("hello 123 world"))
//	fmt.Println(string(match)) // "123"
package matchkit

import (
	"bytes"
	"errors"
	"io"
	"regexp/syntax"
	"strconv"
	"unicode/utf8"

	"github.com/matchkit/matchkit/matchiter"
	"github.com/matchkit/matchkit/meta"
	"github.com/matchkit/matchkit/nfa"
	"github.com/matchkit/matchkit/primitive"
)

// Config controls compilation. Zero value is the default: Unicode-aware,
// leftmost-first, no size cap.
type Config struct {
	// ASCIIOnly restricts character classes, ., and \b to the ASCII range,
	// skipping the UTF-8 byte-sequence splitting compile.go otherwise does.
	ASCIIOnly bool
	// SizeLimit bounds the compiled NFA's estimated size in bytes, counted
	// as a fixed per-state estimate (0 = no limit).
	SizeLimit int
	// MaxDFAStates bounds the lazy DFA's state cache (0 = the meta engine's
	// default).
	MaxDFAStates int
}

// DefaultConfig returns the default compilation configuration. Callers may
// customize the returned value and pass it to CompileWithConfig.
func DefaultConfig() Config {
	return Config{}
}

// Regex represents a compiled regular expression.
//
// A Regex is safe to use concurrently from multiple goroutines, except for
// Longest, which mutates search behavior and must not race with a search.
type Regex struct {
	pattern string
	n       *nfa.NFA
	engine  *meta.Engine
	longest bool
}

// Compile compiles a regular expression pattern. Syntax is Perl-compatible
// (same as stdlib regexp).
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// CompilePOSIX is like Compile but enables leftmost-longest matching, the
// same semantics stdlib's regexp.CompilePOSIX provides.
func CompilePOSIX(pattern string) (*Regex, error) {
	re, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	re.Longest()
	return re, nil
}

// MustCompile is like Compile but panics if the pattern is invalid. The
// panic message matches stdlib regexp.MustCompile's format so code relying
// on it for diagnostics needs no changes when switching engines.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic(`regexp: Compile(` + "`" + pattern + "`" + `): ` + err.Error())
	}
	return re
}

// MustCompilePOSIX is like CompilePOSIX but panics if the pattern is
// invalid.
func MustCompilePOSIX(pattern string) *Regex {
	re, err := CompilePOSIX(pattern)
	if err != nil {
		panic(`regexp: CompilePOSIX(` + "`" + pattern + "`" + `): ` + err.Error())
	}
	return re
}

// CompileWithConfig compiles a pattern with custom configuration.
func CompileWithConfig(pattern string, config Config) (*Regex, error) {
	if config.SizeLimit < 0 {
		return nil, errors.New("regexp: invalid SizeLimit: must be >= 0")
	}
	nfaConfig := nfa.MultiConfig{
		CompilerConfig: nfa.CompilerConfig{ASCIIOnly: config.ASCIIOnly, UTF8: !config.ASCIIOnly, SizeLimit: config.SizeLimit},
		SizeLimit:      config.SizeLimit,
	}
	metaConfig := meta.DefaultConfig()
	if config.MaxDFAStates > 0 {
		metaConfig.MaxDFAStates = config.MaxDFAStates
	}
	engine, err := meta.CompileWithNFAConfig(pattern, metaConfig, nfaConfig)
	if err != nil {
		return nil, err
	}
	return &Regex{pattern: pattern, n: engine.NFA(), engine: engine}, nil
}

// Copy returns an independent copy of re; mutating Longest on the copy does
// not affect the original (stdlib regexp.Regexp.Copy is retained only for
// the no-longer-relevant concurrent-clone-for-speed reason; this module's
// engines are already safe for concurrent read-only Search calls, so Copy
// exists purely for Longest isolation).
func (r *Regex) Copy() *Regex {
	cp := &Regex{pattern: r.pattern, n: r.n, engine: r.engine, longest: r.longest}
	return cp
}

// Longest makes future searches prefer the leftmost-longest match (POSIX
// semantics) over the default leftmost-first (Perl) preference.
func (r *Regex) Longest() {
	r.longest = true
}

func (r *Regex) newInput(b []byte) *primitive.Input {
	in := primitive.NewInput(b)
	in.SetLongest(r.longest)
	return in
}

// searcher returns the engine a search should run through. Leftmost-longest
// (POSIX) matching is a PikeVM-only mode (meta.Engine.PikeVM's doc comment):
// under Longest, strategy selection is bypassed entirely so every search
// goes straight to the one tier that honors primitive.Input.Longest.
func (r *Regex) searcher() matchiter.Searcher {
	if r.longest {
		return r.engine.PikeVM()
	}
	return r.engine
}

// search runs the configured engine over b starting no earlier than at,
// returning the leftmost-first (or leftmost-longest, under Longest) match.
func (r *Regex) search(b []byte, at int) *nfa.MatchWithCaptures {
	in := r.newInput(b)
	in.SetSpan(at, len(b))
	return r.searcher().Search(in)
}

// IsMatchInput reports whether in's haystack span contains a match
// (spec.md §6, is_match), without computing capture positions. Exposes
// anchoring, earliest-exit, and prefilter knobs primitive.Input carries;
// Match/MatchString are the stdlib-shaped convenience over this.
func (r *Regex) IsMatchInput(in *primitive.Input) bool {
	if r.longest {
		return r.engine.PikeVM().Search(in) != nil
	}
	return r.engine.IsMatch(in)
}

// FindInput runs a search over in directly (spec.md §6, find).
func (r *Regex) FindInput(in *primitive.Input) *nfa.MatchWithCaptures {
	return r.searcher().Search(in)
}

// FindIter returns a non-overlapping match iterator over in's haystack
// starting at in's span start (spec.md §6, find_iter).
func (r *Regex) FindIter(in *primitive.Input) *matchiter.NonOverlapping {
	return matchiter.NewNonOverlapping(r.searcher(), in.Haystack()[in.Span().Start:], in.UTF8())
}

// --- stdlib-compatible convenience surface ---

// Match reports whether b contains any match of the pattern.
func (r *Regex) Match(b []byte) bool {
	return r.search(b, 0) != nil
}

// MatchString reports whether s contains any match of the pattern.
func (r *Regex) MatchString(s string) bool {
	return r.Match([]byte(s))
}

// MatchReader reports whether the text available on reader contains any
// match of the pattern. The entire reader is drained.
func (r *Regex) MatchReader(reader io.RuneReader) bool {
	return r.Match(drainRunes(reader))
}

func drainRunes(reader io.RuneReader) []byte {
	var buf bytes.Buffer
	for {
		c, _, err := reader.ReadRune()
		if err != nil {
			break
		}
		buf.WriteRune(c)
	}
	return buf.Bytes()
}

func (r *Regex) findBytes(b []byte) []byte {
	m := r.search(b, 0)
	if m == nil {
		return nil
	}
	return b[m.Start:m.End]
}

// Find returns a slice holding the text of the leftmost match in b, or nil.
func (r *Regex) Find(b []byte) []byte { return r.findBytes(b) }

// FindString returns a string holding the text of the leftmost match in s.
func (r *Regex) FindString(s string) string {
	b := r.findBytes([]byte(s))
	if b == nil {
		return ""
	}
	return string(b)
}

// FindIndex returns a two-element slice of integers defining the location
// of the leftmost match in b, or nil if there is no match.
func (r *Regex) FindIndex(b []byte) []int {
	m := r.search(b, 0)
	if m == nil {
		return nil
	}
	return []int{m.Start, m.End}
}

// FindStringIndex is like FindIndex but for strings.
func (r *Regex) FindStringIndex(s string) []int { return r.FindIndex([]byte(s)) }

// FindAllIndex returns the index pairs of all successive non-overlapping
// matches. If n >= 0, at most n matches are returned.
func (r *Regex) FindAllIndex(b []byte, n int) [][]int {
	if n == 0 {
		return nil
	}
	var out [][]int
	it := matchiter.NewNonOverlapping(r.searcher(), b, true)
	for {
		m := it.Next()
		if m == nil {
			break
		}
		out = append(out, []int{m.Start, m.End})
		if n > 0 && len(out) >= n {
			break
		}
	}
	return out
}

// FindAllIndexCompact is like FindAllIndex but appends [2]int pairs to out
// and returns the extended slice, avoiding a [][]int allocation per match.
func (r *Regex) FindAllIndexCompact(b []byte, n int, out [][2]int) [][2]int {
	if n == 0 {
		return out
	}
	it := matchiter.NewNonOverlapping(r.searcher(), b, true)
	count := 0
	for {
		m := it.Next()
		if m == nil {
			break
		}
		out = append(out, [2]int{m.Start, m.End})
		count++
		if n > 0 && count >= n {
			break
		}
	}
	return out
}

// FindAll returns the byte slices of all successive non-overlapping
// matches.
func (r *Regex) FindAll(b []byte, n int) [][]byte {
	idx := r.FindAllIndex(b, n)
	if idx == nil {
		return nil
	}
	out := make([][]byte, len(idx))
	for i, loc := range idx {
		out[i] = b[loc[0]:loc[1]]
	}
	return out
}

// FindAllString is like FindAll but for strings.
func (r *Regex) FindAllString(s string, n int) []string {
	matches := r.FindAll([]byte(s), n)
	if matches == nil {
		return nil
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = string(m)
	}
	return out
}

// FindAllStringIndex is like FindAllIndex but for strings.
func (r *Regex) FindAllStringIndex(s string, n int) [][]int {
	return r.FindAllIndex([]byte(s), n)
}

// Count reports the number of non-overlapping matches in b, capped at n if
// n >= 0.
func (r *Regex) Count(b []byte, n int) int {
	return len(r.FindAllIndex(b, n))
}

// CountString is like Count but for strings.
func (r *Regex) CountString(s string, n int) int {
	return r.Count([]byte(s), n)
}

// String returns the source text used to compile the regular expression.
func (r *Regex) String() string { return r.pattern }

// NumSubexp returns the number of capturing groups, not counting group 0.
func (r *Regex) NumSubexp() int {
	gi := r.n.Group(0)
	if gi == nil {
		return 0
	}
	return len(gi.Names) - 1
}

// SubexpNames returns the names of the capturing groups in the regular
// expression. SubexpNames()[0] is always "" (the whole match).
func (r *Regex) SubexpNames() []string {
	gi := r.n.Group(0)
	if gi == nil {
		return []string{""}
	}
	return gi.Names
}

// SubexpIndex returns the index of the first subexpression named name, or
// -1 if there is none, or if name is empty.
func (r *Regex) SubexpIndex(name string) int {
	if name == "" {
		return -1
	}
	for i, n := range r.SubexpNames() {
		if i > 0 && n == name {
			return i
		}
	}
	return -1
}

// LiteralPrefix returns a literal string that must begin any match, and
// whether the literal string comprises the entire regular expression.
func (r *Regex) LiteralPrefix() (prefix string, complete bool) {
	return literalPrefix(r.pattern)
}

// literalPrefix walks pattern's parsed AST for a leading run of literal
// runes, the same information stdlib regexp derives from its compiled
// program's prefix instructions.
func literalPrefix(pattern string) (string, bool) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return "", false
	}
	return literalPrefixNode(re.Simplify())
}

func literalPrefixNode(re *syntax.Regexp) (string, bool) {
	switch re.Op {
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			return "", false
		}
		return string(re.Rune), true
	case syntax.OpConcat:
		var buf []rune
		for _, sub := range re.Sub {
			if sub.Op == syntax.OpLiteral && sub.Flags&syntax.FoldCase == 0 {
				buf = append(buf, sub.Rune...)
				continue
			}
			return string(buf), false
		}
		return string(buf), true
	default:
		return "", false
	}
}

// --- submatch API ---

func (r *Regex) findSubmatch(b []byte) *nfa.MatchWithCaptures {
	return r.search(b, 0)
}

// FindSubmatch returns a slice holding the text of the leftmost match and
// the matches of all capture groups. Result[0] is the whole match; unmatched
// groups are nil. Returns nil if there is no match.
func (r *Regex) FindSubmatch(b []byte) [][]byte {
	m := r.findSubmatch(b)
	if m == nil {
		return nil
	}
	out := make([][]byte, len(m.Captures))
	for i, g := range m.Captures {
		if g == nil {
			continue
		}
		out[i] = b[g[0]:g[1]]
	}
	return out
}

// FindStringSubmatch is like FindSubmatch but for strings.
func (r *Regex) FindStringSubmatch(s string) []string {
	bs := r.FindSubmatch([]byte(s))
	if bs == nil {
		return nil
	}
	out := make([]string, len(bs))
	for i, b := range bs {
		if b != nil {
			out[i] = string(b)
		}
	}
	return out
}

// FindSubmatchIndex returns index pairs for the leftmost match and its
// capture groups. Result[2*i:2*i+2] is the indices for group i; unmatched
// groups have [-1 -1].
func (r *Regex) FindSubmatchIndex(b []byte) []int {
	m := r.findSubmatch(b)
	if m == nil {
		return nil
	}
	out := make([]int, len(m.Captures)*2)
	for i, g := range m.Captures {
		if g == nil {
			out[2*i], out[2*i+1] = -1, -1
			continue
		}
		out[2*i], out[2*i+1] = g[0], g[1]
	}
	return out
}

// FindStringSubmatchIndex is like FindSubmatchIndex but for strings.
func (r *Regex) FindStringSubmatchIndex(s string) []int {
	return r.FindSubmatchIndex([]byte(s))
}

// FindAllSubmatch is like FindSubmatch but finds successive non-overlapping
// matches.
func (r *Regex) FindAllSubmatch(b []byte, n int) [][][]byte {
	idx := r.FindAllSubmatchIndex(b, n)
	if idx == nil {
		return nil
	}
	out := make([][][]byte, len(idx))
	for i, loc := range idx {
		groups := make([][]byte, len(loc)/2)
		for g := range groups {
			s, e := loc[2*g], loc[2*g+1]
			if s < 0 {
				continue
			}
			groups[g] = b[s:e]
		}
		out[i] = groups
	}
	return out
}

// FindAllStringSubmatch is like FindAllSubmatch but for strings.
func (r *Regex) FindAllStringSubmatch(s string, n int) [][]string {
	all := r.FindAllSubmatch([]byte(s), n)
	if all == nil {
		return nil
	}
	out := make([][]string, len(all))
	for i, groups := range all {
		ss := make([]string, len(groups))
		for g, b := range groups {
			if b != nil {
				ss[g] = string(b)
			}
		}
		out[i] = ss
	}
	return out
}

// FindAllSubmatchIndex is like FindSubmatchIndex but finds successive
// non-overlapping matches.
func (r *Regex) FindAllSubmatchIndex(b []byte, n int) [][]int {
	if n == 0 {
		return nil
	}
	var out [][]int
	it := matchiter.NewNonOverlapping(r.searcher(), b, true)
	for {
		m := it.Next()
		if m == nil {
			break
		}
		loc := make([]int, len(m.Captures)*2)
		for i, g := range m.Captures {
			if g == nil {
				loc[2*i], loc[2*i+1] = -1, -1
				continue
			}
			loc[2*i], loc[2*i+1] = g[0], g[1]
		}
		out = append(out, loc)
		if n > 0 && len(out) >= n {
			break
		}
	}
	return out
}

// FindAllStringSubmatchIndex is like FindAllSubmatchIndex but for strings.
func (r *Regex) FindAllStringSubmatchIndex(s string, n int) [][]int {
	return r.FindAllSubmatchIndex([]byte(s), n)
}

// --- reader variants ---

// FindReaderIndex is like FindIndex but reads the input from reader until
// EOF or a match is found.
func (r *Regex) FindReaderIndex(reader io.RuneReader) []int {
	return r.FindIndex(drainRunes(reader))
}

// FindReaderSubmatchIndex is like FindSubmatchIndex but reads from reader.
func (r *Regex) FindReaderSubmatchIndex(reader io.RuneReader) []int {
	return r.FindSubmatchIndex(drainRunes(reader))
}

// --- marshaling ---

// MarshalText implements encoding.TextMarshaler by returning the source
// pattern.
func (r *Regex) MarshalText() ([]byte, error) {
	return []byte(r.pattern), nil
}

// UnmarshalText implements encoding.TextUnmarshaler by compiling data as a
// pattern.
func (r *Regex) UnmarshalText(data []byte) error {
	re, err := Compile(string(data))
	if err != nil {
		return err
	}
	*r = *re
	return nil
}

// --- split ---

// Split slices s into substrings separated by the pattern, returning a
// slice of those substrings between the matches. If n >= 0, at most n
// substrings are returned (the last of which is the unsplit remainder).
func (r *Regex) Split(s string, n int) []string {
	if n == 0 {
		return nil
	}
	idx := r.FindAllStringIndex(s, -1)
	if len(idx) == 0 {
		return []string{s}
	}

	var out []string
	last := 0
	for _, loc := range idx {
		if n > 0 && len(out) >= n-1 {
			break
		}
		if loc[0] == loc[1] && loc[0] == last {
			continue
		}
		out = append(out, s[last:loc[0]])
		last = loc[1]
	}
	out = append(out, s[last:])
	return out
}

// --- replace ---

// ReplaceAll replaces all matches of the pattern with repl, interpreting
// $name/$1-style references in repl the way Expand does.
func (r *Regex) ReplaceAll(src, repl []byte) []byte {
	return r.replace(src, repl)
}

// ReplaceAllLiteral replaces all matches with repl, treating repl as a
// literal string (no $ expansion).
func (r *Regex) ReplaceAllLiteral(src, repl []byte) []byte {
	return r.replaceFunc(src, func([]byte, []int) []byte { return repl })
}

// ReplaceAllFunc replaces all matches with the result of calling repl on
// the matched bytes.
func (r *Regex) ReplaceAllFunc(src []byte, repl func([]byte) []byte) []byte {
	return r.replaceFunc(src, func(m []byte, _ []int) []byte { return repl(m) })
}

// ReplaceAllString is like ReplaceAll but for strings.
func (r *Regex) ReplaceAllString(src, repl string) string {
	return string(r.ReplaceAll([]byte(src), []byte(repl)))
}

// ReplaceAllLiteralString is like ReplaceAllLiteral but for strings.
func (r *Regex) ReplaceAllLiteralString(src, repl string) string {
	return string(r.ReplaceAllLiteral([]byte(src), []byte(repl)))
}

// ReplaceAllStringFunc is like ReplaceAllFunc but for strings.
func (r *Regex) ReplaceAllStringFunc(src string, repl func(string) string) string {
	return string(r.ReplaceAllFunc([]byte(src), func(m []byte) []byte {
		return []byte(repl(string(m)))
	}))
}

func (r *Regex) replace(src, repl []byte) []byte {
	return r.replaceFunc(src, func(_ []byte, loc []int) []byte {
		return r.ExpandString(nil, string(repl), string(src), loc)
	})
}

func (r *Regex) replaceFunc(src []byte, repl func(match []byte, loc []int) []byte) []byte {
	idx := r.FindAllSubmatchIndex(src, -1)
	if idx == nil {
		return src
	}
	var out bytes.Buffer
	last := 0
	for _, loc := range idx {
		out.Write(src[last:loc[0]])
		out.Write(repl(src[loc[0]:loc[1]], loc))
		last = loc[1]
	}
	out.Write(src[last:])
	return out.Bytes()
}

// expand mirrors stdlib regexp's $name/$1 template substitution. It is the
// implementation shared by ExpandString and Expand.
func (r *Regex) expand(dst []byte, template []byte, src []byte, match []int) []byte {
	names := r.SubexpNames()
	for len(template) > 0 {
		dollar := bytes.IndexByte(template, '$')
		if dollar < 0 {
			dst = append(dst, template...)
			break
		}
		dst = append(dst, template[:dollar]...)
		template = template[dollar+1:]
		if len(template) == 0 {
			dst = append(dst, '$')
			break
		}

		if template[0] == '$' {
			dst = append(dst, '$')
			template = template[1:]
			continue
		}

		name, rest := parseExpandName(template)
		if len(name) == 0 {
			dst = append(dst, '$')
			continue
		}
		template = rest

		group := -1
		if n, err := strconv.Atoi(string(name)); err == nil {
			group = n
		} else {
			for i, nm := range names {
				if nm == string(name) {
					group = i
					break
				}
			}
		}
		if group >= 0 && 2*group+1 < len(match) && match[2*group] >= 0 {
			dst = append(dst, src[match[2*group]:match[2*group+1]]...)
		}
	}
	return dst
}

// parseExpandName extracts a $name or ${name} reference from the front of
// s (s has already had the leading '$' stripped), returning the name and
// the unconsumed remainder.
func parseExpandName(s []byte) (name, rest []byte) {
	if s[0] == '{' {
		end := bytes.IndexByte(s, '}')
		if end < 0 {
			return nil, s
		}
		return s[1:end], s[end+1:]
	}
	i := 0
	for i < len(s) && isExpandNameByte(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isExpandNameByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		return true
	case c >= '0' && c <= '9':
		return true
	}
	return false
}

// Expand appends template, with $name/$1 references substituted from
// match's index pairs into src, to dst.
func (r *Regex) Expand(dst []byte, template []byte, src []byte, match []int) []byte {
	return r.expand(dst, template, src, match)
}

// ExpandString is like Expand but the template is a string.
func (r *Regex) ExpandString(dst []byte, template string, src string, match []int) []byte {
	return r.expand(dst, []byte(template), []byte(src), match)
}

// --- package-level convenience functions, mirroring stdlib regexp ---

// MatchString reports whether the string s contains any match of pattern.
func MatchString(pattern, s string) (bool, error) {
	re, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}

// Match reports whether b contains any match of pattern.
func Match(pattern string, b []byte) (bool, error) {
	re, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.Match(b), nil
}

// MatchReader reports whether the text available on reader contains any
// match of pattern.
func MatchReader(pattern string, reader io.RuneReader) (bool, error) {
	re, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchReader(reader), nil
}

// specialBytes marks the ASCII bytes that are regex metacharacters and must
// be backslash-escaped for QuoteMeta, mirroring stdlib regexp's table.
var specialBytes [16]byte

func init() {
	for _, b := range []byte(`\.+*?()|[]{}^$`) {
		specialBytes[b%16] |= 1 << (b / 16)
	}
}

func isSpecial(b byte) bool {
	return b < utf8.RuneSelf && specialBytes[b%16]&(1<<(b/16)) != 0
}

// QuoteMeta escapes all regex metacharacters in s, so that the result
// matches s literally.
func QuoteMeta(s string) string {
	special := false
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i]) {
			special = true
			break
		}
	}
	if !special {
		return s
	}

	dst := make([]byte, 0, 2*len(s))
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i]) {
			dst = append(dst, '\\')
		}
		dst = append(dst, s[i])
	}
	return string(dst)
}
