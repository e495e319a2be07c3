package numfmt

import "strings"

// TokenCursor is a bounded character cursor over a number-format string. It
// never raises errors; callers treat a failed match as a signal and try the
// next alternative, mirroring the format-string tokeniser's original
// ad hoc string slicing but with explicit, bounds-checked primitives.
type TokenCursor struct {
	src []rune
	pos int
}

const eof = rune(-1)

// NewTokenCursor creates a cursor positioned at the start of s.
func NewTokenCursor(s string) *TokenCursor {
	return &TokenCursor{src: []rune(s)}
}

// Pos returns the current cursor offset.
func (c *TokenCursor) Pos() int { return c.pos }

// AtEOF reports whether the cursor has consumed the whole input.
func (c *TokenCursor) AtEOF() bool { return c.pos >= len(c.src) }

// Peek returns the rune offset runes ahead of the cursor without consuming
// it, or eof if that position is out of bounds.
func (c *TokenCursor) Peek(offset int) rune {
	i := c.pos + offset
	if i < 0 || i >= len(c.src) {
		return eof
	}
	return c.src[i]
}

// Advance moves the cursor forward n runes, clamped to the input length.
func (c *TokenCursor) Advance(n int) {
	c.pos += n
	if c.pos > len(c.src) {
		c.pos = len(c.src)
	}
	if c.pos < 0 {
		c.pos = 0
	}
}

// MatchLiteral consumes s from the current position if present, optionally
// case-insensitively, and reports whether it matched.
func (c *TokenCursor) MatchLiteral(s string, caseInsensitive bool) bool {
	rs := []rune(s)
	if c.pos+len(rs) > len(c.src) {
		return false
	}
	got := string(c.src[c.pos : c.pos+len(rs)])
	want := s
	if caseInsensitive {
		got = strings.ToLower(got)
		want = strings.ToLower(want)
	}
	if got != want {
		return false
	}
	c.pos += len(rs)
	return true
}

// MatchRunOf consumes one-or-more consecutive occurrences of c and reports
// whether at least one was found.
func (c *TokenCursor) MatchRunOf(r rune) bool {
	start := c.pos
	for c.pos < len(c.src) && c.src[c.pos] == r {
		c.pos++
	}
	return c.pos > start
}

// MatchAnyOf consumes exactly one rune if it is contained in chars.
func (c *TokenCursor) MatchAnyOf(chars string) bool {
	if c.pos >= len(c.src) {
		return false
	}
	if strings.ContainsRune(chars, c.src[c.pos]) {
		c.pos++
		return true
	}
	return false
}

// MatchEnclosed consumes an open...close span inclusive, provided close
// appears later in the input starting from open. Returns false (and leaves
// the cursor untouched) if open isn't at the cursor or close never appears.
func (c *TokenCursor) MatchEnclosed(open, close rune) bool {
	if c.pos >= len(c.src) || c.src[c.pos] != open {
		return false
	}
	for i := c.pos + 1; i < len(c.src); i++ {
		if c.src[i] == close {
			c.pos = i + 1
			return true
		}
	}
	return false
}

// Slice returns the substring [start, start+n), clamped to the input.
func (c *TokenCursor) Slice(start, n int) string {
	if start < 0 {
		start = 0
	}
	end := start + n
	if end > len(c.src) {
		end = len(c.src)
	}
	if start >= end {
		return ""
	}
	return string(c.src[start:end])
}

// Remaining returns everything from the cursor to the end of input.
func (c *TokenCursor) Remaining() string {
	return string(c.src[c.pos:])
}
