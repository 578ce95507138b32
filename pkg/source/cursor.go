// Package source implements the cursor over source text that the lexer and
// parser combinators advance, clone, and compare as they pull tokens.
package source

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Comparison is the result of comparing two cursors over (conceptually) the
// same source.
type Comparison int

const (
	// Equal means both cursors sit at the same position in the same source.
	Equal Comparison = iota
	// Forward means the receiver is further along than the other cursor.
	Forward
	// Behind means the receiver is behind the other cursor.
	Behind
	// Irrelevant means the two cursors come from different sources, or their
	// suffixes are not comparable (neither is a suffix of the other).
	Irrelevant
)

func (c Comparison) String() string {
	switch c {
	case Equal:
		return "equal"
	case Forward:
		return "forward"
	case Behind:
		return "behind"
	default:
		return "irrelevant"
	}
}

// Cursor is an immutable-feeling position in a source text: a name, a
// line/column, and the unconsumed suffix. Advancing past '\n' increments the
// line and resets the column to 1. Carriage returns are stripped at
// construction so that CRLF and LF sources behave identically.
type Cursor struct {
	name string
	text string
	rest string
	line int
	col  int
}

// New creates a cursor at the start of text, with \r stripped (CRLF -> LF).
// name identifies the source for error messages; it may be empty.
func New(text, name string) *Cursor {
	stripped := strings.ReplaceAll(text, "\r\n", "\n")
	stripped = strings.ReplaceAll(stripped, "\r", "\n")
	return &Cursor{
		name: name,
		text: stripped,
		rest: stripped,
		line: 1,
		col:  1,
	}
}

// UnexpectedEOF is returned by Advance when asked to move past the end of
// input. Per the stable external shape, it always reports position (0, 0)
// rather than the position at which EOF was encountered.
type UnexpectedEOF struct {
	SourceName string
}

func (e *UnexpectedEOF) Error() string {
	return fmt.Sprintf("%s - parse error at line %d, column %d: unexpected end of input", e.SourceName, 0, 0)
}

// Name returns the source name this cursor was constructed with.
func (c *Cursor) Name() string { return c.name }

// Line returns the current 1-based line number.
func (c *Cursor) Line() int { return c.line }

// Column returns the current 1-based column number.
func (c *Cursor) Column() int { return c.col }

// Rest returns the unconsumed suffix of the source text.
func (c *Cursor) Rest() string { return c.rest }

// EOF reports whether the cursor has consumed the entire source.
func (c *Cursor) EOF() bool { return len(c.rest) == 0 }

// Char returns the rune at the cursor without consuming it.
func (c *Cursor) Char() (rune, bool) {
	if c.EOF() {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(c.rest)
	return r, true
}

// Clone returns an independent copy of the cursor; mutating the clone never
// affects the receiver.
func (c *Cursor) Clone() *Cursor {
	clone := *c
	return &clone
}

// Assign overwrites the receiver in place with other's state. This is how a
// speculative branch commits: the branch ran on a clone, and success commits
// by assigning that clone back into the caller's cursor.
func (c *Cursor) Assign(other *Cursor) {
	*c = *other
}

// Advance moves the cursor forward by n runes. Each step fails with
// *UnexpectedEOF if the cursor is already at EOF; earlier runes consumed by
// the same call remain consumed (the caller should discard a cursor after an
// Advance error rather than continue using it).
func (c *Cursor) Advance(n int) error {
	if n < 0 {
		panic("source: Advance called with negative n")
	}
	for i := 0; i < n; i++ {
		if c.EOF() {
			return &UnexpectedEOF{SourceName: c.name}
		}
		r, size := utf8.DecodeRuneInString(c.rest)
		c.rest = c.rest[size:]
		if r == '\n' {
			c.line++
			c.col = 1
		} else {
			c.col++
		}
	}
	return nil
}

// CompareTo reports how the receiver relates to other. Two cursors are Equal
// when they share a source name, line, column, and unconsumed suffix. When
// the names match and one's suffix is a strict suffix of the other's, the
// cursor with the shorter (further-consumed) suffix is Forward and the other
// is Behind. Anything else — different names, or suffixes that are not
// nested — is Irrelevant.
func (c *Cursor) CompareTo(other *Cursor) Comparison {
	if c.name != other.name {
		return Irrelevant
	}
	if c.rest == other.rest {
		if c.line == other.line && c.col == other.col {
			return Equal
		}
		return Irrelevant
	}
	if strings.HasSuffix(other.rest, c.rest) {
		return Forward
	}
	if strings.HasSuffix(c.rest, other.rest) {
		return Behind
	}
	return Irrelevant
}
