// Package lexer pulls tokens from a source.Cursor under the guidance of a
// compiled lexrules.RuleSet: whitespace and comment skipping, the
// static-guard fast path with longest-match fallback, the dynamic-guard
// regex scan, and quoted-string decoding (in strings.go).
package lexer

import (
	"io"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/parsekit/lexparse/pkg/lexfail"
	"github.com/parsekit/lexparse/pkg/lexrules"
	"github.com/parsekit/lexparse/pkg/source"
	"github.com/parsekit/lexparse/pkg/token"
)

// Lexer pulls tokens from a cursor using a compiled RuleSet. A Lexer is
// cheap to Clone: the clone shares the RuleSet and gets an independent
// cursor, which is how speculative parsing commits or discards a run of
// tokens.
type Lexer struct {
	cursor *source.Cursor
	rules  *lexrules.RuleSet
}

// New creates a Lexer over text, reading under rules.
func New(text, name string, rules *lexrules.RuleSet) *Lexer {
	return &Lexer{cursor: source.New(text, name), rules: rules}
}

// FromCursor creates a Lexer that reads from an existing cursor.
func FromCursor(cursor *source.Cursor, rules *lexrules.RuleSet) *Lexer {
	return &Lexer{cursor: cursor, rules: rules}
}

// Cursor exposes the lexer's underlying cursor, for callers (typically
// parser combinators) that need to clone, assign, or compare positions
// directly.
func (l *Lexer) Cursor() *source.Cursor { return l.cursor }

// Clone returns a Lexer with an independent cursor sharing this Lexer's
// RuleSet. Reading from the clone never affects the receiver.
func (l *Lexer) Clone() *Lexer {
	return &Lexer{cursor: l.cursor.Clone(), rules: l.rules}
}

// CommitFrom overwrites the receiver's cursor with clone's, the way a
// successful speculative branch commits its progress back to the caller.
func (l *Lexer) CommitFrom(clone *Lexer) {
	l.cursor.Assign(clone.cursor)
}

// CompareTo reports how the receiver's position relates to other's.
func (l *Lexer) CompareTo(other *Lexer) source.Comparison {
	return l.cursor.CompareTo(other.cursor)
}

// Next reads the next token. It returns io.EOF (not wrapped) when the
// source is exhausted; any other error is a *lexfail.Failure or
// *lexfail.UnexpectedEOF describing a malformed lexeme.
func (l *Lexer) Next() (*token.Token, error) {
	if l.rules.SkipSpaces() {
		if err := l.skipWhites(); err != nil {
			return nil, err
		}
	}
	if l.cursor.EOF() {
		return nil, io.EOF
	}

	if tok, matched, err := l.matchQuotedString(); matched {
		return tok, err
	}
	if tok, matched, err := l.matchStatic(); matched {
		return tok, err
	}
	if tok, matched, err := l.matchDynamic(); matched {
		return tok, err
	}

	return nil, lexfail.New(l.cursor.Name(), l.cursor.Line(), l.cursor.Column(), "invalid token")
}

// NextExceptEOF reads the next token, converting EOF into an
// *lexfail.UnexpectedEOF instead of returning io.EOF. onEOF, if non-nil, is
// invoked before the conversion — callers use it to run a closing check
// (e.g. popping an expectation) that should still fire even though the
// overall result will be an error.
func (l *Lexer) NextExceptEOF(onEOF func()) (*token.Token, error) {
	tok, err := l.Next()
	if err == io.EOF {
		if onEOF != nil {
			onEOF()
		}
		return nil, lexfail.NewUnexpectedEOF(l.cursor.Name(), "unexpected end of input")
	}
	return tok, err
}

// AllTokens drains the lexer, returning every token read before EOF or the
// first lexical error.
func (l *Lexer) AllTokens() ([]*token.Token, error) {
	var toks []*token.Token
	for {
		tok, err := l.Next()
		if err == io.EOF {
			return toks, nil
		}
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
	}
}

// Iterate returns a range-over-func iterator yielding tokens lazily. It
// stops at EOF without a final error pair, and stops immediately after
// yielding a lexical error.
func (l *Lexer) Iterate() iter.Seq2[*token.Token, error] {
	return func(yield func(*token.Token, error) bool) {
		for {
			tok, err := l.Next()
			if err == io.EOF {
				return
			}
			if !yield(tok, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// skipWhites consumes whitespace, then a line comment (up to but excluding
// the newline, which the next whitespace pass consumes), then a nested (or
// flat) block comment, repeating until none of the three makes progress.
func (l *Lexer) skipWhites() error {
	for {
		progressed := false

		for {
			r, ok := l.cursor.Char()
			if !ok || !unicode.IsSpace(r) {
				break
			}
			if err := l.cursor.Advance(1); err != nil {
				return err
			}
			progressed = true
		}

		if lc := l.rules.LineComment(); lc != "" && strings.HasPrefix(l.cursor.Rest(), lc) {
			if err := l.advanceRunes(lc); err != nil {
				return err
			}
			for {
				r, ok := l.cursor.Char()
				if !ok || r == '\n' {
					break
				}
				if err := l.cursor.Advance(1); err != nil {
					return err
				}
			}
			progressed = true
			continue
		}

		if nc := l.rules.NestedComment(); nc != nil && strings.HasPrefix(l.cursor.Rest(), nc.Begin) {
			if err := l.skipNestedComment(nc); err != nil {
				return err
			}
			progressed = true
			continue
		}

		if !progressed {
			return nil
		}
	}
}

// skipNestedComment consumes one block comment starting at the cursor,
// which must already be positioned at nc.Begin. When nc.Nested is true, an
// inner Begin increases a depth counter rather than ending the comment;
// otherwise matching is flat and the first End closes it.
func (l *Lexer) skipNestedComment(nc *lexrules.NestedComment) error {
	if err := l.advanceRunes(nc.Begin); err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		if l.cursor.EOF() {
			return lexfail.New(l.cursor.Name(), l.cursor.Line(), l.cursor.Column(), "unterminated comment")
		}
		switch {
		case nc.Nested && strings.HasPrefix(l.cursor.Rest(), nc.Begin):
			if err := l.advanceRunes(nc.Begin); err != nil {
				return err
			}
			depth++
		case strings.HasPrefix(l.cursor.Rest(), nc.End):
			if err := l.advanceRunes(nc.End); err != nil {
				return err
			}
			depth--
		default:
			if err := l.cursor.Advance(1); err != nil {
				return err
			}
		}
	}
	return nil
}

// matchStatic is the static-guard fast path: look up the first
// whitespace-delimited word verbatim, and fall back to a longest-prefix
// scan of the static guard (see RuleSet.StaticPrefixScan) when the whole
// word isn't itself a registered lexeme — the policy decided in
// SPEC_FULL.md's Open Questions §5.1.
func (l *Lexer) matchStatic() (*token.Token, bool, error) {
	word := firstWord(l.cursor.Rest())
	if word == "" {
		return nil, false, nil
	}
	if entry, ok := l.rules.StaticLookup(word); ok {
		return l.acceptStatic(word, entry)
	}
	if lexeme, entry, ok := l.rules.StaticPrefixScan(l.cursor.Rest()); ok {
		return l.acceptStatic(lexeme, entry)
	}
	return nil, false, nil
}

func (l *Lexer) acceptStatic(lexeme string, entry lexrules.GuardEntry) (*token.Token, bool, error) {
	line, col := l.cursor.Line(), l.cursor.Column()
	if err := l.advanceRunes(lexeme); err != nil {
		return nil, true, err
	}
	raw := token.Token{Literal: lexeme, SourceName: l.cursor.Name(), Line: line, Column: col}
	tok, err := entry.Apply(raw)
	if err != nil {
		return nil, true, err
	}
	return &tok, true, nil
}

// matchDynamic tries each dynamic guard regex in declared order. A guard
// that resolves to token.NumberNoFollow is a synthetic failure: the number
// literal matched but was immediately followed by a character that would
// make its boundary ambiguous.
func (l *Lexer) matchDynamic() (*token.Token, bool, error) {
	for _, g := range l.rules.DynamicGuards() {
		loc := g.Regex.FindString(l.cursor.Rest())
		if loc == "" {
			continue
		}
		line, col := l.cursor.Line(), l.cursor.Column()
		if err := l.advanceRunes(loc); err != nil {
			return nil, true, err
		}
		raw := token.Token{Literal: loc, SourceName: l.cursor.Name(), Line: line, Column: col}
		tok, err := g.Entry.Apply(raw)
		if err != nil {
			return nil, true, err
		}
		if tok.Type == token.NumberNoFollow {
			return nil, true, lexfail.New(l.cursor.Name(), line, col, "missing separator between number and following character")
		}
		return &tok, true, nil
	}
	return nil, false, nil
}

// firstWord returns the prefix of s up to (not including) the first
// whitespace rune, or all of s if it contains none.
func firstWord(s string) string {
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i]
	}
	return s
}

// advanceRunes advances the cursor past s, measured in runes rather than
// bytes — s is always a substring of the cursor's rest, produced by a
// regex or literal match against it.
func (l *Lexer) advanceRunes(s string) error {
	return l.cursor.Advance(utf8.RuneCountInString(s))
}
