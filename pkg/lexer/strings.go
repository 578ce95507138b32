package lexer

import (
	"strconv"
	"strings"

	"github.com/parsekit/lexparse/pkg/lexfail"
	"github.com/parsekit/lexparse/pkg/lexrules"
	"github.com/parsekit/lexparse/pkg/token"
)

// matchQuotedString tries each registered opening delimiter, longest
// first, against the cursor.
func (l *Lexer) matchQuotedString() (*token.Token, bool, error) {
	for _, delim := range l.rules.QuoteDelimitersByLenDesc() {
		if strings.HasPrefix(l.cursor.Rest(), delim) {
			spec := l.rules.Quotes()[delim]
			return l.readQuotedString(delim, spec)
		}
	}
	return nil, false, nil
}

func (l *Lexer) readQuotedString(delim string, spec lexrules.QuoteSpec) (*token.Token, bool, error) {
	startLine, startCol := l.cursor.Line(), l.cursor.Column()
	if err := l.advanceRunes(delim); err != nil {
		return nil, true, err
	}

	var decoded strings.Builder
	for {
		if l.cursor.EOF() {
			return nil, true, lexfail.NewUnexpectedEOF(l.cursor.Name(), "unterminated string")
		}
		if strings.HasPrefix(l.cursor.Rest(), spec.Stop) {
			if err := l.advanceRunes(spec.Stop); err != nil {
				return nil, true, err
			}
			break
		}

		r, _ := l.cursor.Char()

		if r == '\n' {
			if !spec.Multiline {
				return nil, true, lexfail.New(l.cursor.Name(), l.cursor.Line(), l.cursor.Column(), "line break in string")
			}
			decoded.WriteRune(r)
			if err := l.cursor.Advance(1); err != nil {
				return nil, true, err
			}
			continue
		}

		if r == '\\' && spec.Escape {
			if err := l.cursor.Advance(1); err != nil {
				return nil, true, err
			}
			s, err := l.decodeEscape()
			if err != nil {
				return nil, true, err
			}
			decoded.WriteString(s)
			continue
		}

		decoded.WriteRune(r)
		if err := l.cursor.Advance(1); err != nil {
			return nil, true, err
		}
	}

	tok := token.Token{
		Type:       spec.TokenType,
		Literal:    decoded.String(),
		SourceName: l.cursor.Name(),
		Line:       startLine,
		Column:     startCol,
	}
	return &tok, true, nil
}

// decodeEscape consumes and decodes one escape sequence; the leading
// backslash has already been consumed by the caller. Recognized forms, per
// the stable external shape: single-character a,b,f,n,r,t,v,\,',",? map to
// the conventional control/literal character; o/O + exactly 3 octal
// digits, x/X + exactly 2 hex digits, u/U + exactly 4 hex digits (a BMP
// code point), w/W + up to 6 hex digits (any code point, emitted via a
// single code-point-to-string conversion rather than UTF-16 surrogates);
// 0-9 reads 1-3 decimal digits greedily, starting with the digit already
// at the cursor.
func (l *Lexer) decodeEscape() (string, error) {
	if l.cursor.EOF() {
		return "", lexfail.NewUnexpectedEOF(l.cursor.Name(), "unterminated escape sequence")
	}
	r, _ := l.cursor.Char()

	switch r {
	case 'a', 'b', 'f', 'n', 'r', 't', 'v', '\\', '\'', '"', '?':
		if err := l.cursor.Advance(1); err != nil {
			return "", err
		}
		return string(simpleEscape(r)), nil
	case 'o', 'O':
		if err := l.cursor.Advance(1); err != nil {
			return "", err
		}
		v, err := l.readFixedDigits(3, isOctalDigit, 8)
		if err != nil {
			return "", err
		}
		return string(rune(v)), nil
	case 'x', 'X':
		if err := l.cursor.Advance(1); err != nil {
			return "", err
		}
		v, err := l.readFixedDigits(2, isHexDigit, 16)
		if err != nil {
			return "", err
		}
		return string(rune(v)), nil
	case 'u', 'U':
		if err := l.cursor.Advance(1); err != nil {
			return "", err
		}
		v, err := l.readFixedDigits(4, isHexDigit, 16)
		if err != nil {
			return "", err
		}
		return string(rune(v)), nil
	case 'w', 'W':
		if err := l.cursor.Advance(1); err != nil {
			return "", err
		}
		v, err := l.readUpToDigits(6, isHexDigit, 16)
		if err != nil {
			return "", err
		}
		return string(rune(v)), nil
	default:
		if isDecimalDigit(r) {
			v, err := l.readUpToDigits(3, isDecimalDigit, 10)
			if err != nil {
				return "", err
			}
			return string(rune(v)), nil
		}
		return "", lexfail.New(l.cursor.Name(), l.cursor.Line(), l.cursor.Column(), "malformed escape sequence")
	}
}

func simpleEscape(r rune) rune {
	switch r {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	default:
		return r // \\, \', \", \? decode to themselves
	}
}

func isOctalDigit(r rune) bool  { return r >= '0' && r <= '7' }
func isDecimalDigit(r rune) bool { return r >= '0' && r <= '9' }
func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// readFixedDigits reads exactly n digits satisfying isDigit and parses them
// in base. EOF before n digits is *lexfail.UnexpectedEOF; a non-matching
// character is a malformed-escape *lexfail.Failure at its own position.
func (l *Lexer) readFixedDigits(n int, isDigit func(rune) bool, base int) (int64, error) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if l.cursor.EOF() {
			return 0, lexfail.NewUnexpectedEOF(l.cursor.Name(), "unterminated escape sequence")
		}
		r, _ := l.cursor.Char()
		if !isDigit(r) {
			return 0, lexfail.New(l.cursor.Name(), l.cursor.Line(), l.cursor.Column(), "malformed escape sequence")
		}
		sb.WriteRune(r)
		if err := l.cursor.Advance(1); err != nil {
			return 0, err
		}
	}
	return strconv.ParseInt(sb.String(), base, 32)
}

// readUpToDigits greedily reads at most max digits satisfying isDigit,
// requiring at least one, and parses them in base.
func (l *Lexer) readUpToDigits(max int, isDigit func(rune) bool, base int) (int64, error) {
	var sb strings.Builder
	for i := 0; i < max; i++ {
		if l.cursor.EOF() {
			break
		}
		r, _ := l.cursor.Char()
		if !isDigit(r) {
			break
		}
		sb.WriteRune(r)
		if err := l.cursor.Advance(1); err != nil {
			return 0, err
		}
	}
	if sb.Len() == 0 {
		return 0, lexfail.New(l.cursor.Name(), l.cursor.Line(), l.cursor.Column(), "malformed escape sequence")
	}
	return strconv.ParseInt(sb.String(), base, 32)
}
