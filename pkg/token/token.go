// Package token defines the Token value produced by the lexer and consumed
// by parser combinators. It is its own package, independent of both
// lexrules and lexer, because RuleSet transformers (lexrules) and the
// combinator algebra (parsec) both need the type without creating an import
// cycle between the rule compiler and the lexer that uses it.
package token

// Well-known type tags emitted by built-in presets.
const (
	Integer       = "integer"
	Float         = "float"
	NumberNoFollow = "__number_nofollow"
)

// Keyword returns the static/dynamic guard token type for a keyword lexeme.
func Keyword(word string) string { return "__kw_" + word }

// QuotedBy returns the default token type for a quoted-string delimiter.
func QuotedBy(delim string) string { return "__quoted_by_" + delim }

// Token is a single lexeme: its type tag, its decoded literal value, and its
// position in the named source.
type Token struct {
	Type       string
	Literal    string
	SourceName string
	Line       int
	Column     int
}
