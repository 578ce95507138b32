package lexrules

import (
	"regexp"

	"github.com/parsekit/lexparse/pkg/token"
)

// Associativity is the associativity of an operator declared in the
// precedence table. It is exported for callers implementing their own
// precedence-climbing parser; the lexer never consults it.
type Associativity int

const (
	AssocNone Associativity = iota
	AssocLeft
	AssocRight
)

func (a Associativity) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	default:
		return "none"
	}
}

// Matcher is either a literal lexeme or a regular expression pattern.
// Literal matchers become static-guard entries; regex matchers become
// dynamic-guard entries tried in declared order. The regex form is stored
// as an uncompiled pattern so RuleSet compilation can anchor it at '^'
// itself — a caller-supplied Matcher is never compiled ahead of New.
type Matcher struct {
	Literal string
	Pattern string
}

// Lit builds a literal Matcher.
func Lit(s string) Matcher { return Matcher{Literal: s} }

// Re builds a regex Matcher. The pattern should not include the leading '^'
// anchor; RuleSet compilation adds it.
func Re(pattern string) Matcher { return Matcher{Pattern: pattern} }

func (m Matcher) isRegex() bool { return m.Pattern != "" }

func (m Matcher) compile() (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + m.Pattern + ")")
}

// compileExact anchors the pattern at both ends, for a Matcher consulted
// against an already-extracted, complete lexeme (operator precedence
// lookup) rather than a prefix of the remaining input.
func (m Matcher) compileExact() (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + m.Pattern + ")$")
}

// Transform rewrites a raw token (matched text already classified with a
// provisional type) into the final token a FreeRule or keyword rule should
// produce. It is invoked in place of a flat TokenType mapping when the final
// type or literal depends on the matched text.
type Transform func(token.Token) (token.Token, error)

// FreeRule is a single user-declared guard: a pattern to match, and either a
// fixed TokenType or a Transform that computes the final token.
type FreeRule struct {
	Match     Matcher
	TokenType string
	Transform Transform
}

// ParenthesesPreset installs the literal guards for the named bracket pairs.
// Each installed guard's token type equals its literal lexeme.
type ParenthesesPreset struct {
	Round  bool // ( )
	Square bool // [ ]
	Curly  bool // { }
}

// NumberConfig controls numeric-literal recognition.
type NumberConfig struct {
	Integer   bool
	Float     bool
	Separator string // digit-group separator; default "_"
	// NoFollow defaults to true; set explicitly to false to allow a number
	// to be immediately followed by an identifier character.
	NoFollow *bool
	Signed   bool // allow a leading +/-
}

func (n NumberConfig) noFollow() bool {
	if n.NoFollow == nil {
		return true
	}
	return *n.NoFollow
}

// QuoteSpec describes one quoted-string delimiter's behaviour.
type QuoteSpec struct {
	TokenType string // defaults to token.QuotedBy(opening delimiter)
	Stop      string // closing delimiter; defaults to the opening delimiter
	Escape    bool   // whether backslash escapes are decoded; the zero value (false) keeps backslashes literal
	Multiline bool   // whether a literal newline is permitted inside the body
}

// StringConfig maps each opening quote delimiter to its behaviour.
type StringConfig map[string]QuoteSpec

// NestedComment configures block comments. A single non-empty Begin with an
// empty End is shorthand for an unnested block comment delimited by the same
// string at both ends (Begin is used as both begin and end, Nested=false).
type NestedComment struct {
	Begin  string
	End    string
	Nested bool
}

// KeywordRule declares one keyword; Match may be a literal or a regex.
type KeywordRule struct {
	Match Matcher
}

// OperatorRule is one entry in a precedence-table group. Match may be a
// literal or a regex, exactly like FreeRule.Match and KeywordRule.Match —
// there is no character-sniffing guesswork between the two forms.
type OperatorRule struct {
	Match         Matcher
	Associativity Associativity
}

// Config is the declarative preset compiled by New into a RuleSet. It
// mirrors the specification's preset shape: skipSpaces, lineComment,
// nestedComment, parentheses, numbers, string, keywords, operators.
type Config struct {
	// SkipSpaces defaults to true; set explicitly to false to disable
	// whitespace skipping between tokens.
	SkipSpaces    *bool
	LineComment   string
	NestedComment *NestedComment
	Parentheses   ParenthesesPreset
	Numbers       *NumberConfig
	String        StringConfig
	Keywords      []KeywordRule
	// Operators' outer index is the precedence level (0 = lowest); each
	// inner slice is a group of operators sharing that level.
	Operators [][]OperatorRule
}

func (c Config) skipSpaces() bool {
	if c.SkipSpaces == nil {
		return true
	}
	return *c.SkipSpaces
}

// ConfigError reports a problem in a Config discovered while compiling a
// RuleSet: an invalid separator character, an empty quote delimiter, an
// invalid associativity value, and so on. Configuration errors are not
// parser-recoverable — they indicate the grammar author made a mistake, not
// that the lexical input is bad.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return "lexrules: invalid config field " + e.Field + ": " + e.Msg
}
