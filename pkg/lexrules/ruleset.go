// Package lexrules compiles a declarative (freeRules, Config) pair into the
// matchable guards, comment/quote tables, and precedence table that the
// lexer consults. A RuleSet is immutable once built and may be shared
// across any number of Lexer instances.
package lexrules

import (
	"regexp"
	"sort"

	"github.com/parsekit/lexparse/pkg/token"
)

// GuardEntry is the action a matched guard takes: a fixed token type, or a
// Transform that computes the final token from the raw match.
type GuardEntry struct {
	TokenType string
	Transform Transform
}

// Apply produces the final token for a raw match, given the entry.
func (g GuardEntry) Apply(raw token.Token) (token.Token, error) {
	if g.Transform != nil {
		return g.Transform(raw)
	}
	raw.Type = g.TokenType
	return raw, nil
}

type dynamicEntry struct {
	Regex *regexp.Regexp
	Entry GuardEntry
}

// PrecedenceEntry is one operator's resolved precedence and associativity.
type PrecedenceEntry struct {
	Level         int
	Associativity Associativity
}

// RuleSet is the compiled form of a grammar's lexical rules. Construct one
// with New; it is immutable thereafter.
type RuleSet struct {
	skipSpaces bool

	staticGuard  map[string]GuardEntry
	staticByLen  []string // static guard keys, longest first (fallback scan order)
	dynamicGuard []dynamicEntry

	lineComment   string
	nestedComment *NestedComment

	quotes        map[string]QuoteSpec
	quotesByLen   []string // opening delimiters, longest first

	precedenceStatic  map[string]PrecedenceEntry
	precedenceDynamic []struct {
		Regex *regexp.Regexp
		Entry PrecedenceEntry
	}
}

// SkipSpaces reports whether this RuleSet's lexer skips whitespace between
// tokens.
func (r *RuleSet) SkipSpaces() bool { return r.skipSpaces }

// LineComment returns the configured line-comment prefix, or "" if none.
func (r *RuleSet) LineComment() string { return r.lineComment }

// NestedComment returns the configured block-comment rule, or nil.
func (r *RuleSet) NestedComment() *NestedComment { return r.nestedComment }

// Quotes returns the compiled quoted-string table, keyed by opening
// delimiter.
func (r *RuleSet) Quotes() map[string]QuoteSpec { return r.quotes }

// QuoteDelimitersByLenDesc returns the registered opening delimiters sorted
// by decreasing length, so a caller scanning for the longest matching
// opening delimiter at the cursor gets a deterministic answer even when two
// delimiters share a prefix (e.g. `"` and `"""`).
func (r *RuleSet) QuoteDelimitersByLenDesc() []string { return r.quotesByLen }

// Precedence looks up the precedence and associativity of an operator
// lexeme, trying the static table first and then the dynamic (regex) table
// in declared order. Dynamic entries are compiled anchored at both ends, so
// a regex operator matches only when it accounts for the whole lexeme, not
// a substring of it. ok is false if no entry matches.
func (r *RuleSet) Precedence(lexeme string) (entry PrecedenceEntry, ok bool) {
	if e, found := r.precedenceStatic[lexeme]; found {
		return e, true
	}
	for _, d := range r.precedenceDynamic {
		if d.Regex.MatchString(lexeme) {
			return d.Entry, true
		}
	}
	return PrecedenceEntry{}, false
}

// StaticLookup returns the guard entry for an exact literal lexeme, trying
// the fast-path whole-word lookup first; ok is false on a miss.
func (r *RuleSet) StaticLookup(word string) (GuardEntry, bool) {
	e, ok := r.staticGuard[word]
	return e, ok
}

// StaticPrefixScan returns the longest static-guard key that is a prefix of
// s, in decreasing-length order, and its entry. ok is false if no static key
// prefixes s. This is the documented fallback for the longest-literal-match
// policy: the static map is scanned once, by descending key length.
func (r *RuleSet) StaticPrefixScan(s string) (lexeme string, entry GuardEntry, ok bool) {
	for _, key := range r.staticByLen {
		if len(key) <= len(s) && s[:len(key)] == key {
			return key, r.staticGuard[key], true
		}
	}
	return "", GuardEntry{}, false
}

// DynamicGuards returns the dynamic guard list in declared order (including
// number-no-follow guards, which are ordered ahead of their accepting
// guard).
func (r *RuleSet) DynamicGuards() []struct {
	Regex *regexp.Regexp
	Entry GuardEntry
} {
	out := make([]struct {
		Regex *regexp.Regexp
		Entry GuardEntry
	}, len(r.dynamicGuard))
	for i, d := range r.dynamicGuard {
		out[i] = struct {
			Regex *regexp.Regexp
			Entry GuardEntry
		}{d.Regex, d.Entry}
	}
	return out
}

// New compiles freeRules and cfg into a RuleSet.
func New(freeRules []FreeRule, cfg Config) (*RuleSet, error) {
	r := &RuleSet{
		skipSpaces:       cfg.skipSpaces(),
		staticGuard:      map[string]GuardEntry{},
		lineComment:      cfg.LineComment,
		nestedComment:    cfg.NestedComment,
		quotes:           map[string]QuoteSpec{},
		precedenceStatic: map[string]PrecedenceEntry{},
	}
	// A Begin with an empty End is an unnested block comment delimited by
	// Begin at both ends.
	if nc := cfg.NestedComment; nc != nil && nc.Begin != "" && nc.End == "" {
		r.nestedComment = &NestedComment{Begin: nc.Begin, End: nc.Begin}
	}

	// 1. Free rules, in declared order: the user's escape hatch, tried first.
	for _, fr := range freeRules {
		entry := GuardEntry{TokenType: fr.TokenType, Transform: fr.Transform}
		if fr.Match.isRegex() {
			re, err := fr.Match.compile()
			if err != nil {
				return nil, &ConfigError{Field: "FreeRule.Match", Msg: err.Error()}
			}
			r.dynamicGuard = append(r.dynamicGuard, dynamicEntry{Regex: re, Entry: entry})
		} else {
			r.staticGuard[fr.Match.Literal] = entry
		}
	}

	// 2. Parentheses preset: literal guards whose type equals their literal.
	installPair := func(open, close string) {
		r.staticGuard[open] = GuardEntry{TokenType: open}
		r.staticGuard[close] = GuardEntry{TokenType: close}
	}
	if cfg.Parentheses.Round {
		installPair("(", ")")
	}
	if cfg.Parentheses.Square {
		installPair("[", "]")
	}
	if cfg.Parentheses.Curly {
		installPair("{", "}")
	}

	// 3. Keywords.
	for _, kw := range cfg.Keywords {
		if kw.Match.isRegex() {
			re, err := kw.Match.compile()
			if err != nil {
				return nil, &ConfigError{Field: "Keywords", Msg: err.Error()}
			}
			r.dynamicGuard = append(r.dynamicGuard, dynamicEntry{
				Regex: re,
				Entry: GuardEntry{Transform: func(raw token.Token) (token.Token, error) {
					raw.Type = token.Keyword(raw.Literal)
					return raw, nil
				}},
			})
		} else {
			word := kw.Match.Literal
			r.staticGuard[word] = GuardEntry{TokenType: token.Keyword(word)}
		}
	}

	// 4. Numbers: build regexes, with one combined no-follow guard ahead of
	// the accepting guards.
	if cfg.Numbers != nil {
		entries, err := compileNumberGuards(*cfg.Numbers)
		if err != nil {
			return nil, err
		}
		r.dynamicGuard = append(r.dynamicGuard, entries...)
	}

	// 5. Operators: precedence table only; never a matching guard (the
	// lexer must already be told how to recognise the lexeme via free
	// rules, keywords, or parentheses — this table is exported metadata
	// for callers doing precedence-climbing).
	for level, group := range cfg.Operators {
		for _, op := range group {
			pe := PrecedenceEntry{Level: level, Associativity: op.Associativity}
			if op.Match.isRegex() {
				// Anchored at both ends: Precedence looks up a complete,
				// already-extracted lexeme, not a prefix of remaining input.
				re, err := op.Match.compileExact()
				if err != nil {
					return nil, &ConfigError{Field: "Operators", Msg: err.Error()}
				}
				r.precedenceDynamic = append(r.precedenceDynamic, struct {
					Regex *regexp.Regexp
					Entry PrecedenceEntry
				}{re, pe})
			} else {
				r.precedenceStatic[op.Match.Literal] = pe
			}
		}
	}

	// 6. Strings.
	for delim, spec := range cfg.String {
		if delim == "" {
			return nil, &ConfigError{Field: "String", Msg: "empty quote delimiter"}
		}
		if spec.Stop == "" {
			spec.Stop = delim
		}
		if spec.TokenType == "" {
			spec.TokenType = token.QuotedBy(delim)
		}
		r.quotes[delim] = spec
	}
	r.quotesByLen = make([]string, 0, len(r.quotes))
	for delim := range r.quotes {
		r.quotesByLen = append(r.quotesByLen, delim)
	}
	sort.Slice(r.quotesByLen, func(i, j int) bool {
		if len(r.quotesByLen[i]) != len(r.quotesByLen[j]) {
			return len(r.quotesByLen[i]) > len(r.quotesByLen[j])
		}
		return r.quotesByLen[i] < r.quotesByLen[j]
	})

	// Precompute the longest-first fallback scan order for the static
	// guard, since the RuleSet is immutable after construction.
	r.staticByLen = make([]string, 0, len(r.staticGuard))
	for k := range r.staticGuard {
		r.staticByLen = append(r.staticByLen, k)
	}
	sort.Slice(r.staticByLen, func(i, j int) bool {
		if len(r.staticByLen[i]) != len(r.staticByLen[j]) {
			return len(r.staticByLen[i]) > len(r.staticByLen[j])
		}
		return r.staticByLen[i] < r.staticByLen[j]
	})

	return r, nil
}
