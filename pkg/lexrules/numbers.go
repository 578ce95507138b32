package lexrules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/parsekit/lexparse/pkg/token"
)

// compileNumberGuards builds the dynamic guards for a NumberConfig. Order
// matters: the no-follow guard for a family must precede that family's
// accepting guard, and the float-accepting guard must precede the
// integer-accepting guard, because Go's regexp package matches
// leftmost-first (Perl-style), not leftmost-longest — without this ordering
// "1.5" would match the integer alternative first and be truncated to "1".
func compileNumberGuards(cfg NumberConfig) ([]dynamicEntry, error) {
	sep := cfg.Separator
	if sep == "" {
		sep = "_"
	}
	if len(sep) != 1 {
		return nil, &ConfigError{Field: "Numbers.Separator", Msg: "must be exactly one character"}
	}
	if strings.ContainsAny(sep, "0123456789abcdefABCDEFxXoObB.+-") {
		return nil, &ConfigError{Field: "Numbers.Separator", Msg: "must not collide with digits, sign, radix prefix, or '.'"}
	}
	sepQ := regexp.QuoteMeta(sep)

	group := func(digit string) string {
		// one digit, then any number of (separator? digit) pairs
		return digit + "(?:" + sepQ + "?" + digit + ")*"
	}

	dec := group(`[0-9]`)
	hex := `0[xX]` + group(`[0-9a-fA-F]`)
	oct := `0[oO]` + group(`[0-7]`)
	bin := `0[bB]` + group(`[01]`)

	sign := ""
	if cfg.Signed {
		sign = `[+-]?`
	}

	// Radix-prefixed families must precede the bare decimal family: both
	// hex and decimal would otherwise match the leading "0", but only the
	// radix-prefixed alternative consumes the whole literal.
	intBody := hex + "|" + oct + "|" + bin + "|" + dec
	intPattern := sign + "(?:" + intBody + ")"

	floatBody := dec + `\.` + dec + `(?:[eE][+-]?` + dec + `)?` + "|" + dec + `[eE][+-]?` + dec
	floatPattern := sign + "(?:" + floatBody + ")"

	var entries []dynamicEntry

	noFollow := cfg.noFollow()
	if !cfg.Integer && !cfg.Float {
		return entries, nil
	}

	// The no-follow guard combines whichever families are enabled, tried
	// before either accepting guard, so a literal like "10x" is rejected as
	// a malformed number rather than silently truncated to "10" followed by
	// an identifier "x".
	if noFollow {
		var alts []string
		if cfg.Float {
			alts = append(alts, floatPattern)
		}
		if cfg.Integer {
			alts = append(alts, intPattern)
		}
		combined := strings.Join(alts, "|")
		follow := `[A-Za-z_]`
		if sep == "_" {
			// '_' is then a digit separator inside the literal, not a
			// following character.
			follow = `[A-Za-z]`
		}
		noFollowRe := regexp.MustCompile(`^(?:` + combined + `)` + follow)
		entries = append(entries, dynamicEntry{
			Regex: noFollowRe,
			Entry: GuardEntry{Transform: func(raw token.Token) (token.Token, error) {
				raw.Type = token.NumberNoFollow
				return raw, nil
			}},
		})
	}

	if cfg.Float {
		re := regexp.MustCompile(`^` + floatPattern)
		entries = append(entries, dynamicEntry{
			Regex: re,
			Entry: GuardEntry{Transform: normalizeNumber(token.Float, sep)},
		})
	}
	if cfg.Integer {
		re := regexp.MustCompile(`^` + intPattern)
		entries = append(entries, dynamicEntry{
			Regex: re,
			Entry: GuardEntry{Transform: normalizeNumber(token.Integer, sep)},
		})
	}

	return entries, nil
}

// normalizeNumber strips digit-group separators from the matched literal
// before tagging it, so "1_000" and "1000" produce the same Literal.
func normalizeNumber(tokenType, sep string) Transform {
	return func(raw token.Token) (token.Token, error) {
		raw.Type = tokenType
		raw.Literal = stripSeparators(raw.Literal, sep)
		return raw, nil
	}
}

func stripSeparators(s, sep string) string {
	if sep == "" {
		return s
	}
	return strings.ReplaceAll(s, sep, "")
}

// ParseInteger parses a lexer-produced integer literal (already separator
// stripped) honouring its radix prefix.
func ParseInteger(literal string) (int64, error) {
	return strconv.ParseInt(literal, 0, 64)
}

// ParseFloat parses a lexer-produced float literal.
func ParseFloat(literal string) (float64, error) {
	return strconv.ParseFloat(literal, 64)
}
