package parsec

import (
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/parsekit/lexparse/pkg/lexfail"
	"github.com/parsekit/lexparse/pkg/lexer"
	"github.com/parsekit/lexparse/pkg/token"
)

// DefaultMaxRepeat bounds Many's iteration count, whether or not the
// wrapped parser consumes input, so a parser that succeeds without
// consuming cannot loop forever. The source used an unconditional
// infinity here; a reusable library needs a finite, overridable default —
// see WithMaxRepeat.
const DefaultMaxRepeat = 1_000_000

// Token reads the next token and requires it to have the given type. It
// never consumes on failure: on EOF, on a type mismatch, or on a lexical
// error (a malformed token), the cursor is restored to the position Token
// was called at.
func Token(tokenType string) Parser[*token.Token] {
	return Parser[*token.Token]{Tag: tokenType, Run: func(lx *lexer.Lexer) (*token.Token, error) {
		before := lx.Clone()
		tok, err := lx.Next()
		if err == io.EOF {
			lx.CommitFrom(before)
			return nil, newFailure(lx, "expected "+tokenType+", got end of input")
		}
		if err != nil {
			lx.CommitFrom(before)
			return nil, err
		}
		if tok.Type != tokenType {
			lx.CommitFrom(before)
			return nil, newFailure(lx, "expected "+tokenType+", got "+tok.Type)
		}
		return tok, nil
	}}
}

// AnyToken reads the next token regardless of type, failing without
// consuming at EOF. Unlike Token, it does not restore the cursor on a
// malformed-token error: that error propagates with its actual consumption.
func AnyToken() Parser[*token.Token] {
	return Parser[*token.Token]{Run: func(lx *lexer.Lexer) (*token.Token, error) {
		before := lx.Clone()
		tok, err := lx.Next()
		if err == io.EOF {
			lx.CommitFrom(before)
			return nil, newFailure(lx, "expected a token, got end of input")
		}
		if err != nil {
			return nil, err
		}
		return tok, nil
	}}
}

// TokenLiteral requires the next token to have the given type and literal
// exactly.
func TokenLiteral(tokenType, literal string) Parser[*token.Token] {
	return Parser[*token.Token]{Tag: literal, Run: func(lx *lexer.Lexer) (*token.Token, error) {
		before := lx.Clone()
		tok, err := lx.Next()
		if err == io.EOF {
			lx.CommitFrom(before)
			return nil, newFailure(lx, "expected "+literal+", got end of input")
		}
		if err != nil {
			return nil, err
		}
		if tok.Type != tokenType || tok.Literal != literal {
			lx.CommitFrom(before)
			return nil, newFailure(lx, "expected "+literal)
		}
		return tok, nil
	}}
}

// StringLit matches lit byte-for-byte against the cursor directly, without
// going through the lexer's token rules.
func StringLit(lit string) Parser[string] {
	return Parser[string]{Tag: lit, Run: func(lx *lexer.Lexer) (string, error) {
		cur := lx.Cursor()
		if !strings.HasPrefix(cur.Rest(), lit) {
			return "", newFailure(lx, "expected "+lit)
		}
		if err := cur.Advance(utf8.RuneCountInString(lit)); err != nil {
			return "", err
		}
		return lit, nil
	}}
}

// Eof succeeds, consuming nothing, only when no further token is
// available.
func Eof() Parser[struct{}] {
	return NotFollowedBy(Trivial(struct{}{}), AnyToken()).Expect("end of file")
}

// IfElse is Parsec-style ordered choice: p is tried first; q is tried only
// if p fails without having consumed any input. If p fails after
// consuming, IfElse returns p's failure immediately without trying q —
// wrap p in Attempt to allow backtracking past a consumed prefix.
func IfElse[T any](p, q Parser[T]) Parser[T] {
	return Parser[T]{Run: func(lx *lexer.Lexer) (T, error) {
		before := lx.Clone()
		v, err := p.Run(lx)
		if err == nil {
			return v, nil
		}
		if consumed(before, lx) {
			return v, err
		}
		v2, err2 := q.Run(lx)
		if err2 == nil {
			return v2, nil
		}
		if !consumed(before, lx) {
			return v2, lexfail.Combine(err, err2)
		}
		return v2, err2
	}}
}

// Optional succeeds with a pointer to p's value when p succeeds, or with
// nil (consuming nothing) when p fails without consuming.
func Optional[T any](p Parser[T]) Parser[*T] {
	return IfElse(Translate(p, func(v T) *T { return &v }), Trivial[*T](nil))
}

// Parallel races p and q on independent cursor clones. If exactly one
// succeeds, its branch commits. If both succeed, that is a grammar
// ambiguity — a distinct, uncaught error kind, since it signals a grammar
// bug rather than bad input. If both fail, their failures combine.
func Parallel[T any](p, q Parser[T]) Parser[T] {
	return Parser[T]{Run: func(lx *lexer.Lexer) (T, error) {
		pClone := lx.Clone()
		qClone := lx.Clone()
		pv, perr := p.Run(pClone)
		qv, qerr := q.Run(qClone)

		switch {
		case perr == nil && qerr == nil:
			var zero T
			return zero, &lexfail.AmbiguityError{
				SourceName: lx.Cursor().Name(),
				Line:       lx.Cursor().Line(),
				Column:     lx.Cursor().Column(),
			}
		case perr == nil:
			lx.CommitFrom(pClone)
			return pv, nil
		case qerr == nil:
			lx.CommitFrom(qClone)
			return qv, nil
		default:
			var zero T
			return zero, lexfail.Combine(perr, qerr)
		}
	}}
}

// Choices tries each alternative in order on its own cursor clone and
// commits to the first success. If every alternative fails, the combined
// failure carries only the failures from the branch(es) that consumed the
// most input.
func Choices[T any](ps ...Parser[T]) Parser[T] {
	return Parser[T]{Run: func(lx *lexer.Lexer) (T, error) {
		before := lx.Clone()
		type outcome struct {
			clone *lexer.Lexer
			err   error
		}
		var outcomes []outcome
		for _, p := range ps {
			clone := before.Clone()
			v, err := p.Run(clone)
			if err == nil {
				lx.CommitFrom(clone)
				return v, nil
			}
			outcomes = append(outcomes, outcome{clone: clone, err: err})
		}
		var zero T
		if len(outcomes) == 0 {
			return zero, newFailure(lx, "no alternative matched")
		}
		furthest := len(outcomes[0].clone.Cursor().Rest())
		for _, o := range outcomes[1:] {
			if n := len(o.clone.Cursor().Rest()); n < furthest {
				furthest = n
			}
		}
		var errs []error
		for _, o := range outcomes {
			if len(o.clone.Cursor().Rest()) == furthest {
				errs = append(errs, o.err)
			}
		}
		return zero, lexfail.Combine(errs...)
	}}
}

// ManyOption configures Many/More.
type ManyOption func(*manyConfig)

type manyConfig struct {
	maxRepeat int
	logger    *slog.Logger
}

// WithMaxRepeat overrides DefaultMaxRepeat for one Many/More call.
func WithMaxRepeat(n int) ManyOption {
	return func(c *manyConfig) { c.maxRepeat = n }
}

// Many iterates p, accumulating results, until p fails without consuming.
// If p fails after consuming, the whole Many fails with that failure.
// Iteration stops after MaxRepeat successes (DefaultMaxRepeat unless
// overridden), whether or not they consumed input, and returns the partial
// result; this is what stops a p that succeeds without consuming. Pass
// WithTrace to have that cutoff logged rather than pass silently.
func Many[T any](p Parser[T], opts ...ManyOption) Parser[[]T] {
	cfg := manyConfig{maxRepeat: DefaultMaxRepeat}
	for _, o := range opts {
		o(&cfg)
	}
	return Parser[[]T]{Run: func(lx *lexer.Lexer) ([]T, error) {
		var results []T
		for i := 0; i < cfg.maxRepeat; i++ {
			before := lx.Clone()
			v, err := p.Run(lx)
			if err != nil {
				if consumed(before, lx) {
					return results, err
				}
				return results, nil
			}
			results = append(results, v)
		}
		traceMaxRepeat(lx, cfg.maxRepeat, cfg.logger)
		return results, nil
	}}
}

// More is Many, requiring at least one success.
func More[T any](p Parser[T], opts ...ManyOption) Parser[[]T] {
	return Bind(p, func(first T) Parser[[]T] {
		return Translate(Many(p, opts...), func(rest []T) []T {
			return append([]T{first}, rest...)
		})
	})
}

// MoreSeparated parses one or more p separated by sep, keeping only p's
// values.
func MoreSeparated[T, S any](p Parser[T], sep Parser[S]) Parser[[]T] {
	return Bind(p, func(first T) Parser[[]T] {
		return Translate(Many(Then(sep, p)), func(rest []T) []T {
			return append([]T{first}, rest...)
		})
	})
}

// ManySeparated is MoreSeparated, allowing zero occurrences.
func ManySeparated[T, S any](p Parser[T], sep Parser[S]) Parser[[]T] {
	return IfElse(MoreSeparated(p, sep), Trivial([]T{}))
}

// MoreSeparatedOptionalEnd is MoreSeparated but tolerant of a dangling
// trailing separator: each `sep then p` pair is wrapped in Attempt so a
// trailing separator with nothing after it does not commit, and any
// leftover trailing separator is then consumed optionally.
func MoreSeparatedOptionalEnd[T, S any](p Parser[T], sep Parser[S]) Parser[[]T] {
	item := Then(sep, p).Attempt()
	return Bind(p, func(first T) Parser[[]T] {
		return Bind(Many(item), func(rest []T) Parser[[]T] {
			full := append([]T{first}, rest...)
			return Translate(Optional(sep), func(*S) []T { return full })
		})
	})
}

// MoreEndWith requires each of one-or-more p to be immediately followed by
// end, keeping p's values.
func MoreEndWith[T, E any](p Parser[T], end Parser[E]) Parser[[]T] {
	item := Bind(p, func(v T) Parser[T] { return Then(end, Trivial(v)) })
	return More(item)
}

// ManyEndWith is MoreEndWith, allowing zero occurrences.
func ManyEndWith[T, E any](p Parser[T], end Parser[E]) Parser[[]T] {
	item := Bind(p, func(v T) Parser[T] { return Then(end, Trivial(v)) })
	return Many(item)
}

// NotFollowedBy runs p to completion, keeping its result, then attempts q
// as pure lookahead: if q succeeds, NotFollowedBy fails; if q fails,
// NotFollowedBy succeeds with p's value. p always runs to completion before
// q is attempted — the safer of the two orderings the source exhibited
// inconsistently.
func NotFollowedBy[T, U any](p Parser[T], q Parser[U]) Parser[T] {
	return Bind(p, func(v T) Parser[T] {
		return Parser[T]{Run: func(lx *lexer.Lexer) (T, error) {
			_, err := q.Test().Run(lx)
			if err == nil {
				var zero T
				return zero, newFailure(lx, "expected not to be followed by a match")
			}
			return v, nil
		}}
	})
}

// Combine2 runs pa then pb, sequentially, and bundles their results
// through f. The source described combine2/3/4/Many as running their
// sub-parsers "in parallel," which is wrong for a sequence of tokens over
// one cursor; these run strictly in argument order.
func Combine2[A, B, R any](pa Parser[A], pb Parser[B], f func(A, B) R) Parser[R] {
	return Bind(pa, func(a A) Parser[R] {
		return Translate(pb, func(b B) R { return f(a, b) })
	})
}

// Combine3 is Combine2 for three parsers.
func Combine3[A, B, C, R any](pa Parser[A], pb Parser[B], pc Parser[C], f func(A, B, C) R) Parser[R] {
	return Bind(pa, func(a A) Parser[R] {
		return Bind(pb, func(b B) Parser[R] {
			return Translate(pc, func(c C) R { return f(a, b, c) })
		})
	})
}

// Combine4 is Combine2 for four parsers.
func Combine4[A, B, C, D, R any](pa Parser[A], pb Parser[B], pc Parser[C], pd Parser[D], f func(A, B, C, D) R) Parser[R] {
	return Bind(pa, func(a A) Parser[R] {
		return Bind(pb, func(b B) Parser[R] {
			return Bind(pc, func(c C) Parser[R] {
				return Translate(pd, func(d D) R { return f(a, b, c, d) })
			})
		})
	})
}

// CombineMany runs every parser in ps, strictly in order, and bundles their
// results through f.
func CombineMany[T, R any](ps []Parser[T], f func([]T) R) Parser[R] {
	return Parser[R]{Run: func(lx *lexer.Lexer) (R, error) {
		results := make([]T, 0, len(ps))
		for _, p := range ps {
			v, err := p.Run(lx)
			if err != nil {
				var zero R
				return zero, err
			}
			results = append(results, v)
		}
		return f(results), nil
	}}
}
