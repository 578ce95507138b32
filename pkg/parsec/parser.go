// Package parsec implements the monadic parser-combinator algebra: values
// wrapping an effectful function from a lexer.Lexer to a result, composed
// with bind/then/translate, with ordered-choice and parallel-choice
// backtracking, repetition with a consumption discipline, and error
// aggregation by furthest progress.
package parsec

import (
	"sync"

	"github.com/parsekit/lexparse/pkg/lexer"
)

// Parser is a value wrapping a parse function from a lexer to a result.
// Run may advance its lexer's cursor, whether it succeeds or fails (some
// parsers, such as Trivial and a failing Token, never do); callers that
// need a speculative, rollback-able attempt use Attempt
// or Test, or rely on a combinator (IfElse, Parallel, Many, …) that handles
// the cloning itself.
type Parser[T any] struct {
	Run func(lx *lexer.Lexer) (T, error)
	Tag string
}

// Trivial always succeeds with v, consuming nothing.
func Trivial[T any](v T) Parser[T] {
	return Parser[T]{Run: func(lx *lexer.Lexer) (T, error) { return v, nil }}
}

// Bind sequences p with a continuation that receives p's result and
// produces the next parser to run. Bind cannot be a method on Parser[T]
// because Go forbids a method from introducing a new type parameter beyond
// its receiver's.
func Bind[T, U any](p Parser[T], f func(T) Parser[U]) Parser[U] {
	return Parser[U]{Run: func(lx *lexer.Lexer) (U, error) {
		v, err := p.Run(lx)
		if err != nil {
			var zero U
			return zero, err
		}
		return f(v).Run(lx)
	}}
}

// Then runs p then q, discarding p's result.
func Then[T, U any](p Parser[T], q Parser[U]) Parser[U] {
	return Bind(p, func(T) Parser[U] { return q })
}

// Translate maps a successful result through f.
func Translate[T, U any](p Parser[T], f func(T) U) Parser[U] {
	return Bind(p, func(v T) Parser[U] { return Trivial(f(v)) })
}

// End requires p to be immediately followed by end-of-input, keeping p's
// value. This is the typed replacement for the source's saved-values
// `end(name)` sugar: compose explicitly with Bind instead of threading a
// mutable name->value map.
func End[T any](p Parser[T]) Parser[T] {
	return Bind(p, func(v T) Parser[T] { return Then(Eof(), Trivial(v)) })
}

// Expect replaces p's failure message with "expected <msg>" when p fails
// without consuming input; a failure that consumed input passes through
// unchanged, since by then a more specific error is usually more useful.
func (p Parser[T]) Expect(msg string) Parser[T] {
	return Parser[T]{
		Tag: msg,
		Run: func(lx *lexer.Lexer) (T, error) {
			before := lx.Clone()
			v, err := p.Run(lx)
			if err == nil {
				return v, nil
			}
			if !consumed(before, lx) {
				return v, newFailure(lx, "expected "+msg)
			}
			return v, err
		},
	}
}

// Attempt runs p on a cloned cursor, committing only on success. Unlike
// plain Run, a failing Attempt always leaves the caller's cursor exactly as
// it found it, even if p consumed input before failing.
func (p Parser[T]) Attempt() Parser[T] {
	return Parser[T]{Run: func(lx *lexer.Lexer) (T, error) {
		clone := lx.Clone()
		v, err := p.Run(clone)
		if err != nil {
			return v, err
		}
		lx.CommitFrom(clone)
		return v, nil
	}}
}

// Test runs p on a cloned cursor and returns its result without ever
// committing, even on success. Used to implement lookahead.
func (p Parser[T]) Test() Parser[T] {
	return Parser[T]{Run: func(lx *lexer.Lexer) (T, error) {
		clone := lx.Clone()
		return p.Run(clone)
	}}
}

// Lazy defers construction of a parser until its first use, and memoizes
// the result — the idiom that makes recursive grammars possible without a
// cyclic value graph: a grammar rule refers to itself (or a mutually
// recursive rule) through a thunk, not through the constructed Parser
// value itself.
func Lazy[T any](thunk func() Parser[T]) Parser[T] {
	var once sync.Once
	var cached Parser[T]
	return Parser[T]{Run: func(lx *lexer.Lexer) (T, error) {
		once.Do(func() { cached = thunk() })
		return cached.Run(lx)
	}}
}
