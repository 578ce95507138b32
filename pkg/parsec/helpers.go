package parsec

import (
	"github.com/parsekit/lexparse/pkg/lexfail"
	"github.com/parsekit/lexparse/pkg/lexer"
	"github.com/parsekit/lexparse/pkg/source"
)

// consumed reports whether lx has advanced past before — the central
// consumption-discipline check every backtracking combinator relies on.
func consumed(before, lx *lexer.Lexer) bool {
	return lx.CompareTo(before) != source.Equal
}

// newFailure builds a *lexfail.Failure at lx's current position.
func newFailure(lx *lexer.Lexer, msg string) error {
	return lexfail.New(lx.Cursor().Name(), lx.Cursor().Line(), lx.Cursor().Column(), msg)
}
