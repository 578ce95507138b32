package parsec

import "github.com/parsekit/lexparse/pkg/lexer"

// ChainLeftMore parses one or more expr separated by op, folding
// left-associatively: "10 - 3 - 4" with a subtracting op yields (10-3)-4.
func ChainLeftMore[T any](expr Parser[T], op Parser[func(T, T) T]) Parser[T] {
	return Bind(expr, func(first T) Parser[T] {
		return Parser[T]{Run: func(lx *lexer.Lexer) (T, error) {
			acc := first
			for {
				before := lx.Clone()
				f, err := op.Run(lx)
				if err != nil {
					if consumed(before, lx) {
						var zero T
						return zero, err
					}
					return acc, nil
				}
				rhs, err := expr.Run(lx)
				if err != nil {
					var zero T
					return zero, err
				}
				acc = f(acc, rhs)
			}
		}}
	})
}

// ChainRightMore parses one or more expr separated by op, folding
// right-associatively: "2 ^ 3 ^ 2" with an exponentiating op yields
// 2^(3^2).
func ChainRightMore[T any](expr Parser[T], op Parser[func(T, T) T]) Parser[T] {
	return Bind(expr, func(first T) Parser[T] {
		return Parser[T]{Run: func(lx *lexer.Lexer) (T, error) {
			before := lx.Clone()
			f, err := op.Run(lx)
			if err != nil {
				if consumed(before, lx) {
					var zero T
					return zero, err
				}
				return first, nil
			}
			rest, err := ChainRightMore(expr, op).Run(lx)
			if err != nil {
				var zero T
				return zero, err
			}
			return f(first, rest), nil
		}}
	})
}
