package parsec

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/parsekit/lexparse/pkg/lexer"
	"github.com/parsekit/lexparse/pkg/lexfail"
	"github.com/parsekit/lexparse/pkg/lexrules"
	"github.com/parsekit/lexparse/pkg/token"
)

func mustRules(t *testing.T, fr []lexrules.FreeRule, cfg lexrules.Config) *lexrules.RuleSet {
	t.Helper()
	rs, err := lexrules.New(fr, cfg)
	if err != nil {
		t.Fatalf("lexrules.New() error = %v", err)
	}
	return rs
}

func newLexer(t *testing.T, text string, fr []lexrules.FreeRule, cfg lexrules.Config) *lexer.Lexer {
	t.Helper()
	return lexer.New(text, "t", mustRules(t, fr, cfg))
}

var numbers = lexrules.Config{Numbers: &lexrules.NumberConfig{Integer: true}}

func intToken() Parser[int64] {
	return Translate(Token(token.Integer), func(tok *token.Token) int64 {
		v, _ := lexrules.ParseInteger(tok.Literal)
		return v
	})
}

func TestTrivialNeverConsumes(t *testing.T) {
	lx := newLexer(t, "1", nil, numbers)
	before := lx.Clone()
	if _, err := Trivial(42).Run(lx); err != nil {
		t.Fatalf("Trivial returned error: %v", err)
	}
	if consumed(before, lx) {
		t.Error("Trivial must not consume input")
	}
}

func TestTokenFailureDoesNotConsume(t *testing.T) {
	lx := newLexer(t, "abc", nil, numbers)
	before := lx.Clone()
	if _, err := Token(token.Integer).Run(lx); err == nil {
		t.Fatal("expected a failure reading an integer from \"abc\"")
	}
	if consumed(before, lx) {
		t.Error("a failed Token must restore the cursor")
	}
}

// S4: ifElse backtracks into its second branch only when the first failed
// without consuming; Attempt widens that to "failed at all."
func TestIfElseBacktracksOnlyWithoutConsumption(t *testing.T) {
	lx := newLexer(t, "1 x", nil, numbers)
	p := IfElse(
		Translate(Then(intToken(), TokenLiteral("ident", "ident-that-does-not-exist")), func(*token.Token) int64 { return 0 }),
		Trivial(int64(-1)),
	)
	if _, err := p.Run(lx); err == nil {
		t.Fatal("expected failure: first branch consumed the integer before failing, so ifElse must not fall through")
	}
}

func TestIfElseFallsThroughOnNoConsumption(t *testing.T) {
	lx := newLexer(t, "x", nil, numbers)
	p := IfElse(intToken(), Trivial(int64(-1)))
	v, err := p.Run(lx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v != -1 {
		t.Errorf("got %d, want -1", v)
	}
}

func TestAttemptAllowsBacktrackAfterConsumption(t *testing.T) {
	lx := newLexer(t, "1 x", nil, numbers)
	consuming := Translate(Then(intToken(), TokenLiteral("ident", "nope")), func(*token.Token) int64 { return 0 }).Attempt()
	p := IfElse(consuming, Trivial(int64(-1)))
	v, err := p.Run(lx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v != -1 {
		t.Errorf("got %d, want -1", v)
	}
	tok, err := lx.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if tok.Literal != "1" {
		t.Errorf("Attempt must restore the cursor on failure; got %q", tok.Literal)
	}
}

func TestTestNeverCommitsEvenOnSuccess(t *testing.T) {
	lx := newLexer(t, "1", nil, numbers)
	before := lx.Clone()
	if _, err := intToken().Test().Run(lx); err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if consumed(before, lx) {
		t.Error("Test must never commit, even when the wrapped parser succeeds")
	}
}

func TestManyStopsWithoutConsumingOnFailure(t *testing.T) {
	lx := newLexer(t, "1 2 x", nil, numbers)
	vs, err := Many(intToken()).Run(lx)
	if err != nil {
		t.Fatalf("Many() error = %v", err)
	}
	if len(vs) != 2 || vs[0] != 1 || vs[1] != 2 {
		t.Errorf("got %v, want [1 2]", vs)
	}
}

func TestManyPropagatesFailureAfterConsumption(t *testing.T) {
	lx := newLexer(t, `"unterminated`, nil, lexrules.Config{String: lexrules.StringConfig{`"`: {Escape: true}}})
	p := Many(AnyToken())
	if _, err := p.Run(lx); err == nil {
		t.Fatal("expected the unterminated string's failure to propagate through Many")
	}
}

func TestManyHitsMaxRepeatOnNonConsumingSuccess(t *testing.T) {
	lx := newLexer(t, "x", nil, numbers)
	zeroWidth := Trivial(0)
	vs, err := Many(zeroWidth, WithMaxRepeat(5)).Run(lx)
	if err != nil {
		t.Fatalf("Many() error = %v", err)
	}
	if len(vs) != 5 {
		t.Errorf("got %d results, want 5 (MaxRepeat bound)", len(vs))
	}
}

// WithTrace is a ManyOption, not process-global state: two Many calls in
// the same process can opt into different loggers (or none) without racing.
func TestWithTraceLogsOnlyForTheCallItWasPassedTo(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	lx := newLexer(t, "x", nil, numbers)
	if _, err := Many(Trivial(0), WithMaxRepeat(3), WithTrace(logger)).Run(lx); err != nil {
		t.Fatalf("Many() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected a trace warning when WithTrace is passed and MaxRepeat is hit")
	}

	buf.Reset()
	lx2 := newLexer(t, "x", nil, numbers)
	if _, err := Many(Trivial(0), WithMaxRepeat(3)).Run(lx2); err != nil {
		t.Fatalf("Many() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Error("a Many call without WithTrace must not write to a logger from an unrelated call")
	}
}

func TestMoreRequiresAtLeastOne(t *testing.T) {
	lx := newLexer(t, "x", nil, numbers)
	if _, err := More(intToken()).Run(lx); err == nil {
		t.Fatal("More must fail when the wrapped parser never succeeds")
	}
}

func TestOptionalYieldsNilWithoutConsuming(t *testing.T) {
	lx := newLexer(t, "x", nil, numbers)
	before := lx.Clone()
	v, err := Optional(intToken()).Run(lx)
	if err != nil {
		t.Fatalf("Optional() error = %v", err)
	}
	if v != nil {
		t.Errorf("got %v, want nil", v)
	}
	if consumed(before, lx) {
		t.Error("Optional must not consume when the wrapped parser fails without consuming")
	}
}

func TestMoreSeparatedParsesCommaList(t *testing.T) {
	lx := newLexer(t, "1,2,3", []lexrules.FreeRule{{Match: lexrules.Lit(","), TokenType: "comma"}}, numbers)
	vs, err := MoreSeparated(intToken(), Token("comma")).Run(lx)
	if err != nil {
		t.Fatalf("MoreSeparated() error = %v", err)
	}
	if len(vs) != 3 || vs[2] != 3 {
		t.Errorf("got %v, want [1 2 3]", vs)
	}
}

func TestMoreSeparatedOptionalEndToleratesTrailingSeparator(t *testing.T) {
	lx := newLexer(t, "1,2,", []lexrules.FreeRule{{Match: lexrules.Lit(","), TokenType: "comma"}}, numbers)
	vs, err := MoreSeparatedOptionalEnd(intToken(), Token("comma")).Run(lx)
	if err != nil {
		t.Fatalf("MoreSeparatedOptionalEnd() error = %v", err)
	}
	if len(vs) != 2 || vs[0] != 1 || vs[1] != 2 {
		t.Errorf("got %v, want [1 2]", vs)
	}
}

func TestManyEndWithRequiresTerminatorAfterEachItem(t *testing.T) {
	semi := lexrules.FreeRule{Match: lexrules.Lit(";"), TokenType: "semi"}
	lx := newLexer(t, "1;2;3;", []lexrules.FreeRule{semi}, numbers)
	vs, err := ManyEndWith(intToken(), Token("semi")).Run(lx)
	if err != nil {
		t.Fatalf("ManyEndWith() error = %v", err)
	}
	if len(vs) != 3 || vs[2] != 3 {
		t.Errorf("got %v, want [1 2 3]", vs)
	}
}

func TestNotFollowedByRunsPrimaryToCompletionFirst(t *testing.T) {
	lx := newLexer(t, "12", nil, numbers)
	v, err := NotFollowedBy(intToken(), intToken()).Run(lx)
	if err != nil {
		t.Fatalf("expected success: \"12\" lexes as one integer, leaving nothing to trigger the lookahead, got error %v", err)
	}
	if v != 12 {
		t.Errorf("got %d, want 12", v)
	}

	lx2 := newLexer(t, "1 2", nil, numbers)
	if _, err := NotFollowedBy(intToken(), intToken()).Run(lx2); err == nil {
		t.Fatal("expected failure: the second integer does follow")
	}
}

func TestEofSucceedsOnlyAtEndOfInput(t *testing.T) {
	lx := newLexer(t, "", nil, numbers)
	if _, err := Eof().Run(lx); err != nil {
		t.Fatalf("Eof() error = %v", err)
	}

	lx2 := newLexer(t, "1", nil, numbers)
	if _, err := Eof().Run(lx2); err == nil {
		t.Fatal("expected Eof to fail when a token remains")
	}
}

func TestParallelRaisesAmbiguityOnDoubleSuccess(t *testing.T) {
	lx := newLexer(t, "1", nil, numbers)
	p := Parallel(intToken(), Translate(intToken(), func(v int64) int64 { return v }))
	_, err := p.Run(lx)
	if err == nil {
		t.Fatal("expected an ambiguity error")
	}
	if _, ok := err.(*lexfail.AmbiguityError); !ok {
		t.Errorf("got %T, want *lexfail.AmbiguityError", err)
	}
}

func TestParallelCommitsTheSucceedingBranch(t *testing.T) {
	lx := newLexer(t, "1", nil, numbers)
	p := Parallel(Then(Token("never-matches"), Trivial(int64(0))), intToken())
	v, err := p.Run(lx)
	if err != nil {
		t.Fatalf("Parallel() error = %v", err)
	}
	if v != 1 {
		t.Errorf("got %d, want 1", v)
	}
}

func TestChoicesCombinesFurthestProgressFailures(t *testing.T) {
	lx := newLexer(t, "1x", []lexrules.FreeRule{{Match: lexrules.Lit("y"), TokenType: "y"}}, numbers)
	p := Choices(
		Token("y"),
		Then(intToken(), TokenLiteral("ident", "z")),
	)
	_, err := p.Run(lx)
	if err == nil {
		t.Fatal("expected all choices to fail")
	}
}

// S8: chainLeftMore folds left-associatively: 10-3-4 == (10-3)-4 == 3.
func TestChainLeftMoreFoldsLeftAssociative(t *testing.T) {
	minus := lexrules.FreeRule{Match: lexrules.Lit("-"), TokenType: "minus"}
	lx := newLexer(t, "10-3-4", []lexrules.FreeRule{minus}, numbers)
	op := Translate(Token("minus"), func(*token.Token) func(int64, int64) int64 {
		return func(a, b int64) int64 { return a - b }
	})
	v, err := ChainLeftMore(intToken(), op).Run(lx)
	if err != nil {
		t.Fatalf("ChainLeftMore() error = %v", err)
	}
	if v != 3 {
		t.Errorf("got %d, want 3", v)
	}
}

func TestChainRightMoreFoldsRightAssociative(t *testing.T) {
	caret := lexrules.FreeRule{Match: lexrules.Lit("^"), TokenType: "caret"}
	lx := newLexer(t, "2^3^2", []lexrules.FreeRule{caret}, numbers)
	op := Translate(Token("caret"), func(*token.Token) func(int64, int64) int64 {
		return func(a, b int64) int64 {
			r := int64(1)
			for i := int64(0); i < b; i++ {
				r *= a
			}
			return r
		}
	})
	v, err := ChainRightMore(intToken(), op).Run(lx)
	if err != nil {
		t.Fatalf("ChainRightMore() error = %v", err)
	}
	if v != 512 {
		t.Errorf("got %d, want 512 (2^(3^2))", v)
	}
}

func TestCombine3CombinesSequentially(t *testing.T) {
	minus := lexrules.FreeRule{Match: lexrules.Lit("-"), TokenType: "minus"}
	lx := newLexer(t, "1-2", []lexrules.FreeRule{minus}, numbers)
	p := Combine3(intToken(), Token("minus"), intToken(), func(a int64, _ *token.Token, b int64) int64 {
		return a - b
	})
	v, err := p.Run(lx)
	if err != nil {
		t.Fatalf("Combine3() error = %v", err)
	}
	if v != -1 {
		t.Errorf("got %d, want -1", v)
	}
}

func TestCombineManyRunsInOrder(t *testing.T) {
	lx := newLexer(t, "1 2 3", nil, numbers)
	p := CombineMany([]Parser[int64]{intToken(), intToken(), intToken()}, func(vs []int64) int64 {
		var sum int64
		for _, v := range vs {
			sum += v
		}
		return sum
	})
	v, err := p.Run(lx)
	if err != nil {
		t.Fatalf("CombineMany() error = %v", err)
	}
	if v != 6 {
		t.Errorf("got %d, want 6", v)
	}
}

func TestLazyMemoizesAndSupportsRecursion(t *testing.T) {
	var sum Parser[int64]
	sum = Lazy(func() Parser[int64] {
		return Bind(intToken(), func(first int64) Parser[int64] {
			return IfElse(
				Combine2(TokenLiteral("plus", "+"), Lazy(func() Parser[int64] { return sum }),
					func(_ *token.Token, rest int64) int64 { return first + rest }),
				Trivial(first),
			)
		})
	})
	lx := newLexer(t, "1+2+3", []lexrules.FreeRule{{Match: lexrules.Lit("+"), TokenType: "plus"}}, numbers)
	v, err := sum.Run(lx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v != 6 {
		t.Errorf("got %d, want 6", v)
	}
}
