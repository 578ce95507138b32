package parsec

import (
	"log/slog"

	"github.com/parsekit/lexparse/pkg/lexer"
)

// WithTrace installs logger as the destination for one Many/More call's
// diagnostics, such as hitting its MaxRepeat bound. It is a ManyOption, not
// a package setting: each call that wants tracing passes its own logger
// (or omits WithTrace for silence), so there is no shared mutable state for
// concurrent parses to race on.
func WithTrace(logger *slog.Logger) ManyOption {
	return func(c *manyConfig) { c.logger = logger }
}

// traceMaxRepeat warns that Many/More stopped iterating because it hit
// maxRepeat successes (consuming or not), rather than because the wrapped
// parser actually failed. logger is nil unless the call opted in
// via WithTrace, in which case this is a no-op.
func traceMaxRepeat(lx *lexer.Lexer, maxRepeat int, logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Warn("parsec: Many reached MaxRepeat without the wrapped parser failing",
		"maxRepeat", maxRepeat,
		"source", lx.Cursor().Name(),
		"line", lx.Cursor().Line(),
		"column", lx.Cursor().Column(),
	)
}
