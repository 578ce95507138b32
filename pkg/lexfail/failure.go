// Package lexfail defines the error values surfaced by the lexer and parser
// combinators: ParseFailure, its combinable composite form, and the
// unexpected-EOF and grammar-ambiguity error kinds layered on top of it.
package lexfail

import (
	"fmt"
	"strings"
)

// Failure is a single lexical or syntactic error at a specific source
// position, mirroring ParseFailure from the specification.
type Failure struct {
	Msg        string
	SourceName string
	Line       int
	Column     int
}

// New constructs a Failure at the given position.
func New(sourceName string, line, column int, msg string) *Failure {
	return &Failure{Msg: msg, SourceName: sourceName, Line: line, Column: column}
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s - parse error at line %d, column %d: %s", f.SourceName, f.Line, f.Column, f.Msg)
}

// Position reports where the failure occurred.
func (f *Failure) Position() (line, column int) { return f.Line, f.Column }

// Failures is a non-deduplicated composite of failures, formed by Combine.
// Order is preserved as given; combination is associative and commutative
// up to this ordering.
type Failures []*Failure

func (fs Failures) Error() string {
	if len(fs) == 1 {
		return fs[0].Error()
	}
	lines := make([]string, len(fs))
	for i, f := range fs {
		lines[i] = f.Error()
	}
	return fmt.Sprintf("%d parse errors:\n%s", len(fs), strings.Join(lines, "\n"))
}

// Combine merges any number of errors into one. nil errors are ignored.
// *Failure, *UnexpectedEOF and *Failures values are flattened rather than
// nested; any other
// error type (including AmbiguityError) is wrapped as a single-message
// Failure carrying no position, since it did not originate from lexing or
// parsing a position. Combine never deduplicates: two equal underlying
// failures both appear in the result.
func Combine(errs ...error) error {
	var all Failures
	for _, err := range errs {
		switch e := err.(type) {
		case nil:
			continue
		case *Failure:
			all = append(all, e)
		case *UnexpectedEOF:
			all = append(all, &e.Failure)
		case Failures:
			all = append(all, e...)
		case *Failures:
			all = append(all, (*e)...)
		default:
			all = append(all, &Failure{Msg: e.Error()})
		}
	}
	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	default:
		return all
	}
}

// UnexpectedEOF is a Failure subtype raised when end-of-input interrupts an
// in-flight token (mid-escape-sequence, mid-quoted-string, and so on). Per
// the stable external shape, it always carries position (0, 0) rather than
// the position at which EOF was actually encountered.
type UnexpectedEOF struct {
	Failure
}

// NewUnexpectedEOF constructs an UnexpectedEOF for the named source.
func NewUnexpectedEOF(sourceName, msg string) *UnexpectedEOF {
	return &UnexpectedEOF{Failure{Msg: msg, SourceName: sourceName, Line: 0, Column: 0}}
}

// AmbiguityError is raised by Parallel when both branches of a non-
// backtracking choice succeed, whatever spans they consumed. Unlike Failure, it
// indicates a grammar bug rather than a defect in the input, and it is never
// caught or combined by ifElse/choices/parallel — it propagates uncaught.
type AmbiguityError struct {
	SourceName string
	Line       int
	Column     int
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("%s - ambiguous parse at line %d, column %d: both branches of parallel succeeded", e.SourceName, e.Line, e.Column)
}
