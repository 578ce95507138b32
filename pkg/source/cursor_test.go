package source

import "testing"

func TestNewStripsCarriageReturns(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"CRLF", "a\r\nb", "a\nb"},
		{"bare CR", "a\rb", "a\nb"},
		{"LF only", "a\nb", "a\nb"},
		{"no newlines", "abc", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.input, "test")
			if c.Rest() != tt.expected {
				t.Errorf("Rest() = %q, want %q", c.Rest(), tt.expected)
			}
			if c.Line() != 1 || c.Column() != 1 {
				t.Errorf("initial position = (%d, %d), want (1, 1)", c.Line(), c.Column())
			}
		})
	}
}

func TestAdvanceTracksLineAndColumn(t *testing.T) {
	c := New("ab\ncd", "test")

	if err := c.Advance(2); err != nil {
		t.Fatalf("Advance(2): %v", err)
	}
	if c.Line() != 1 || c.Column() != 3 {
		t.Errorf("after 2 advances: (%d, %d), want (1, 3)", c.Line(), c.Column())
	}

	if err := c.Advance(1); err != nil { // consumes '\n'
		t.Fatalf("Advance(1): %v", err)
	}
	if c.Line() != 2 || c.Column() != 1 {
		t.Errorf("after newline: (%d, %d), want (2, 1)", c.Line(), c.Column())
	}

	if err := c.Advance(2); err != nil {
		t.Fatalf("Advance(2): %v", err)
	}
	if !c.EOF() {
		t.Errorf("expected EOF after consuming all input")
	}
}

func TestAdvancePastEOFIsUnexpectedEOF(t *testing.T) {
	c := New("a", "test")
	if err := c.Advance(1); err != nil {
		t.Fatalf("Advance(1): %v", err)
	}
	err := c.Advance(1)
	if err == nil {
		t.Fatal("expected error advancing past EOF")
	}
	eof, ok := err.(*UnexpectedEOF)
	if !ok {
		t.Fatalf("expected *UnexpectedEOF, got %T", err)
	}
	_ = eof
}

func TestCloneIsIndependent(t *testing.T) {
	c := New("abcdef", "test")
	clone := c.Clone()
	if err := clone.Advance(3); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if c.Rest() != "abcdef" {
		t.Errorf("original mutated: Rest() = %q", c.Rest())
	}
	if clone.Rest() != "def" {
		t.Errorf("clone.Rest() = %q, want %q", clone.Rest(), "def")
	}
}

func TestAssignCommitsSpeculativeBranch(t *testing.T) {
	c := New("abcdef", "test")
	branch := c.Clone()
	if err := branch.Advance(3); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	c.Assign(branch)
	if c.Rest() != "def" {
		t.Errorf("after Assign, Rest() = %q, want %q", c.Rest(), "def")
	}
}

func TestCompareTo(t *testing.T) {
	base := New("abcdef", "test")
	ahead := base.Clone()
	if err := ahead.Advance(2); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if got := ahead.CompareTo(base); got != Forward {
		t.Errorf("ahead.CompareTo(base) = %v, want Forward", got)
	}
	if got := base.CompareTo(ahead); got != Behind {
		t.Errorf("base.CompareTo(ahead) = %v, want Behind", got)
	}

	same := base.Clone()
	if got := base.CompareTo(same); got != Equal {
		t.Errorf("base.CompareTo(same) = %v, want Equal", got)
	}

	other := New("abcdef", "other")
	if got := base.CompareTo(other); got != Irrelevant {
		t.Errorf("different names: got %v, want Irrelevant", got)
	}

	unrelated := New("xyz", "test")
	if got := base.CompareTo(unrelated); got != Irrelevant {
		t.Errorf("unrelated suffixes: got %v, want Irrelevant", got)
	}
}
