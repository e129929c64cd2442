package lineform

import "testing"

func TestCursor_Basics(t *testing.T) {
	c := newCursor([]string{"a", "b", "c"})

	if c.exhausted() {
		t.Fatal("fresh cursor reported exhausted")
	}
	if got := c.remaining(); got != 3 {
		t.Errorf("remaining() = %d, want 3", got)
	}

	line, ok := c.current()
	if !ok || line != "a" {
		t.Errorf("current() = %q, %v, want %q, true", line, ok, "a")
	}

	c.advance()
	if got := c.pos(); got != 1 {
		t.Errorf("pos() = %d, want 1", got)
	}
	line, _ = c.current()
	if line != "b" {
		t.Errorf("current() after advance = %q, want %q", line, "b")
	}
}

func TestCursor_Exhaustion(t *testing.T) {
	c := newCursor([]string{"only"})
	c.advance()

	if !c.exhausted() {
		t.Error("cursor not exhausted after consuming all lines")
	}
	if _, ok := c.current(); ok {
		t.Error("current() reported ok on exhausted cursor")
	}
	if got := c.remaining(); got != 0 {
		t.Errorf("remaining() = %d, want 0", got)
	}
}

func TestCursor_CheckpointRestore(t *testing.T) {
	c := newCursor([]string{"a", "b", "c"})
	c.advance()

	cp := c.checkpoint()
	c.advance()
	c.advance()
	if !c.exhausted() {
		t.Fatal("expected exhausted before restore")
	}

	c.restore(cp)
	if got := c.pos(); got != 1 {
		t.Errorf("pos() after restore = %d, want 1", got)
	}
	line, ok := c.current()
	if !ok || line != "b" {
		t.Errorf("current() after restore = %q, %v, want %q, true", line, ok, "b")
	}
}

func TestCursor_Empty(t *testing.T) {
	c := newCursor(nil)
	if !c.exhausted() {
		t.Error("empty cursor not exhausted")
	}
	if got := c.pos(); got != 0 {
		t.Errorf("pos() = %d, want 0", got)
	}
}
