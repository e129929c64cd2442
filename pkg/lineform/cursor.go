package lineform

// cursor is a checkpointable view over fully-buffered input lines. The
// position only ever increases along a successful match path; backtracking
// happens by restoring a previously taken checkpoint. Checkpoint and restore
// are O(1) integer copies, so the matcher can take one per attempted node
// without cost.
type cursor struct {
	lines []string
	idx   int
}

func newCursor(lines []string) *cursor {
	return &cursor{lines: lines}
}

// current returns the line at the cursor without consuming it. ok is false
// once the input is exhausted.
func (c *cursor) current() (line string, ok bool) {
	if c.idx >= len(c.lines) {
		return "", false
	}
	return c.lines[c.idx], true
}

// advance consumes the current line.
func (c *cursor) advance() {
	c.idx++
}

// pos returns the 0-based index of the current line.
func (c *cursor) pos() int {
	return c.idx
}

// checkpoint captures the current position for a later restore.
func (c *cursor) checkpoint() int {
	return c.idx
}

// restore rewinds the cursor to a previously captured checkpoint.
func (c *cursor) restore(cp int) {
	c.idx = cp
}

func (c *cursor) exhausted() bool {
	return c.idx >= len(c.lines)
}

func (c *cursor) remaining() int {
	return len(c.lines) - c.idx
}
