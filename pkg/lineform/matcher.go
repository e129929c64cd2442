package lineform

import (
	"fmt"
	"log/slog"

	"github.com/lineform/lineform-go/pkg/lineform/pattern"
)

// matcher walks a compiled pattern over the input by recursive descent,
// writing bindings through the binder. One matcher serves exactly one run
// and is discarded afterwards.
//
// Failure policy: a nil return is a match. A recoverable *Failure is caught
// by the nearest enclosing repeat (which stops iterating) or or element
// (which tries the next alternative); at the point it is returned, the
// cursor has been restored to the failed sequence's entry. Terminal
// failures propagate unchanged with no restoration, so the position they
// captured survives to the caller.
type matcher struct {
	cur *cursor
	bnd *binder
	log *slog.Logger

	// sawEndOfInput records whether any attempted path ran out of input.
	// A run that fails with this set may succeed given more lines.
	sawEndOfInput bool
}

func (m *matcher) fail(kind FailureKind, path, detail string) *Failure {
	return m.failCause(kind, path, detail, nil)
}

func (m *matcher) failCause(kind FailureKind, path, detail string, cause *Failure) *Failure {
	f := &Failure{Kind: kind, Path: path, Pos: m.cur.pos(), Detail: detail}
	if cause != nil {
		f.Cause = cause
	}
	m.log.Debug("match failure", "kind", kind, "path", path, "line", f.Pos, "detail", detail)
	return f
}

// matchSequence matches nodes in order against the cursor. On a recoverable
// failure the cursor is restored to the sequence entry, so from the caller's
// viewpoint a sequence either commits as a whole or leaves the cursor
// untouched.
func (m *matcher) matchSequence(nodes []pattern.Node) *Failure {
	entry := m.cur.checkpoint()
	for _, n := range nodes {
		if f := m.matchNode(n); f != nil {
			if !f.Terminal() {
				m.cur.restore(entry)
			}
			return f
		}
	}
	return nil
}

func (m *matcher) matchNode(n pattern.Node) *Failure {
	switch node := n.(type) {
	case *pattern.LineNode:
		return m.matchLine(node)
	case *pattern.RepeatNode:
		return m.matchRepeat(node)
	case *pattern.OrNode:
		return m.matchOr(node)
	case *pattern.AnyNode:
		return m.matchAny(node)
	default:
		// pattern.Node is sealed; no other implementations exist.
		panic(fmt.Sprintf("lineform: unknown node type %T", n))
	}
}

func (m *matcher) matchLine(n *pattern.LineNode) *Failure {
	line, ok := m.cur.current()
	if !ok {
		m.sawEndOfInput = true
		return m.fail(FailEndOfInput, n.Path(), "input exhausted")
	}

	// Search semantics: the match may start anywhere in the line. Patterns
	// anchor with ^ and $ when they need a full-line match.
	groups := n.Regex.FindStringSubmatch(line)
	if groups == nil {
		return m.fail(FailRegexNoMatch, n.Path(), fmt.Sprintf("no match for /%s/", n.Source))
	}

	// Write captures in group order. A group that did not participate in
	// the match binds the empty string.
	for i, name := range n.Bindings {
		if err := m.bnd.writeProperty(name, groups[i+1]); err != nil {
			return m.fail(FailDuplicateBinding, n.Path(), err.Error())
		}
	}

	m.log.Debug("line matched", "path", n.Path(), "line", m.cur.pos(), "bindings", len(n.Bindings))
	m.cur.advance()
	return nil
}

func (m *matcher) matchAny(n *pattern.AnyNode) *Failure {
	if m.cur.exhausted() {
		m.sawEndOfInput = true
		return m.fail(FailEndOfInput, n.Path(), "input exhausted")
	}
	m.cur.advance()
	return nil
}

func (m *matcher) matchRepeat(n *pattern.RepeatNode) *Failure {
	entry := m.cur.checkpoint()
	prior, hadPrior := m.bnd.snapshotKey(n.BindArray)

	// limit is the most iterations this mode will attempt; -1 is unbounded.
	limit := -1
	switch n.Mode {
	case pattern.RepeatOptional:
		limit = 1
	case pattern.RepeatExactly:
		limit = n.Count
	}

	iterations := 0
	var stopped *Failure
	for limit < 0 || iterations < limit {
		start := m.cur.pos()
		m.bnd.pushScope()

		if f := m.matchSequence(n.Body); f != nil {
			if f.Terminal() {
				return f
			}
			m.bnd.discardScope()
			stopped = f
			break
		}

		// A successful iteration that consumed nothing would repeat forever;
		// the run is aborted instead of looping.
		if m.cur.pos() == start {
			m.bnd.discardScope()
			return m.fail(FailNonProductiveRepeat, n.Path(), "iteration matched without consuming input")
		}

		child := m.bnd.popScope()
		if err := m.bnd.appendToArray(n.BindArray, child); err != nil {
			return m.fail(FailDuplicateBinding, n.Path(), err.Error())
		}
		iterations++
	}

	switch n.Mode {
	case pattern.RepeatOneOrMore:
		if iterations == 0 {
			f := m.failCause(FailRepeatUnsatisfied, n.Path(), "no iteration matched, at least one required", stopped)
			m.cur.restore(entry)
			m.bnd.restoreKey(n.BindArray, prior, hadPrior)
			return f
		}
	case pattern.RepeatExactly:
		if iterations != n.Count {
			f := m.failCause(FailExactCountMismatch, n.Path(),
				fmt.Sprintf("%d iterations matched, exactly %d required", iterations, n.Count), stopped)
			m.cur.restore(entry)
			m.bnd.restoreKey(n.BindArray, prior, hadPrior)
			return f
		}
	}

	m.log.Debug("repeat matched", "path", n.Path(), "iterations", iterations)
	return nil
}

func (m *matcher) matchOr(n *pattern.OrNode) *Failure {
	entry := m.cur.checkpoint()

	var last *Failure
	for i, alt := range n.Alternatives {
		// Each alternative starts from the or's entry position and a private
		// copy of the active scope; a failed alternative leaves no trace.
		snap := m.bnd.snapshotScope()

		f := m.matchSequence(alt)
		if f == nil {
			m.log.Debug("alternative matched", "path", n.Path(), "alt", i)
			return nil
		}
		if f.Terminal() {
			return f
		}

		m.cur.restore(entry)
		m.bnd.restoreScope(snap)
		last = f
	}

	// Ordered choice is final: once every alternative has failed here there
	// is no later backtracking into this element.
	return m.failCause(FailOrExhausted, n.Path(), "no alternative matched", last)
}
