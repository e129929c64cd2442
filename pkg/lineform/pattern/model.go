package pattern

import (
	"fmt"
	"regexp"
)

// Model is the compiled, immutable form of a pattern document. All regular
// expressions are compiled and every structural invariant is verified, so a
// Model can never produce a schema error at run time.
//
// Model is safe for concurrent use by multiple goroutines: matching never
// mutates it, so one Model may serve any number of simultaneous runs.
type Model struct {
	Version    int
	Name       string
	BindObject string
	Elements   []Node
}

// Node is one compiled pattern element. The four implementations are
// LineNode, RepeatNode, OrNode, and AnyNode; no other implementations are
// possible.
type Node interface {
	// Path locates the node within the document, e.g.
	// "elements[2].or.alt[0].elements[1].line".
	Path() string

	isNode()
}

// LineNode matches the current input line against a compiled regular
// expression and binds its capture groups positionally.
type LineNode struct {
	// Regex is applied with search semantics: the match may start anywhere
	// in the line.
	Regex *regexp.Regexp

	// Source is the original regex text, kept for diagnostics.
	Source string

	// Bindings holds the destination property name for each capture group,
	// in group order. len(Bindings) always equals Regex.NumSubexp().
	Bindings []string

	path string
}

// RepeatNode matches Body repeatedly according to Mode, appending one object
// per successful iteration to the array named BindArray.
type RepeatNode struct {
	BindArray string
	Mode      RepeatMode

	// Count is the required iteration count when Mode is RepeatExactly, and
	// zero otherwise.
	Count int

	Body []Node

	path string
}

// OrNode tries each alternative sequence in order and commits to the first
// that matches.
type OrNode struct {
	Alternatives [][]Node

	path string
}

// AnyNode consumes exactly one line, whatever its content, and binds nothing.
type AnyNode struct {
	path string
}

func (n *LineNode) Path() string   { return n.path }
func (n *RepeatNode) Path() string { return n.path }
func (n *OrNode) Path() string     { return n.path }
func (n *AnyNode) Path() string    { return n.path }

func (*LineNode) isNode()   {}
func (*RepeatNode) isNode() {}
func (*OrNode) isNode()     {}
func (*AnyNode) isNode()    {}

// RepeatMode bounds how many iterations a RepeatNode attempts and how many
// it requires.
type RepeatMode int

const (
	// RepeatZeroOrMore iterates until the body fails; zero iterations is
	// still a success.
	RepeatZeroOrMore RepeatMode = iota

	// RepeatOneOrMore iterates until the body fails and requires at least
	// one successful iteration.
	RepeatOneOrMore

	// RepeatOptional attempts the body at most once; failure of that single
	// attempt is still a success with zero iterations.
	RepeatOptional

	// RepeatExactly attempts the body exactly Count times and requires all
	// of them to succeed.
	RepeatExactly
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatZeroOrMore:
		return "zeroOrMore"
	case RepeatOneOrMore:
		return "oneOrMore"
	case RepeatOptional:
		return "optional"
	case RepeatExactly:
		return "exactly"
	default:
		return fmt.Sprintf("RepeatMode(%d)", int(m))
	}
}
