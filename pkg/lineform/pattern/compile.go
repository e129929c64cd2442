package pattern

import (
	"fmt"
	"regexp"
)

// Compile validates a document and compiles it into an immutable Model.
// Regular expressions are compiled here, and each line's binding count is
// checked against its capture group count. Compilation is all-or-nothing:
// any error yields a nil Model.
//
// Example:
//
//	doc, err := pattern.Load("invoice.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	model, err := pattern.Compile(doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(doc *Document) (*Model, error) {
	if doc == nil {
		return nil, fmt.Errorf("pattern document is nil")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	elements, err := compileElements("elements", doc.Elements)
	if err != nil {
		return nil, err
	}

	return &Model{
		Version:    doc.Version,
		Name:       doc.Name,
		BindObject: doc.BindObject,
		Elements:   elements,
	}, nil
}

// CompileBytes parses, validates, and compiles a pattern document from a
// byte slice in one step.
func CompileBytes(data []byte) (*Model, error) {
	doc, err := LoadBytes(data)
	if err != nil {
		return nil, err
	}
	return Compile(doc)
}

// CompileFile loads, validates, and compiles a pattern document from a file
// in one step.
//
// Example:
//
//	model, err := pattern.CompileFile("invoice.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
func CompileFile(path string) (*Model, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Compile(doc)
}

func compileElements(path string, elems []Element) ([]Node, error) {
	nodes := make([]Node, 0, len(elems))
	for i := range elems {
		e := &elems[i]
		epath := fmt.Sprintf("%s[%d]", path, i)

		// Validate has already established that exactly one kind is set.
		switch {
		case e.Line != nil:
			n, err := compileLine(epath+".line", e.Line)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)

		case e.Repeat != nil:
			body, err := compileElements(epath+".repeat.elements", e.Repeat.Elements)
			if err != nil {
				return nil, err
			}
			mode, count := compileMode(e.Repeat.Mode)
			nodes = append(nodes, &RepeatNode{
				BindArray: e.Repeat.BindArray,
				Mode:      mode,
				Count:     count,
				Body:      body,
				path:      epath + ".repeat",
			})

		case e.Or != nil:
			alts := make([][]Node, 0, len(e.Or.Elements))
			for j, alt := range e.Or.Elements {
				apath := fmt.Sprintf("%s.or.alt[%d].elements", epath, j)
				an, err := compileElements(apath, alt)
				if err != nil {
					return nil, err
				}
				alts = append(alts, an)
			}
			nodes = append(nodes, &OrNode{
				Alternatives: alts,
				path:         epath + ".or",
			})

		default:
			nodes = append(nodes, &AnyNode{path: epath + ".anyline"})
		}
	}
	return nodes, nil
}

func compileLine(path string, l *Line) (*LineNode, error) {
	re, err := regexp.Compile(l.Regex)
	if err != nil {
		return nil, &SchemaError{
			Path:    path,
			Field:   "regex",
			Message: "invalid regular expression",
			Cause:   err,
		}
	}

	bindings := make([]string, 0, len(l.BindProperties))
	for _, p := range l.BindProperties {
		bindings = append(bindings, p.Property)
	}

	// The binding list and the capture groups correspond positionally, so
	// their counts must agree before any input is ever matched.
	if len(bindings) != re.NumSubexp() {
		return nil, &SchemaError{
			Path:    path,
			Field:   "bindProperties",
			Message: fmt.Sprintf("%d bindings for %d capture groups", len(bindings), re.NumSubexp()),
		}
	}

	return &LineNode{
		Regex:    re,
		Source:   l.Regex,
		Bindings: bindings,
		path:     path,
	}, nil
}

func compileMode(m ModeSpec) (RepeatMode, int) {
	switch m.Keyword {
	case "oneOrMore":
		return RepeatOneOrMore, 0
	case "optional":
		return RepeatOptional, 0
	case "exactly":
		return RepeatExactly, m.Count
	default:
		return RepeatZeroOrMore, 0
	}
}
