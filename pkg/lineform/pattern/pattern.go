// Package pattern defines the YAML pattern document format for lineform.
// A pattern document declares how structured data is extracted from
// line-oriented text: an ordered tree of line matchers, repetition groups,
// ordered alternatives, and catch-all elements, each optionally binding
// captured values into a nested output object.
package pattern

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	// MaxDocumentSize is the maximum allowed size for a pattern document (1MB).
	// This limit prevents denial-of-service attacks via extremely large files.
	MaxDocumentSize = 1 * 1024 * 1024 // 1 MB

	// MaxRegexLength is the maximum allowed length for a regex pattern (512 bytes).
	// This limit helps mitigate ReDoS (Regular Expression Denial of Service)
	// attacks by preventing excessively complex patterns.
	MaxRegexLength = 512

	// MaxElementCount is the maximum number of elements allowed in a document,
	// counted across all nesting levels. This limit prevents CPU exhaustion
	// attacks via documents with thousands of elements.
	MaxElementCount = 1000

	// MaxNestingDepth is the maximum nesting depth of repeat and or elements.
	MaxNestingDepth = 100

	// SupportedVersion is the currently supported document format version.
	SupportedVersion = 1
)

// Document represents the structure of a YAML pattern document.
// Pattern documents declare extraction rules for line-oriented text.
//
// Example YAML file:
//
//	version: 1
//	name: invoice
//	bindObject: invoice
//	elements:
//	  - line:
//	      regex: 'Invoice #(\d+)'
//	      bindProperties:
//	        - property: id
//	  - repeat:
//	      bindArray: items
//	      mode: oneOrMore
//	      elements:
//	        - line:
//	            regex: '(\S+)\s+(\d+)\s+([\d\.]+)'
//	            bindProperties:
//	              - property: name
//	              - property: qty
//	              - property: price
type Document struct {
	// Version is the document format version. Currently only version 1 is
	// supported.
	Version int `yaml:"version"`

	// Name identifies the document. Required.
	Name string `yaml:"name"`

	// Comment is free-form documentation carried by the document.
	Comment string `yaml:"comment,omitempty"`

	// BindObject, when set, wraps the output under a single root key of
	// this name.
	BindObject string `yaml:"bindObject,omitempty"`

	// Elements is the top-level sequence of pattern elements. Every element
	// must match, in order, for the document to match.
	Elements []Element `yaml:"elements"`
}

// Element is one entry in a pattern sequence. Exactly one of the four node
// kinds must be set.
type Element struct {
	Line   *Line   `yaml:"line,omitempty"`
	Repeat *Repeat `yaml:"repeat,omitempty"`
	Or     *Or     `yaml:"or,omitempty"`

	// AnyLine is held as yaml.Node (not a pointer type) so that presence can
	// be detected regardless of the value form: `anyline: {}` and a bare
	// `anyline:` both count. Kind == 0 means the key was absent.
	AnyLine yaml.Node `yaml:"anyline,omitempty"`
}

// kind returns the name of the single node kind set on this element, or ""
// when zero or more than one kind is set.
func (e *Element) kind() string {
	var kind string
	n := 0
	if e.Line != nil {
		kind, n = "line", n+1
	}
	if e.Repeat != nil {
		kind, n = "repeat", n+1
	}
	if e.Or != nil {
		kind, n = "or", n+1
	}
	if e.AnyLine.Kind != 0 {
		kind, n = "anyline", n+1
	}
	if n != 1 {
		return ""
	}
	return kind
}

// Line matches a single input line against a regular expression.
// Capture groups are bound positionally: the first group to the first
// property, the second group to the second, and so on. Group names in the
// regex (?P<name>...) are ignored; only bindProperties assigns names.
type Line struct {
	// Regex is the regular expression applied to the current line with
	// search semantics (a match may start anywhere in the line). Anchor with
	// ^ and $ to require a full-line match.
	Regex string `yaml:"regex"`

	// BindProperties names the destination property for each capture group,
	// in group order. The number of entries must equal the number of capture
	// groups in Regex.
	BindProperties []Property `yaml:"bindProperties,omitempty"`

	Comment string `yaml:"comment,omitempty"`
}

// Property names a single binding destination.
type Property struct {
	Property string `yaml:"property"`
}

// Repeat matches its body sequence zero or more times according to Mode,
// collecting one object per successful iteration into the array named by
// BindArray.
type Repeat struct {
	// BindArray names the array property in the enclosing scope that
	// collects one object per iteration. Required.
	BindArray string `yaml:"bindArray"`

	// Mode bounds the repetition: zeroOrMore, oneOrMore, optional, or
	// {exactly: n}.
	Mode ModeSpec `yaml:"mode"`

	// Elements is the body sequence matched once per iteration.
	Elements []Element `yaml:"elements"`

	Comment string `yaml:"comment,omitempty"`
}

// Or tries each alternative sequence in order and commits to the first one
// that matches (ordered choice).
type Or struct {
	// Elements is the ordered list of alternatives; each alternative is
	// itself a sequence of elements.
	Elements [][]Element `yaml:"elements"`

	Comment string `yaml:"comment,omitempty"`
}

// ModeSpec is the YAML form of a repetition mode. Two forms are accepted:
//
//	Scalar:  mode: oneOrMore            → Keyword "oneOrMore"
//	Mapping: mode: {exactly: 3}         → Keyword "exactly", Count 3
//
// Keyword validity is checked by Document.Validate, not here.
type ModeSpec struct {
	Keyword string
	Count   int
}

// UnmarshalYAML decodes either mode form. Structural errors (a sequence, a
// mapping without the exactly key) fail here; keyword and count validity is
// deferred to Validate.
func (m *ModeSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		m.Keyword = value.Value
		return nil
	case yaml.MappingNode:
		var form struct {
			Exactly *int `yaml:"exactly"`
		}
		if err := value.Decode(&form); err != nil {
			return err
		}
		if form.Exactly == nil {
			return fmt.Errorf("mode mapping must have an exactly key")
		}
		m.Keyword = "exactly"
		m.Count = *form.Exactly
		return nil
	default:
		return fmt.Errorf("mode must be a keyword or {exactly: n}")
	}
}

// Validate performs schema-level validation on the document.
// It checks for:
//   - Supported version number and required name
//   - At least one element, with exactly one node kind per element
//   - Required fields per kind (regex, bindArray, mode)
//   - Non-empty repeat bodies and or alternatives
//   - Regex length, element count, and nesting depth limits
//
// Note: This function does NOT compile regular expressions. Regex
// compilation and the capture-group/binding count check happen in Compile()
// to avoid duplicating work.
func (d *Document) Validate() error {
	if d.Version != SupportedVersion {
		return &SchemaError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (only version %d is supported)", d.Version, SupportedVersion),
		}
	}

	if d.Name == "" {
		return &SchemaError{
			Field:   "name",
			Message: "name is required",
		}
	}

	if len(d.Elements) == 0 {
		return &SchemaError{
			Field:   "elements",
			Message: "at least one element is required",
		}
	}

	count := 0
	return validateElements("elements", d.Elements, 1, &count)
}

func validateElements(path string, elems []Element, depth int, count *int) error {
	if depth > MaxNestingDepth {
		return &SchemaError{
			Path:    path,
			Message: fmt.Sprintf("nesting too deep (max %d levels)", MaxNestingDepth),
		}
	}

	for i := range elems {
		e := &elems[i]
		epath := fmt.Sprintf("%s[%d]", path, i)

		*count++
		if *count > MaxElementCount {
			return &SchemaError{
				Path:    epath,
				Message: fmt.Sprintf("too many elements, maximum allowed is %d", MaxElementCount),
			}
		}

		kind := e.kind()
		if kind == "" {
			return &SchemaError{
				Path:    epath,
				Message: "element must have exactly one of line, repeat, or, anyline",
			}
		}

		var err error
		switch kind {
		case "line":
			err = validateLine(epath+".line", e.Line)
		case "repeat":
			err = validateRepeat(epath+".repeat", e.Repeat, depth, count)
		case "or":
			err = validateOr(epath+".or", e.Or, depth, count)
		case "anyline":
			// No fields to check.
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func validateLine(path string, l *Line) error {
	if l.Regex == "" {
		return &SchemaError{
			Path:    path,
			Field:   "regex",
			Message: "regex is required",
		}
	}

	// Check regex length for ReDoS protection.
	if len(l.Regex) > MaxRegexLength {
		return &SchemaError{
			Path:    path,
			Field:   "regex",
			Message: fmt.Sprintf("regex too long: %d bytes (max %d)", len(l.Regex), MaxRegexLength),
		}
	}

	for i, p := range l.BindProperties {
		if p.Property == "" {
			return &SchemaError{
				Path:    path,
				Field:   fmt.Sprintf("bindProperties[%d].property", i),
				Message: "property name is required",
			}
		}
	}

	return nil
}

func validateRepeat(path string, r *Repeat, depth int, count *int) error {
	if r.BindArray == "" {
		return &SchemaError{
			Path:    path,
			Field:   "bindArray",
			Message: "bindArray is required",
		}
	}

	switch r.Mode.Keyword {
	case "":
		return &SchemaError{
			Path:    path,
			Field:   "mode",
			Message: "mode is required",
		}
	case "zeroOrMore", "oneOrMore", "optional":
		// Bare keywords take no count.
	case "exactly":
		if r.Mode.Count < 1 {
			return &SchemaError{
				Path:    path,
				Field:   "mode",
				Message: fmt.Sprintf("exactly count must be at least 1, got %d", r.Mode.Count),
			}
		}
	default:
		return &SchemaError{
			Path:    path,
			Field:   "mode",
			Message: fmt.Sprintf("unknown mode %q (want zeroOrMore, oneOrMore, optional, or {exactly: n})", r.Mode.Keyword),
		}
	}

	// An empty body could only ever produce non-productive iterations, so it
	// is rejected here rather than at run time.
	if len(r.Elements) == 0 {
		return &SchemaError{
			Path:    path,
			Field:   "elements",
			Message: "repeat body must have at least one element",
		}
	}

	return validateElements(path+".elements", r.Elements, depth+1, count)
}

func validateOr(path string, o *Or, depth int, count *int) error {
	if len(o.Elements) == 0 {
		return &SchemaError{
			Path:    path,
			Field:   "elements",
			Message: "or must have at least one alternative",
		}
	}

	for i, alt := range o.Elements {
		apath := fmt.Sprintf("%s.alt[%d]", path, i)
		if len(alt) == 0 {
			return &SchemaError{
				Path:    apath,
				Message: "alternative must have at least one element",
			}
		}
		if err := validateElements(apath+".elements", alt, depth+1, count); err != nil {
			return err
		}
	}

	return nil
}
