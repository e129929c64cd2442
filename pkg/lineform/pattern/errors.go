package pattern

import "fmt"

// SchemaError represents a schema-level error in a pattern document.
// These errors occur when a document violates structural requirements
// (missing required fields, invalid version, malformed regex) and are
// always fatal: no partially-valid document is ever produced.
type SchemaError struct {
	// Path locates the offending element within the document, using the
	// same grammar as run-time failure paths (e.g.
	// "elements[2].or.alt[0].elements[1].line"). Empty for document-level
	// errors such as an unsupported version.
	Path    string
	Field   string
	Message string
	Cause   error // Underlying error (e.g. regex compile error)
}

func (e *SchemaError) Error() string {
	switch {
	case e.Path != "" && e.Field != "":
		return fmt.Sprintf("pattern schema: %s: %s: %s", e.Path, e.Field, e.Message)
	case e.Path != "":
		return fmt.Sprintf("pattern schema: %s: %s", e.Path, e.Message)
	default:
		return fmt.Sprintf("pattern schema: %s: %s", e.Field, e.Message)
	}
}

// Unwrap returns the underlying cause of the error.
// This enables errors.Is() and errors.As() to work with SchemaError.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}
