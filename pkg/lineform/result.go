package lineform

// Result is the output of a successful match.
type Result struct {
	// Value is the extracted output tree: nested map[string]any objects
	// with string leaves and []any arrays. When the pattern declares a
	// bindObject, the tree is wrapped under that single root key. The tree
	// marshals cleanly with encoding/json and gopkg.in/yaml.v3.
	Value map[string]any

	// Consumed is the number of input lines the match consumed. In
	// ModeStrict this always equals Total.
	Consumed int

	// Total is the number of input lines presented to the run. For results
	// emitted by a Stream or Watcher it equals Consumed, the length of the
	// matched record.
	Total int
}
