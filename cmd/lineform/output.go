package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"
)

// validFormats lists all valid output formats.
var validFormats = map[string]bool{
	"json":   true,
	"jsonl":  true,
	"yaml":   true,
	"pretty": true,
}

// renderValue writes one extracted value tree in the requested format.
// Object keys are sorted in every format so output is deterministic.
func renderValue(format string, value any, out io.Writer) error {
	switch format {
	case "json":
		_, err := fmt.Fprintln(out, oj.JSON(value, &oj.Options{Sort: true, Indent: 2}))
		return err
	case "jsonl":
		_, err := fmt.Fprintln(out, oj.JSON(value, &oj.Options{Sort: true}))
		return err
	case "yaml":
		data, err := yaml.Marshal(value)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "pretty":
		return renderPretty(out, value, 0)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// renderPretty writes a value tree as an indented key/value listing.
func renderPretty(out io.Writer, value any, depth int) error {
	indent := strings.Repeat("  ", depth)

	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			switch child := v[k].(type) {
			case map[string]any, []any:
				if _, err := fmt.Fprintf(out, "%s%s:\n", indent, k); err != nil {
					return err
				}
				if err := renderPretty(out, child, depth+1); err != nil {
					return err
				}
			default:
				if _, err := fmt.Fprintf(out, "%s%s: %v\n", indent, k, child); err != nil {
					return err
				}
			}
		}
		return nil

	case []any:
		for _, elem := range v {
			if _, err := fmt.Fprintf(out, "%s-\n", indent); err != nil {
				return err
			}
			if err := renderPretty(out, elem, depth+1); err != nil {
				return err
			}
		}
		return nil

	default:
		_, err := fmt.Fprintf(out, "%s%v\n", indent, v)
		return err
	}
}

// selectValue projects a sub-value out of the extracted tree with a
// JSONPath expression. A single match is returned bare; multiple matches
// are returned as an array.
func selectValue(value any, selector string) (any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath %q: %w", selector, err)
	}

	results := x.Get(value)
	switch len(results) {
	case 0:
		return nil, fmt.Errorf("jsonpath %q matched nothing", selector)
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}
