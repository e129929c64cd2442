package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lineform/lineform-go/pkg/lineform/pattern"
)

var checkPattern string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate and compile a pattern document",
	Long: `Load, validate, and compile a pattern document without matching any
input. Prints a short summary on success; on failure the schema error names
the offending element. The exit status reflects validity, so check works in
CI and pre-commit hooks.

Examples:
  lineform check -p invoice.yaml`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkPattern, "pattern", "p", "",
		"Pattern document to check (required)")
	_ = checkCmd.MarkFlagRequired("pattern")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	model, err := pattern.CompileFile(checkPattern)
	if err != nil {
		var schemaErr *pattern.SchemaError
		if errors.As(err, &schemaErr) {
			return fmt.Errorf("invalid pattern document: %w", schemaErr)
		}
		return err
	}

	lines, repeats, ors, anys := countNodes(model.Elements)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "pattern %q is valid\n", model.Name)
	fmt.Fprintf(out, "  version:  %d\n", model.Version)
	if model.BindObject != "" {
		fmt.Fprintf(out, "  root key: %s\n", model.BindObject)
	}
	fmt.Fprintf(out, "  elements: %d line, %d repeat, %d or, %d anyline\n",
		lines, repeats, ors, anys)
	return nil
}

// countNodes tallies node kinds across the whole tree.
func countNodes(nodes []pattern.Node) (lines, repeats, ors, anys int) {
	for _, n := range nodes {
		switch node := n.(type) {
		case *pattern.LineNode:
			lines++
		case *pattern.RepeatNode:
			repeats++
			l, r, o, a := countNodes(node.Body)
			lines, repeats, ors, anys = lines+l, repeats+r, ors+o, anys+a
		case *pattern.OrNode:
			ors++
			for _, alt := range node.Alternatives {
				l, r, o, a := countNodes(alt)
				lines, repeats, ors, anys = lines+l, repeats+r, ors+o, anys+a
			}
		case *pattern.AnyNode:
			anys++
		}
	}
	return
}
