package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lineform/lineform-go/internal/lineio"
	"github.com/lineform/lineform-go/internal/safefile"
	"github.com/lineform/lineform-go/pkg/lineform"
	"github.com/lineform/lineform-go/pkg/lineform/pattern"
)

var (
	// extract flags
	extractPattern string
	extractMode    string
	extractStream  bool
	extractFormat  string
	extractSelect  string
	extractOutput  string
	extractSkip    bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [input-file]",
	Short: "Match a pattern against a file or stdin",
	Long: `Match a pattern document against an input file (or stdin) and print the
extracted value tree.

By default the pattern must consume the entire input; use --mode prefix to
accept a leading match. With --stream the input is treated as concatenated
records and one value tree is printed per completed record.

Examples:
  # Extract a single document from a file
  lineform extract -p invoice.yaml invoice.txt

  # Read from stdin, project a sub-value
  cat invoice.txt | lineform extract -p invoice.yaml --select '$.invoice.total'

  # Concatenated records as JSON Lines, skipping unmatched noise
  lineform extract -p order.yaml --stream --skip-unmatched orders.log

  # Atomic write of the result
  lineform extract -p invoice.yaml invoice.txt -o result.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractPattern, "pattern", "p", "",
		"Pattern document to match (required)")
	extractCmd.Flags().StringVar(&extractMode, "mode", "strict",
		"Match mode: strict (whole input) or prefix (leading portion)")
	extractCmd.Flags().BoolVar(&extractStream, "stream", false,
		"Treat input as concatenated records, one output per record")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "json",
		"Output format: json, jsonl, yaml, pretty")
	extractCmd.Flags().StringVar(&extractSelect, "select", "",
		"JSONPath expression projecting a sub-value of each result")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "",
		"Write output to this file atomically instead of stdout")
	extractCmd.Flags().BoolVar(&extractSkip, "skip-unmatched", false,
		"With --stream, drop unmatched lines instead of stopping")
	_ = extractCmd.MarkFlagRequired("pattern")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if !validFormats[extractFormat] {
		return fmt.Errorf("unknown format: %s", extractFormat)
	}

	var mode lineform.Mode
	switch extractMode {
	case "strict":
		mode = lineform.ModeStrict
	case "prefix":
		mode = lineform.ModePrefix
	default:
		return fmt.Errorf("unknown mode: %s (want strict or prefix)", extractMode)
	}

	model, err := pattern.CompileFile(extractPattern)
	if err != nil {
		return err
	}

	lines, err := readInput(args)
	if err != nil {
		return err
	}

	logger := newLogger()
	opts := []lineform.Option{
		lineform.WithMode(mode),
		lineform.WithLogger(logger),
	}

	var buf bytes.Buffer
	out := io.Writer(os.Stdout)
	if extractOutput != "" {
		out = &buf
	}

	if extractStream {
		err = extractRecords(model, lines, out, opts)
	} else {
		err = extractOne(model, lines, out, opts)
	}
	if err != nil {
		return err
	}

	if extractOutput != "" {
		if err := safefile.WriteFileAtomic(extractOutput, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// readInput buffers the input file named in args, or stdin.
func readInput(args []string) ([]string, error) {
	if len(args) == 0 {
		lines, err := lineio.ReadAll(os.Stdin, lineio.Limits{
			MaxLineBytes: lineform.DefaultMaxLineBytes,
			MaxLines:     lineform.DefaultMaxInputLines,
		})
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return lines, nil
	}

	f, _, err := safefile.OpenRegular(args[0])
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	lines, err := lineio.ReadAll(f, lineio.Limits{
		MaxLineBytes: lineform.DefaultMaxLineBytes,
		MaxLines:     lineform.DefaultMaxInputLines,
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return lines, nil
}

func extractOne(model *pattern.Model, lines []string, out io.Writer, opts []lineform.Option) error {
	res, err := lineform.Extract(model, lines, opts...)
	if err != nil {
		return err
	}
	return emitValue(res.Value, out)
}

func extractRecords(model *pattern.Model, lines []string, out io.Writer, opts []lineform.Option) error {
	if extractSkip {
		opts = append(opts, lineform.WithSkipUnmatched(true))
	}
	stream, err := lineform.NewStream(model, opts...)
	if err != nil {
		return err
	}

	emit := func(results []*lineform.Result) error {
		for _, res := range results {
			if err := emitValue(res.Value, out); err != nil {
				return err
			}
		}
		return nil
	}

	for _, line := range lines {
		results, err := stream.Feed(line)
		if e := emit(results); e != nil {
			return e
		}
		if err != nil {
			return err
		}
	}
	results, err := stream.Flush()
	if e := emit(results); e != nil {
		return e
	}
	return err
}

// emitValue applies --select, then renders in the chosen format.
func emitValue(value any, out io.Writer) error {
	v := any(value)
	if extractSelect != "" {
		selected, err := selectValue(v, extractSelect)
		if err != nil {
			return err
		}
		v = selected
	}
	return renderValue(extractFormat, v, out)
}
