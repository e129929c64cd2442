// Command lineform extracts structured data from line-oriented text using
// declarative YAML pattern documents.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "lineform",
	Short: "Extract structured data from line-oriented text",
	Long: `lineform matches line-oriented text (invoices, reports, logs) against
declarative YAML pattern documents and emits the extracted values as
structured output.

A pattern document describes the shape of the input as an ordered tree of
line matchers, repetition groups, ordered alternatives, and catch-all
elements. Regex capture groups bind into a nested output object.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging on stderr")
}

// newLogger returns the logger passed into the lineform engine: debug text
// on stderr with --verbose, otherwise discarding.
func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
