package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lineform/lineform-go/pkg/lineform"
	"github.com/lineform/lineform-go/pkg/lineform/pattern"
)

var (
	// tail flags
	tailPattern   string
	tailFormat    string
	tailFromStart bool
	tailReplay    int
	tailSkip      bool
	tailPoll      bool
)

var tailCmd = &cobra.Command{
	Use:   "tail file",
	Short: "Follow a growing file and output one result per record",
	Long: `Follow a growing file, match completed records against a pattern
document, and print one value tree per record.

Records are matched in prefix mode: as soon as enough lines have arrived to
complete the pattern, a result is printed and matching restarts at the next
line. Results are JSON Lines by default, which pipes cleanly into jq.

By default only lines appended after startup are matched. A record that
definitively fails to match stops the command unless --skip-unmatched is
set.

Examples:
  # Follow new records as they are appended
  lineform tail -p order.yaml orders.log

  # Include the last 100 existing lines, skip noise between records
  lineform tail -p order.yaml --replay-last 100 --skip-unmatched orders.log

  # Process the whole file, then keep following
  lineform tail -p order.yaml --from-start orders.log

  # Pipe to jq
  lineform tail -p order.yaml orders.log | jq '.total'`,
	Args: cobra.ExactArgs(1),
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVarP(&tailPattern, "pattern", "p", "",
		"Pattern document to match (required)")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "jsonl",
		"Output format: json, jsonl, yaml, pretty")
	tailCmd.Flags().BoolVar(&tailFromStart, "from-start", false,
		"Match the whole file before following new lines")
	tailCmd.Flags().IntVar(&tailReplay, "replay-last", 0,
		"Match the last N existing lines before following new lines")
	tailCmd.Flags().BoolVar(&tailSkip, "skip-unmatched", false,
		"Drop unmatched lines instead of stopping")
	tailCmd.Flags().BoolVar(&tailPoll, "poll", false,
		"Poll for file changes instead of using file system notifications")
	_ = tailCmd.MarkFlagRequired("pattern")

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	if !validFormats[tailFormat] {
		return fmt.Errorf("unknown format: %s", tailFormat)
	}

	model, err := pattern.CompileFile(tailPattern)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []lineform.Option{
		lineform.WithLogger(newLogger()),
		lineform.WithFromStart(tailFromStart),
		lineform.WithReplayLastN(tailReplay),
		lineform.WithSkipUnmatched(tailSkip),
		lineform.WithPolling(tailPoll),
	}

	watcher, err := lineform.NewWatcher(model, args[0], opts...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	results, errs, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case res, ok := <-results:
			if !ok {
				return nil
			}
			if err := renderValue(tailFormat, res.Value, os.Stdout); err != nil {
				return fmt.Errorf("output error: %w", err)
			}

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			if verbose {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}

		case <-ctx.Done():
			return nil
		}
	}
}
