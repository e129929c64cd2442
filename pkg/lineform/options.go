package lineform

import (
	"fmt"
	"io"
	"log/slog"
)

// Mode selects how much of the input a match must consume.
type Mode int

const (
	// ModeStrict requires the pattern to consume every input line. Leftover
	// lines fail the run with FailTrailingInput.
	ModeStrict Mode = iota

	// ModePrefix accepts a match of a leading portion of the input and
	// reports how many lines were consumed in Result.Consumed.
	ModePrefix
)

func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModePrefix:
		return "prefix"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

const (
	// DefaultMaxLineBytes is the default per-line byte limit for buffered
	// reading, streaming, and replay.
	DefaultMaxLineBytes = 512 * 1024

	// DefaultMaxInputLines is the default limit on buffered input lines per
	// run and on lines held by a Stream.
	DefaultMaxInputLines = 1_000_000

	// MaxReplayLastN is the largest allowed WithReplayLastN value. This
	// bounds memory usage when a watcher replays the tail of a large file.
	MaxReplayLastN = 10000

	// maxReplayBytes bounds the total bytes read while replaying the tail
	// of a file.
	maxReplayBytes = 10 * 1024 * 1024
)

// Option configures Extract, Stream, and Watcher behavior using the
// functional options pattern.
type Option func(*config)

// config holds internal configuration shared by the engine entry points.
type config struct {
	mode          Mode
	logger        *slog.Logger
	maxLineBytes  int
	maxInputLines int
	skipUnmatched bool
	fromStart     bool
	replayLastN   int
	poll          bool
}

// defaultConfig returns a config with sensible defaults.
func defaultConfig() *config {
	return &config{
		mode:          ModeStrict,
		maxLineBytes:  DefaultMaxLineBytes,
		maxInputLines: DefaultMaxInputLines,
	}
}

// applyOptions applies functional options to a config.
func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// discardLogger is used when no logger is configured.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return discardLogger
	}
	return c.logger
}

// validate checks for invalid option values and combinations.
func (c *config) validate() error {
	if c.mode != ModeStrict && c.mode != ModePrefix {
		return fmt.Errorf("unknown mode %d", int(c.mode))
	}
	if c.maxLineBytes <= 0 {
		return fmt.Errorf("max line bytes must be positive, got %d", c.maxLineBytes)
	}
	if c.maxInputLines <= 0 {
		return fmt.Errorf("max input lines must be positive, got %d", c.maxInputLines)
	}
	if c.replayLastN < 0 {
		return fmt.Errorf("replay last N must be non-negative, got %d", c.replayLastN)
	}
	if c.replayLastN > MaxReplayLastN {
		return fmt.Errorf("replay last N (%d) exceeds maximum of %d", c.replayLastN, MaxReplayLastN)
	}
	if c.fromStart && c.replayLastN > 0 {
		return fmt.Errorf("from start and replay last N are mutually exclusive")
	}
	return nil
}

// WithMode sets whether a match must consume the whole input.
// Default: ModeStrict.
func WithMode(m Mode) Option {
	return func(c *config) {
		c.mode = m
	}
}

// WithLogger sets a custom logger for debug output.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMaxLineBytes sets the maximum length of a single input line for
// ExtractReader, ExtractFile, streaming, and replay.
// Default: DefaultMaxLineBytes.
func WithMaxLineBytes(n int) Option {
	return func(c *config) {
		c.maxLineBytes = n
	}
}

// WithMaxInputLines sets the maximum number of input lines ExtractReader
// and ExtractFile will buffer, and the maximum number of lines a Stream
// holds while waiting for a record to complete.
// Default: DefaultMaxInputLines.
func WithMaxInputLines(n int) Option {
	return func(c *config) {
		c.maxInputLines = n
	}
}

// WithSkipUnmatched makes a Stream or Watcher drop the oldest buffered line
// and retry when a record definitively fails to match, instead of stopping
// with an error. Use this to resynchronize on inputs that mix records with
// unrelated lines. Skipped lines are counted by Stream.Skipped.
// Default: false.
func WithSkipUnmatched(skip bool) Option {
	return func(c *config) {
		c.skipUnmatched = skip
	}
}

// WithFromStart makes a Watcher read the file from the beginning before
// following new lines. Mutually exclusive with WithReplayLastN.
// Default: false (only new lines are matched).
func WithFromStart(fromStart bool) Option {
	return func(c *config) {
		c.fromStart = fromStart
	}
}

// WithReplayLastN makes a Watcher match the last n lines of the file before
// following new lines. At most MaxReplayLastN lines can be replayed.
// Mutually exclusive with WithFromStart.
// Default: 0 (no replay).
func WithReplayLastN(n int) Option {
	return func(c *config) {
		c.replayLastN = n
	}
}

// WithPolling makes a Watcher poll for file changes instead of relying on
// file system notifications. Use this on file systems where notifications
// are unreliable, such as network mounts.
// Default: false.
func WithPolling(poll bool) Option {
	return func(c *config) {
		c.poll = poll
	}
}
