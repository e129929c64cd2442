package lineform

import (
	"errors"
	"fmt"

	"github.com/lineform/lineform-go/pkg/lineform/pattern"
)

// Stream cuts a sequence of records out of concatenated line input by
// running the pattern in prefix mode against a sliding buffer. Each Feed
// call may complete zero or more records.
//
// A record attempt that reaches the end of the buffered input is held until
// more lines arrive; a definitive mismatch either stops the stream or, with
// WithSkipUnmatched, drops the oldest line and retries. This works because
// a definitive failure is stable: appending lines can never turn it into a
// match, only attempts that ran out of input can change outcome.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	model *pattern.Model
	cfg   *config

	buf     []string
	skipped int
	broken  error // sticky terminal error; feeding is refused once set
}

// NewStream creates a stream for a compiled pattern. The mode option is
// ignored: streams always match in prefix mode internally.
func NewStream(model *pattern.Model, opts ...Option) (*Stream, error) {
	if model == nil {
		return nil, fmt.Errorf("pattern model is nil")
	}
	cfg := applyOptions(opts)
	cfg.mode = ModePrefix
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return newStream(model, cfg), nil
}

// newStream wires a stream to an already validated config.
func newStream(model *pattern.Model, cfg *config) *Stream {
	return &Stream{model: model, cfg: cfg}
}

// Feed appends one line (without terminator) to the stream and returns any
// records completed by it, oldest first.
//
// Errors: ErrInputLimitExceeded when the buffer outgrows WithMaxInputLines;
// ErrNonProductivePattern when the pattern matches a zero-line record; a
// *Failure when a record definitively fails to match and skipping is off.
// After any error the stream is broken and further calls return
// ErrStreamDesynced.
func (s *Stream) Feed(line string) ([]*Result, error) {
	if s.broken != nil {
		return nil, s.broken
	}
	if len(line) > s.cfg.maxLineBytes {
		return nil, s.breakWith(fmt.Errorf("%w: line exceeds %d bytes", ErrInputLimitExceeded, s.cfg.maxLineBytes))
	}
	if len(s.buf) >= s.cfg.maxInputLines {
		return nil, s.breakWith(fmt.Errorf("%w: %d lines buffered without completing a record", ErrInputLimitExceeded, len(s.buf)))
	}

	s.buf = append(s.buf, line)
	return s.drain(false)
}

// Flush drains the stream at end of input. Records still completable are
// returned; a leftover partial record is an error, or is skipped line by
// line under WithSkipUnmatched. After Flush the stream is empty and, absent
// an error, can keep feeding.
func (s *Stream) Flush() ([]*Result, error) {
	if s.broken != nil {
		return nil, s.broken
	}
	return s.drain(true)
}

// Buffered returns the number of lines held while waiting for the current
// record to complete.
func (s *Stream) Buffered() int {
	return len(s.buf)
}

// Skipped returns the total number of lines dropped by WithSkipUnmatched
// resynchronization.
func (s *Stream) Skipped() int {
	return s.skipped
}

// drain repeatedly matches the pattern against the front of the buffer,
// consuming one record per success. final marks end of input: attempts that
// would otherwise wait for more lines fail instead.
func (s *Stream) drain(final bool) ([]*Result, error) {
	var out []*Result

	for len(s.buf) > 0 {
		res, err := runMatch(s.model, s.buf, s.cfg)
		if err == nil {
			if res.Consumed == 0 {
				return out, s.breakWith(fmt.Errorf("%w: pattern %q", ErrNonProductivePattern, s.model.Name))
			}
			res.Total = res.Consumed
			out = append(out, res)
			s.buf = append(s.buf[:0], s.buf[res.Consumed:]...)
			continue
		}

		var f *Failure
		if !errors.As(err, &f) {
			return out, s.breakWith(err)
		}
		if f.Terminal() {
			return out, s.breakWith(err)
		}
		if f.Incomplete && !final {
			// More lines may complete this record.
			return out, nil
		}

		// Definitive mismatch for the record starting at the front of the
		// buffer.
		if s.cfg.skipUnmatched {
			s.buf = append(s.buf[:0], s.buf[1:]...)
			s.skipped++
			continue
		}
		return out, s.breakWith(err)
	}

	return out, nil
}

// breakWith marks the stream broken and returns the error. The original
// error is returned once; later calls see ErrStreamDesynced.
func (s *Stream) breakWith(err error) error {
	s.broken = ErrStreamDesynced
	return err
}
