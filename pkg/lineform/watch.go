package lineform

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/lineform/lineform-go/internal/safefile"
	"github.com/lineform/lineform-go/internal/tailer"
	"github.com/lineform/lineform-go/pkg/lineform/pattern"
)

// watcherErrBuffer is the buffer size for the error channel. A small buffer
// prevents error loss during brief moments when the consumer is busy
// processing results, while keeping memory usage minimal.
const watcherErrBuffer = 16

// Watcher follows a growing file and emits one Result per completed record,
// feeding tailed lines through a Stream.
type Watcher struct {
	model *pattern.Model
	path  string
	cfg   *config // immutable after creation
	log   *slog.Logger

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc
	doneCh   chan struct{} // signals when the goroutine has exited
	watching bool          // true once Watch() has been called
}

// NewWatcher creates a watcher for a compiled pattern over the file at
// path. The file must exist and be a regular file. Does NOT start
// goroutines (cheap to call); matching is always in prefix mode.
//
// By default only lines appended after Watch are matched; use WithFromStart
// or WithReplayLastN to include existing content. Unless WithSkipUnmatched
// is set, the first record that definitively fails to match stops the
// watcher.
//
// Example:
//
//	w, err := lineform.NewWatcher(model, "orders.log",
//	    lineform.WithReplayLastN(100),
//	    lineform.WithSkipUnmatched(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//	results, errs, err := w.Watch(ctx)
func NewWatcher(model *pattern.Model, path string, opts ...Option) (*Watcher, error) {
	if model == nil {
		return nil, fmt.Errorf("pattern model is nil")
	}

	cfg := applyOptions(opts)
	cfg.mode = ModePrefix
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Verify the target before any goroutine starts.
	f, _, err := safefile.OpenRegular(path)
	if err != nil {
		return nil, fmt.Errorf("cannot watch %s: %w", path, err)
	}
	_ = f.Close()

	return &Watcher{
		model: model,
		path:  path,
		cfg:   cfg,
		log:   cfg.log(),
	}, nil
}

// Watch starts following the file and returns the result and error
// channels. Both channels close when ctx is cancelled, the watcher is
// closed, or a fatal error stops the run. Watch can only be called once per
// Watcher instance.
//
// Returns ErrWatcherClosed if the watcher has been closed.
// Returns ErrAlreadyWatching if Watch() has already been called.
func (w *Watcher) Watch(ctx context.Context) (<-chan *Result, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, nil, ErrWatcherClosed
	}
	if w.watching {
		return nil, nil, ErrAlreadyWatching
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})

	resultCh := make(chan *Result)
	errCh := make(chan error, watcherErrBuffer)

	go w.run(ctx, resultCh, errCh)

	return resultCh, errCh, nil
}

// Close stops the watcher and releases resources.
// Safe to call multiple times.
// Blocks until the goroutine has exited.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true

	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, resultCh chan<- *Result, errCh chan<- error) {
	defer close(w.doneCh) // Signal that the goroutine has exited
	defer close(resultCh)
	defer close(errCh)
	defer w.cancel() // Unblock the tailer pump on every exit path

	stream := newStream(w.model, w.cfg)

	// Replay the file tail before following new lines.
	if w.cfg.replayLastN > 0 {
		lines, err := lastLines(w.path, w.cfg.replayLastN, maxReplayBytes, w.cfg.maxLineBytes)
		if err != nil {
			sendError(ctx, errCh, &WatchError{Op: WatchOpReplay, Path: w.path, Err: err})
			return
		}
		w.log.Debug("replaying file tail", "path", w.path, "lines", len(lines))
		for _, line := range lines {
			if !w.feed(ctx, stream, line, resultCh, errCh) {
				return
			}
		}
	}

	t, err := tailer.New(ctx, w.path, tailer.Config{
		FromStart:    w.cfg.fromStart,
		Poll:         w.cfg.poll,
		MaxLineBytes: w.cfg.maxLineBytes,
	})
	if err != nil {
		sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: w.path, Err: err})
		return
	}
	defer func() { _ = t.Stop() }()
	w.log.Debug("started tailing", "path", w.path, "from_start", w.cfg.fromStart)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines():
			if !ok {
				// Tailing ended for good; drain whatever record is pending.
				w.finish(ctx, stream, resultCh, errCh)
				return
			}
			if !w.feed(ctx, stream, line, resultCh, errCh) {
				return
			}
		case err, ok := <-t.Errors():
			if !ok {
				w.finish(ctx, stream, resultCh, errCh)
				return
			}
			sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: w.path, Err: err})
		}
	}
}

// feed pushes one line into the stream and forwards completed records.
// Returns false when the watcher must stop. Completed records are forwarded
// even when the same Feed call also produced an error.
func (w *Watcher) feed(ctx context.Context, stream *Stream, line string, resultCh chan<- *Result, errCh chan<- error) bool {
	results, err := stream.Feed(line)
	for _, res := range results {
		select {
		case resultCh <- res:
		case <-ctx.Done():
			return false
		}
	}
	if err != nil {
		sendError(ctx, errCh, &WatchError{Op: WatchOpMatch, Path: w.path, Err: err})
		return false
	}
	return true
}

// finish drains the stream at end of input.
func (w *Watcher) finish(ctx context.Context, stream *Stream, resultCh chan<- *Result, errCh chan<- error) {
	results, err := stream.Flush()
	for _, res := range results {
		select {
		case resultCh <- res:
		case <-ctx.Done():
			return
		}
	}
	if err != nil {
		sendError(ctx, errCh, &WatchError{Op: WatchOpMatch, Path: w.path, Err: err})
	}
}

// lastLines reads the final n lines of the file at path, oldest first, by
// scanning backwards in chunks. Empty lines count towards n; a trailing
// carriage return is stripped from each line.
//
// Limits: at most maxBytes total are read, and no single line may exceed
// maxLineBytes; exceeding either returns ErrReplayLimitExceeded.
func lastLines(path string, n, maxBytes, maxLineBytes int) ([]string, error) {
	f, info, err := safefile.OpenRegular(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	size := info.Size()
	if size == 0 || n <= 0 {
		return nil, nil
	}

	const chunkSize = 4096
	var (
		lines []string // collected newest first, reversed before returning
		tail  []byte   // bytes before the newline most recently found
		off   = size
		total = 0
		first = true
	)

	for off > 0 && len(lines) < n {
		step := int64(chunkSize)
		if off < step {
			step = off
		}
		off -= step

		total += int(step)
		if maxBytes > 0 && total > maxBytes {
			return nil, ErrReplayLimitExceeded
		}

		chunk := make([]byte, step)
		if _, err := f.ReadAt(chunk, off); err != nil {
			return nil, err
		}
		buf := append(chunk, tail...)

		// The file's final newline terminates the last line rather than
		// opening an empty one after it.
		if first {
			if len(buf) > 0 && buf[len(buf)-1] == '\n' {
				buf = buf[:len(buf)-1]
			}
			first = false
		}

		for len(lines) < n {
			i := bytes.LastIndexByte(buf, '\n')
			if i < 0 {
				break
			}
			seg := buf[i+1:]
			if maxLineBytes > 0 && len(seg) > maxLineBytes {
				return nil, ErrReplayLimitExceeded
			}
			lines = append(lines, trimCR(string(seg)))
			buf = buf[:i]
		}

		tail = buf
		if maxLineBytes > 0 && len(tail) > maxLineBytes {
			return nil, ErrReplayLimitExceeded
		}
	}

	// The line at the start of the file has no leading newline.
	if off == 0 && len(tail) > 0 && len(lines) < n {
		lines = append(lines, trimCR(string(tail)))
	}

	slices.Reverse(lines)
	return lines, nil
}

func trimCR(line string) string {
	return strings.TrimSuffix(line, "\r")
}

// sendError sends an error to the error channel. With a buffered channel,
// errors are only dropped if the buffer is full. The context case ensures
// we don't block during shutdown.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
		// Don't block during shutdown
	default:
		// Drop the error only if the buffer is full
	}
}
