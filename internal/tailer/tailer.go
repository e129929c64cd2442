// Package tailer follows a single growing file and delivers its lines over
// channels. It wraps github.com/nxadm/tail with context-aware shutdown and
// tail -F semantics: a file that is rotated or truncated in place is
// reopened and followed from its new beginning.
package tailer

import (
	"context"
	"io"

	"github.com/nxadm/tail"
)

// Config controls how a file is followed.
type Config struct {
	// FromStart reads the file from the beginning instead of only new lines.
	FromStart bool

	// Poll checks the file for changes by polling instead of file system
	// notifications.
	Poll bool

	// MaxLineBytes splits lines longer than this limit. 0 means unlimited.
	MaxLineBytes int
}

// DefaultConfig returns the configuration for following only newly appended
// lines using file system notifications.
func DefaultConfig() Config {
	return Config{}
}

// Tailer follows one file. Lines and Errors close together when the tailer
// stops, whether by Stop, context cancellation, or a fatal tailing error.
type Tailer struct {
	t     *tail.Tail
	lines chan string
	errs  chan error
}

// New starts following path. The file must exist.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	tcfg := tail.Config{
		Follow:      true,
		ReOpen:      true,
		MustExist:   true,
		Poll:        cfg.Poll,
		MaxLineSize: cfg.MaxLineBytes,
		Logger:      tail.DiscardingLogger,
	}
	if !cfg.FromStart {
		tcfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(path, tcfg)
	if err != nil {
		return nil, err
	}

	tr := &Tailer{
		t:     t,
		lines: make(chan string),
		errs:  make(chan error, 1),
	}
	go tr.pump(ctx)
	return tr, nil
}

// pump forwards tailed lines until the context is cancelled or the
// underlying tail dies.
func (tr *Tailer) pump(ctx context.Context) {
	defer close(tr.lines)
	defer close(tr.errs)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-tr.t.Lines:
			if !ok {
				// The tail died; surface its reason if there is one.
				if err := tr.t.Wait(); err != nil {
					select {
					case tr.errs <- err:
					default:
					}
				}
				return
			}
			if line.Err != nil {
				select {
				case tr.errs <- line.Err:
				case <-ctx.Done():
					return
				}
				continue
			}
			select {
			case tr.lines <- line.Text:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Lines delivers tailed lines without terminators.
func (tr *Tailer) Lines() <-chan string {
	return tr.lines
}

// Errors delivers non-fatal tailing errors.
func (tr *Tailer) Errors() <-chan error {
	return tr.errs
}

// Stop ends tailing and releases the file system watch. Safe to call after
// the tailer has already died.
func (tr *Tailer) Stop() error {
	err := tr.t.Stop()
	tr.t.Cleanup()
	return err
}
