package lineform

import (
	"errors"
	"fmt"
)

var (
	// ErrInputLimitExceeded is returned when buffered input exceeds the
	// configured line count or line length limits.
	ErrInputLimitExceeded = errors.New("lineform: input limit exceeded")

	// ErrNonProductivePattern is returned by a Stream whose pattern matched
	// a record without consuming any input. Such a pattern would emit the
	// same empty record forever.
	ErrNonProductivePattern = errors.New("lineform: pattern matched without consuming input")

	// ErrStreamDesynced is returned by a Stream after a record has
	// definitively failed to match. Without WithSkipUnmatched the stream
	// cannot find the start of the next record, so feeding more input is
	// refused.
	ErrStreamDesynced = errors.New("lineform: stream cannot continue after a failed record")

	// ErrWatcherClosed is returned by Watch after Close has been called.
	ErrWatcherClosed = errors.New("lineform: watcher is closed")

	// ErrAlreadyWatching is returned by Watch when it has already been
	// called on this watcher.
	ErrAlreadyWatching = errors.New("lineform: watcher is already watching")

	// ErrReplayLimitExceeded is returned when replaying the tail of a file
	// would exceed the replay byte or line-length limits.
	ErrReplayLimitExceeded = errors.New("lineform: replay limit exceeded")
)

// WatchOp identifies the watcher operation that produced a WatchError.
type WatchOp string

const (
	WatchOpReplay WatchOp = "replay"
	WatchOpTail   WatchOp = "tail"
	WatchOpMatch  WatchOp = "match"
)

// WatchError wraps an error produced while watching a file, identifying the
// operation and path involved.
type WatchError struct {
	Op   WatchOp
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("watch %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("watch %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
// This enables errors.Is() and errors.As() to work with WatchError.
func (e *WatchError) Unwrap() error {
	return e.Err
}
