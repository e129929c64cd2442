// Package lineio reads line-oriented input into memory with hard bounds on
// line length and line count.
package lineio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrLineTooLong is returned when a single line exceeds Limits.MaxLineBytes.
	ErrLineTooLong = errors.New("line too long")

	// ErrTooManyLines is returned when the input exceeds Limits.MaxLines.
	ErrTooManyLines = errors.New("too many lines")
)

// Limits bounds how much input ReadAll accepts. Zero values mean unlimited.
type Limits struct {
	MaxLineBytes int // longest allowed single line, in bytes
	MaxLines     int // most allowed lines
}

// ReadAll reads r to EOF and splits it into lines without terminators.
// A trailing carriage return is stripped from each line, so CRLF input
// works unchanged. The final line is returned whether or not it ends in a
// newline. Empty input yields no lines.
func ReadAll(r io.Reader, lim Limits) ([]string, error) {
	sc := bufio.NewScanner(r)
	if lim.MaxLineBytes > 0 {
		sc.Buffer(make([]byte, 0, min(lim.MaxLineBytes, 64*1024)), lim.MaxLineBytes)
	}

	var lines []string
	for sc.Scan() {
		if lim.MaxLines > 0 && len(lines) >= lim.MaxLines {
			return nil, fmt.Errorf("%w (max %d)", ErrTooManyLines, lim.MaxLines)
		}
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w (max %d bytes)", ErrLineTooLong, lim.MaxLineBytes)
		}
		return nil, err
	}
	return lines, nil
}
