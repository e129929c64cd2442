package lineform

import (
	"errors"
	"fmt"
	"io"

	"github.com/lineform/lineform-go/internal/lineio"
	"github.com/lineform/lineform-go/internal/safefile"
	"github.com/lineform/lineform-go/pkg/lineform/pattern"
)

// Extract matches a compiled pattern against buffered input lines.
//
// On success it returns the extracted value tree together with how much
// input was consumed. On a mismatch the returned error is a *Failure
// carrying the failure kind, the path of the pattern node that failed, and
// the input position; recover it with errors.As. Other errors indicate
// invalid arguments or options.
//
// Lines carry no terminators; split input before calling, or use
// ExtractReader / ExtractFile which split for you.
//
// Example:
//
//	res, err := lineform.Extract(model, lines)
//	if err != nil {
//	    var f *lineform.Failure
//	    if errors.As(err, &f) {
//	        log.Printf("no match: %s at %s (line %d)", f.Kind, f.Path, f.Pos)
//	    }
//	    return err
//	}
//	fmt.Println(res.Value)
func Extract(model *pattern.Model, lines []string, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return runMatch(model, lines, cfg)
}

// ExtractReader buffers r into lines and matches the pattern against them.
// Input is split on newlines with a trailing carriage return stripped from
// each line. Reading is bounded by WithMaxLineBytes and WithMaxInputLines;
// exceeding either limit returns an error wrapping ErrInputLimitExceeded.
func ExtractReader(model *pattern.Model, r io.Reader, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	lines, err := readLines(r, cfg)
	if err != nil {
		return nil, err
	}
	return runMatch(model, lines, cfg)
}

// ExtractFile opens path and matches the pattern against its lines. The
// file must be a regular file; FIFOs, devices, and other special files are
// rejected.
func ExtractFile(model *pattern.Model, path string, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	f, _, err := safefile.OpenRegular(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	lines, err := readLines(f, cfg)
	if err != nil {
		return nil, err
	}
	return runMatch(model, lines, cfg)
}

func readLines(r io.Reader, cfg *config) ([]string, error) {
	lines, err := lineio.ReadAll(r, lineio.Limits{
		MaxLineBytes: cfg.maxLineBytes,
		MaxLines:     cfg.maxInputLines,
	})
	if err != nil {
		if errors.Is(err, lineio.ErrLineTooLong) || errors.Is(err, lineio.ErrTooManyLines) {
			return nil, fmt.Errorf("%w: %v", ErrInputLimitExceeded, err)
		}
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}

// runMatch is the engine entry shared by Extract, Stream, and Watcher. The
// config must already be validated.
func runMatch(model *pattern.Model, lines []string, cfg *config) (*Result, error) {
	if model == nil {
		return nil, fmt.Errorf("pattern model is nil")
	}

	m := &matcher{cur: newCursor(lines), bnd: newBinder(), log: cfg.log()}
	m.log.Debug("match started", "pattern", model.Name, "lines", len(lines), "mode", cfg.mode)

	if f := m.matchSequence(model.Elements); f != nil {
		f.Incomplete = m.sawEndOfInput
		m.log.Debug("match failed", "pattern", model.Name, "kind", f.Kind, "incomplete", f.Incomplete)
		return nil, f
	}

	if cfg.mode == ModeStrict && !m.cur.exhausted() {
		return nil, &Failure{
			Kind:   FailTrailingInput,
			Path:   "elements",
			Pos:    m.cur.pos(),
			Detail: fmt.Sprintf("%d of %d lines consumed", m.cur.pos(), len(lines)),
		}
	}

	value := m.bnd.root()
	if model.BindObject != "" {
		value = map[string]any{model.BindObject: value}
	}

	m.log.Debug("match succeeded", "pattern", model.Name, "consumed", m.cur.pos(), "total", len(lines))
	return &Result{
		Value:    value,
		Consumed: m.cur.pos(),
		Total:    len(lines),
	}, nil
}
