package lineform

import "fmt"

// FailureKind classifies why a match attempt failed.
type FailureKind int

const (
	// FailEndOfInput reports that a node needed a line but the input was
	// exhausted.
	FailEndOfInput FailureKind = iota

	// FailRegexNoMatch reports that a line element's regex found no match in
	// the current line.
	FailRegexNoMatch

	// FailRepeatUnsatisfied reports that a oneOrMore repeat matched zero
	// iterations.
	FailRepeatUnsatisfied

	// FailExactCountMismatch reports that an exactly(n) repeat stopped short
	// of n iterations.
	FailExactCountMismatch

	// FailOrExhausted reports that every alternative of an or element failed.
	FailOrExhausted

	// FailTrailingInput reports that a strict-mode run matched but left
	// input unconsumed.
	FailTrailingInput

	// FailDuplicateBinding reports a write to a property name already bound
	// in the same scope. Terminal.
	FailDuplicateBinding

	// FailNonProductiveRepeat reports a repeat iteration that succeeded
	// without consuming any input. Terminal.
	FailNonProductiveRepeat
)

func (k FailureKind) String() string {
	switch k {
	case FailEndOfInput:
		return "endOfInput"
	case FailRegexNoMatch:
		return "regexNoMatch"
	case FailRepeatUnsatisfied:
		return "repeatUnsatisfied"
	case FailExactCountMismatch:
		return "exactCountMismatch"
	case FailOrExhausted:
		return "orExhausted"
	case FailTrailingInput:
		return "trailingInput"
	case FailDuplicateBinding:
		return "duplicateBinding"
	case FailNonProductiveRepeat:
		return "nonProductiveRepeat"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Terminal reports whether failures of this kind abort the run outright.
// Terminal failures are never caught by an enclosing repeat or or element:
// they indicate a defect in the pattern document rather than input that
// happens not to match.
func (k FailureKind) Terminal() bool {
	return k == FailDuplicateBinding || k == FailNonProductiveRepeat
}

// Failure describes a failed match attempt. It is returned as the error from
// Extract and related entry points; use errors.As to recover it.
type Failure struct {
	// Kind classifies the failure.
	Kind FailureKind

	// Path locates the pattern node that failed, using the element path
	// grammar, e.g. "elements[2].or.alt[0].elements[1].line".
	Path string

	// Pos is the 0-based input line index at the moment the failure was
	// recorded, before any backtracking.
	Pos int

	// Detail is a human-readable explanation of this specific failure.
	Detail string

	// Incomplete reports whether the run touched the end of the input, in
	// which case appending more lines could change the outcome. Streaming
	// uses this to distinguish "wait for more input" from a definitive
	// mismatch.
	Incomplete bool

	// Cause is the underlying failure that led to this one, when there is
	// one (e.g. the body failure that stopped an unsatisfied repeat).
	Cause error
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("match failed: %s at %s (line %d)", f.Kind, f.Path, f.Pos)
	if f.Detail != "" {
		msg += ": " + f.Detail
	}
	return msg
}

// Terminal reports whether this failure aborts the run outright.
func (f *Failure) Terminal() bool {
	return f.Kind.Terminal()
}

// Unwrap returns the underlying cause of the failure.
// This enables errors.Is() and errors.As() to work with Failure.
func (f *Failure) Unwrap() error {
	return f.Cause
}
