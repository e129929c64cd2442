package lineform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineform/lineform-go/pkg/lineform"
)

// recordDoc matches one two-line record: a header then a value line.
const recordDoc = `
version: 1
name: record
elements:
  - line:
      regex: '^H (\w+)$'
      bindProperties:
        - property: id
  - line:
      regex: '^V (\w+)$'
      bindProperties:
        - property: value
`

func TestStream_TwoRecords(t *testing.T) {
	model := mustCompile(t, recordDoc)
	s, err := lineform.NewStream(model)
	require.NoError(t, err)

	// First record held until its second line arrives.
	results, err := s.Feed("H a")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 1, s.Buffered())

	results, err = s.Feed("V 1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, map[string]any{"id": "a", "value": "1"}, results[0].Value)
	assert.Equal(t, 2, results[0].Consumed)
	assert.Equal(t, 0, s.Buffered())

	results, err = s.Feed("H b")
	require.NoError(t, err)
	assert.Empty(t, results)
	results, err = s.Feed("V 2")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Value["id"])
}

func TestStream_DefinitiveMismatchBreaks(t *testing.T) {
	model := mustCompile(t, recordDoc)
	s, err := lineform.NewStream(model)
	require.NoError(t, err)

	_, err = s.Feed("garbage")
	var f *lineform.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, lineform.FailRegexNoMatch, f.Kind)

	// The stream is broken for good.
	_, err = s.Feed("H a")
	assert.ErrorIs(t, err, lineform.ErrStreamDesynced)
	_, err = s.Flush()
	assert.ErrorIs(t, err, lineform.ErrStreamDesynced)
}

func TestStream_SkipUnmatchedResyncs(t *testing.T) {
	model := mustCompile(t, recordDoc)
	s, err := lineform.NewStream(model, lineform.WithSkipUnmatched(true))
	require.NoError(t, err)

	// Attach mid-record: a stray value line and noise precede the first
	// complete record.
	var all []*lineform.Result
	for _, line := range []string{"V 0", "noise", "H a", "V 1"} {
		results, err := s.Feed(line)
		require.NoError(t, err)
		all = append(all, results...)
	}

	require.Len(t, all, 1)
	assert.Equal(t, map[string]any{"id": "a", "value": "1"}, all[0].Value)
	assert.Equal(t, 2, s.Skipped())
}

func TestStream_FlushPartialRecord(t *testing.T) {
	model := mustCompile(t, recordDoc)
	s, err := lineform.NewStream(model)
	require.NoError(t, err)

	_, err = s.Feed("H a")
	require.NoError(t, err)

	// At end of input the held half-record is a definitive failure.
	_, err = s.Flush()
	var f *lineform.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, lineform.FailEndOfInput, f.Kind)
}

func TestStream_OptionalTrailerCompletesEagerly(t *testing.T) {
	// A record whose tail is optional completes as soon as its required
	// part has matched: the stream cannot wait for a trailer that may
	// never arrive.
	model := mustCompile(t, `
version: 1
name: record
elements:
  - line:
      regex: '^H (\w+)$'
      bindProperties:
        - property: id
  - repeat:
      bindArray: notes
      mode: optional
      elements:
        - line:
            regex: '^N (\w+)$'
            bindProperties:
              - property: v
`)
	s, err := lineform.NewStream(model)
	require.NoError(t, err)

	results, err := s.Feed("H a")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Value["id"])
	assert.NotContains(t, results[0].Value, "notes")
	assert.Equal(t, 0, s.Buffered())
}

func TestStream_NonProductivePattern(t *testing.T) {
	model := mustCompile(t, `
version: 1
name: empty
elements:
  - repeat:
      bindArray: rows
      mode: zeroOrMore
      elements:
        - line:
            regex: '^never$'
`)
	s, err := lineform.NewStream(model)
	require.NoError(t, err)

	_, err = s.Feed("anything")
	assert.ErrorIs(t, err, lineform.ErrNonProductivePattern)
}

func TestStream_BufferLimit(t *testing.T) {
	// Each item line leaves the record incomplete (END never arrives), so
	// the buffer grows until the limit refuses further input.
	model := mustCompile(t, `
version: 1
name: record
elements:
  - repeat:
      bindArray: items
      mode: oneOrMore
      elements:
        - line:
            regex: '^I (\w+)$'
            bindProperties:
              - property: v
  - line:
      regex: '^END$'
`)
	s, err := lineform.NewStream(model, lineform.WithMaxInputLines(2))
	require.NoError(t, err)

	_, err = s.Feed("I a")
	require.NoError(t, err)
	_, err = s.Feed("I b")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Buffered())

	_, err = s.Feed("I c")
	assert.ErrorIs(t, err, lineform.ErrInputLimitExceeded)
}

func TestStream_LineTooLong(t *testing.T) {
	model := mustCompile(t, recordDoc)
	s, err := lineform.NewStream(model, lineform.WithMaxLineBytes(8))
	require.NoError(t, err)

	_, err = s.Feed("H aaaaaaaaaaaaaaaa")
	assert.ErrorIs(t, err, lineform.ErrInputLimitExceeded)
}

func TestStream_NilModel(t *testing.T) {
	_, err := lineform.NewStream(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil")
}
