package pattern_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineform/lineform-go/pkg/lineform/pattern"
)

func TestCompile_Valid(t *testing.T) {
	model, err := pattern.CompileFile("testdata/valid.yaml")
	require.NoError(t, err)
	assert.Equal(t, "invoice", model.Name)
	assert.Equal(t, "invoice", model.BindObject)
	require.Len(t, model.Elements, 3)

	head, ok := model.Elements[0].(*pattern.LineNode)
	require.True(t, ok)
	assert.Equal(t, `Invoice #(\d+)`, head.Source)
	assert.Equal(t, []string{"id"}, head.Bindings)
	assert.Equal(t, 1, head.Regex.NumSubexp())
	assert.Equal(t, "elements[0].line", head.Path())

	items, ok := model.Elements[1].(*pattern.RepeatNode)
	require.True(t, ok)
	assert.Equal(t, "items", items.BindArray)
	assert.Equal(t, pattern.RepeatOneOrMore, items.Mode)
	assert.Equal(t, "elements[1].repeat", items.Path())
	require.Len(t, items.Body, 1)
	row, ok := items.Body[0].(*pattern.LineNode)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "qty", "price"}, row.Bindings)
	assert.Equal(t, "elements[1].repeat.elements[0].line", row.Path())

	tail, ok := model.Elements[2].(*pattern.OrNode)
	require.True(t, ok)
	assert.Equal(t, "elements[2].or", tail.Path())
	require.Len(t, tail.Alternatives, 2)
	total, ok := tail.Alternatives[0][0].(*pattern.LineNode)
	require.True(t, ok)
	assert.Equal(t, []string{"total"}, total.Bindings)
	assert.Equal(t, "elements[2].or.alt[0].elements[0].line", total.Path())
	any, ok := tail.Alternatives[1][0].(*pattern.AnyNode)
	require.True(t, ok)
	assert.Equal(t, "elements[2].or.alt[1].elements[0].anyline", any.Path())
}

func TestCompile_InvalidRegex(t *testing.T) {
	_, err := pattern.CompileFile("testdata/invalid_regex.yaml")
	require.Error(t, err)
	var schemaErr *pattern.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "elements[0].line", schemaErr.Path)
	assert.Equal(t, "regex", schemaErr.Field)
	// The regexp compile error is preserved as the cause.
	assert.Error(t, schemaErr.Unwrap())
}

func TestCompile_BindingCountMismatch(t *testing.T) {
	_, err := pattern.CompileFile("testdata/binding_mismatch.yaml")
	require.Error(t, err)
	var schemaErr *pattern.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "bindProperties", schemaErr.Field)
	assert.Contains(t, err.Error(), "1 bindings for 2 capture groups")
}

func TestCompile_BindingCountMismatch_TooMany(t *testing.T) {
	doc := &pattern.Document{
		Version: 1,
		Name:    "demo",
		Elements: []pattern.Element{
			{Line: &pattern.Line{
				Regex: `(\w+)`,
				BindProperties: []pattern.Property{
					{Property: "a"},
					{Property: "b"},
				},
			}},
		},
	}
	_, err := pattern.Compile(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 bindings for 1 capture groups")
}

func TestCompile_NamedGroupsCountAsGroups(t *testing.T) {
	// Regex group names never bind; only bindProperties order does.
	doc := &pattern.Document{
		Version: 1,
		Name:    "demo",
		Elements: []pattern.Element{
			{Line: &pattern.Line{
				Regex: `(?P<ignored>\w+) (\d+)`,
				BindProperties: []pattern.Property{
					{Property: "word"},
					{Property: "num"},
				},
			}},
		},
	}
	model, err := pattern.Compile(doc)
	require.NoError(t, err)
	line := model.Elements[0].(*pattern.LineNode)
	assert.Equal(t, []string{"word", "num"}, line.Bindings)
}

func TestCompile_ExactlyMode(t *testing.T) {
	doc := &pattern.Document{
		Version: 1,
		Name:    "demo",
		Elements: []pattern.Element{
			{Repeat: &pattern.Repeat{
				BindArray: "rows",
				Mode:      pattern.ModeSpec{Keyword: "exactly", Count: 2},
				Elements:  []pattern.Element{{Line: &pattern.Line{Regex: "x"}}},
			}},
		},
	}
	model, err := pattern.Compile(doc)
	require.NoError(t, err)
	rep := model.Elements[0].(*pattern.RepeatNode)
	assert.Equal(t, pattern.RepeatExactly, rep.Mode)
	assert.Equal(t, 2, rep.Count)
}

func TestCompile_NilDocument(t *testing.T) {
	_, err := pattern.Compile(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil")
}

func TestCompile_InvalidDocument(t *testing.T) {
	// Compile re-validates, so a hand-built invalid document is rejected.
	doc := &pattern.Document{Version: 1, Name: "demo"}
	_, err := pattern.Compile(doc)
	require.Error(t, err)
	var schemaErr *pattern.SchemaError
	require.True(t, errors.As(err, &schemaErr))
}

func TestRepeatMode_String(t *testing.T) {
	assert.Equal(t, "zeroOrMore", pattern.RepeatZeroOrMore.String())
	assert.Equal(t, "oneOrMore", pattern.RepeatOneOrMore.String())
	assert.Equal(t, "optional", pattern.RepeatOptional.String())
	assert.Equal(t, "exactly", pattern.RepeatExactly.String())
}
