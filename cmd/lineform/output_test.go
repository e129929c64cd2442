package main

import (
	"strings"
	"testing"
)

func TestValidFormats(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"json", true},
		{"jsonl", true},
		{"yaml", true},
		{"pretty", true},
		{"xml", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got := validFormats[tt.format]
			if got != tt.valid {
				t.Errorf("validFormats[%q] = %v, want %v", tt.format, got, tt.valid)
			}
		})
	}
}

var sampleValue = map[string]any{
	"invoice": map[string]any{
		"id": "123",
		"items": []any{
			map[string]any{"name": "Widget", "qty": "2"},
		},
		"total": "19.98",
	},
}

func TestRenderValue_JSONL(t *testing.T) {
	var sb strings.Builder
	if err := renderValue("jsonl", sampleValue, &sb); err != nil {
		t.Fatalf("renderValue() error = %v", err)
	}

	got := sb.String()
	want := `{"invoice":{"id":"123","items":[{"name":"Widget","qty":"2"}],"total":"19.98"}}` + "\n"
	if got != want {
		t.Errorf("jsonl output = %q, want %q", got, want)
	}
}

func TestRenderValue_Pretty(t *testing.T) {
	var sb strings.Builder
	if err := renderValue("pretty", sampleValue, &sb); err != nil {
		t.Fatalf("renderValue() error = %v", err)
	}

	want := `invoice:
  id: 123
  items:
    -
      name: Widget
      qty: 2
  total: 19.98
`
	if got := sb.String(); got != want {
		t.Errorf("pretty output = %q, want %q", got, want)
	}
}

func TestRenderValue_YAML(t *testing.T) {
	var sb strings.Builder
	if err := renderValue("yaml", sampleValue, &sb); err != nil {
		t.Fatalf("renderValue() error = %v", err)
	}
	got := sb.String()
	if !strings.Contains(got, "id: \"123\"") {
		t.Errorf("yaml output missing id field: %q", got)
	}
}

func TestRenderValue_UnknownFormat(t *testing.T) {
	var sb strings.Builder
	if err := renderValue("xml", sampleValue, &sb); err == nil {
		t.Error("renderValue() accepted unknown format")
	}
}

func TestSelectValue(t *testing.T) {
	got, err := selectValue(sampleValue, "$.invoice.total")
	if err != nil {
		t.Fatalf("selectValue() error = %v", err)
	}
	if got != "19.98" {
		t.Errorf("selectValue() = %v, want %q", got, "19.98")
	}

	// A single wildcard match is still returned bare.
	name, err := selectValue(sampleValue, "$.invoice.items[*].name")
	if err != nil {
		t.Fatalf("selectValue() error = %v", err)
	}
	if name != "Widget" {
		t.Errorf("selectValue() = %v, want %q", name, "Widget")
	}

	if _, err := selectValue(sampleValue, "$.missing"); err == nil {
		t.Error("selectValue() on a missing path succeeded")
	}

	if _, err := selectValue(sampleValue, "$[invalid"); err == nil {
		t.Error("selectValue() accepted an invalid expression")
	}
}
