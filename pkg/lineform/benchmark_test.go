package lineform_test

import (
	"fmt"
	"testing"

	"github.com/lineform/lineform-go/pkg/lineform"
	"github.com/lineform/lineform-go/pkg/lineform/pattern"
)

func benchModel(b *testing.B) *pattern.Model {
	b.Helper()
	model, err := pattern.CompileBytes([]byte(invoiceDoc))
	if err != nil {
		b.Fatal(err)
	}
	return model
}

func BenchmarkExtract_Invoice(b *testing.B) {
	model := benchModel(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := lineform.Extract(model, invoiceInput); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExtract_LargeRepeat(b *testing.B) {
	model := benchModel(b)

	lines := make([]string, 0, 1002)
	lines = append(lines, "Invoice #999")
	for i := 0; i < 1000; i++ {
		lines = append(lines, fmt.Sprintf("Part%d %d %d.50", i, i, i))
	}
	lines = append(lines, "Total: 12345.00")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := lineform.Extract(model, lines); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExtract_NoMatch(b *testing.B) {
	model := benchModel(b)
	lines := []string{"nothing", "matches", "here"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := lineform.Extract(model, lines); err == nil {
			b.Fatal("expected failure")
		}
	}
}

func BenchmarkStream_Feed(b *testing.B) {
	model, err := pattern.CompileBytes([]byte(recordDoc))
	if err != nil {
		b.Fatal(err)
	}
	stream, err := lineform.NewStream(model)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := stream.Feed("H a"); err != nil {
			b.Fatal(err)
		}
		if _, err := stream.Feed("V 1"); err != nil {
			b.Fatal(err)
		}
	}
}
